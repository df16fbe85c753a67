package analytics

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
)

type fakeSettingsRepository struct {
	settings  *entity.BudgetSettings
	incomeErr error
	getErr    error
}

func (r *fakeSettingsRepository) Get(_ context.Context, userID uuid.UUID) (*entity.BudgetSettings, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.settings == nil {
		return entity.NewBudgetSettings(userID), nil
	}
	return r.settings, nil
}

func (r *fakeSettingsRepository) SaveWithHistory(context.Context, *entity.BudgetSettings, []*entity.SettingsHistoryEntry) error {
	return nil
}

func (r *fakeSettingsRepository) GetBaseMonthlyIncome(context.Context, uuid.UUID) (decimal.Decimal, error) {
	if r.incomeErr != nil {
		return decimal.Zero, r.incomeErr
	}
	if r.settings == nil {
		return decimal.Zero, nil
	}
	return r.settings.MonthlyIncome, nil
}

func (r *fakeSettingsRepository) ListHistory(context.Context, uuid.UUID, *entity.SettingsField, int) ([]*entity.SettingsHistoryEntry, error) {
	return nil, nil
}

type fakeSnapshotLoader struct {
	snapshot *entity.RecordSnapshot
	err      error
}

func (l *fakeSnapshotLoader) LoadSnapshot(_ context.Context, userID uuid.UUID) (*entity.RecordSnapshot, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.snapshot == nil {
		return &entity.RecordSnapshot{UserID: userID}, nil
	}
	return l.snapshot, nil
}

type fakeSubscription struct {
	events       chan adapter.SnapshotEvent
	mu           sync.Mutex
	unsubscribed int
}

func (s *fakeSubscription) Events() <-chan adapter.SnapshotEvent {
	return s.events
}

func (s *fakeSubscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed++
}

func (s *fakeSubscription) unsubscribeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

type fakeFeed struct {
	subscription *fakeSubscription
	err          error
	subscribed   bool
}

func (f *fakeFeed) Subscribe(context.Context, uuid.UUID) (adapter.RecordSubscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subscribed = true
	return f.subscription, nil
}
