package record

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

type fakeRecordRepo struct {
	raws    []entity.RawRecord
	created []*entity.Record
	err     error
}

func (r *fakeRecordRepo) Create(_ context.Context, record *entity.Record) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, record)
	amount := record.Amount.String()
	kind := string(record.Kind)
	ts := record.Timestamp
	r.raws = append(r.raws, entity.RawRecord{
		ID: record.ID, UserID: record.UserID, Amount: amount, Category: string(record.Category), Kind: &kind, Timestamp: &ts,
	})
	return nil
}

func (r *fakeRecordRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]entity.RawRecord, error) {
	return r.raws, r.err
}

func (r *fakeRecordRepo) ListRecent(_ context.Context, _ uuid.UUID, limit int) ([]entity.RawRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	if limit < len(r.raws) {
		return r.raws[:limit], nil
	}
	return r.raws, nil
}

type fakeNotifier struct {
	published []uuid.UUID
}

func (n *fakeNotifier) Publish(_ context.Context, userID uuid.UUID) error {
	n.published = append(n.published, userID)
	return nil
}

func (n *fakeNotifier) Listen(_ context.Context, _ uuid.UUID) (<-chan struct{}, func(), error) {
	return make(chan struct{}), func() {}, nil
}

type fakeSettingsRepo struct {
	settings *entity.BudgetSettings
}

func (r *fakeSettingsRepo) Get(_ context.Context, userID uuid.UUID) (*entity.BudgetSettings, error) {
	if r.settings == nil {
		return entity.NewBudgetSettings(userID), nil
	}
	return r.settings, nil
}

func (r *fakeSettingsRepo) SaveWithHistory(_ context.Context, settings *entity.BudgetSettings, _ []*entity.SettingsHistoryEntry) error {
	r.settings = settings
	return nil
}

func (r *fakeSettingsRepo) GetBaseMonthlyIncome(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	s, _ := r.Get(ctx, userID)
	return s.MonthlyIncome, nil
}

func (r *fakeSettingsRepo) ListHistory(_ context.Context, _ uuid.UUID, _ *entity.SettingsField, _ int) ([]*entity.SettingsHistoryEntry, error) {
	return nil, nil
}

type repoLoader struct {
	repo *fakeRecordRepo
}

func (l repoLoader) LoadSnapshot(ctx context.Context, userID uuid.UUID) (*entity.RecordSnapshot, error) {
	raws, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, failures := entity.DecodeRecords(raws)
	return &entity.RecordSnapshot{UserID: userID, Records: records, Skipped: len(failures)}, nil
}

type fakeUserRepo struct {
	user *entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *entity.User) error { return nil }

func (r *fakeUserRepo) FindByID(_ context.Context, _ uuid.UUID) (*entity.User, error) {
	return r.user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, _ string) (*entity.User, error) {
	return r.user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ *entity.User) error { return nil }

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, _ string) (bool, error) {
	return true, nil
}

type fakeEmailService struct {
	mu     sync.Mutex
	alerts []adapter.QueueBudgetAlertInput
	keys   map[string]bool
}

func (s *fakeEmailService) QueueVerificationEmail(_ context.Context, _ adapter.QueueVerificationInput) error {
	return nil
}

func (s *fakeEmailService) QueueBudgetAlertEmail(_ context.Context, input adapter.QueueBudgetAlertInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := input.UserID + "|" + input.Period + "|" + input.MonthlyBudget
	if s.keys[key] {
		return domainerror.ErrEmailAlreadyQueued
	}
	if s.keys == nil {
		s.keys = map[string]bool{}
	}
	s.keys[key] = true
	s.alerts = append(s.alerts, input)
	return nil
}

func fixedClock(t time.Time) adapter.Clock {
	return func() time.Time { return t }
}

func TestCreateRecord_Validation(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		input        CreateRecordInput
		expectedCode domainerror.RecordErrorCode
	}{
		{
			name:  "valid purchase",
			input: CreateRecordInput{UserID: userID, Description: "Groceries", Amount: "45.20", Category: "Food", Rating: 4},
		},
		{
			name:  "valid income",
			input: CreateRecordInput{UserID: userID, Description: "Salary", Amount: "3000", Category: "Other", Kind: "income"},
		},
		{
			name:         "non numeric amount",
			input:        CreateRecordInput{UserID: userID, Amount: "abc", Category: "Food"},
			expectedCode: domainerror.ErrCodeInvalidAmount,
		},
		{
			name:         "negative amount",
			input:        CreateRecordInput{UserID: userID, Amount: "-1", Category: "Food"},
			expectedCode: domainerror.ErrCodeInvalidAmount,
		},
		{
			name:         "amount beyond cents",
			input:        CreateRecordInput{UserID: userID, Amount: "1.005", Category: "Food"},
			expectedCode: domainerror.ErrCodeInvalidAmount,
		},
		{
			name:         "amount too long for storage",
			input:        CreateRecordInput{UserID: userID, Amount: "1234567890123456789012345678901234567890", Category: "Food"},
			expectedCode: domainerror.ErrCodeInvalidAmount,
		},
		{
			name:         "unknown category",
			input:        CreateRecordInput{UserID: userID, Amount: "1", Category: "Pets"},
			expectedCode: domainerror.ErrCodeInvalidCategory,
		},
		{
			name:         "unknown kind",
			input:        CreateRecordInput{UserID: userID, Amount: "1", Category: "Food", Kind: "refund"},
			expectedCode: domainerror.ErrCodeInvalidRecordKind,
		},
		{
			name:         "rating out of range",
			input:        CreateRecordInput{UserID: userID, Amount: "1", Category: "Food", Rating: 9},
			expectedCode: domainerror.ErrCodeInvalidRating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRecordRepo{}
			notifier := &fakeNotifier{}
			uc := NewCreateRecordUseCase(repo, notifier, nil, nil)

			output, err := uc.Execute(context.Background(), tt.input)

			if tt.expectedCode != "" {
				var recordErr *domainerror.RecordError
				if !errors.As(err, &recordErr) {
					t.Fatalf("expected RecordError, got %v", err)
				}
				if recordErr.Code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, recordErr.Code)
				}
				if len(notifier.published) != 0 {
					t.Error("no change should be published on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(repo.created) != 1 {
				t.Fatalf("expected record to be stored")
			}
			if output.Record.UserID != userID {
				t.Errorf("expected owner %s, got %s", userID, output.Record.UserID)
			}
			if len(notifier.published) != 1 || notifier.published[0] != userID {
				t.Errorf("expected one change notification for %s, got %v", userID, notifier.published)
			}
		})
	}
}

func TestCreateRecord_StoreFailure(t *testing.T) {
	repo := &fakeRecordRepo{err: errors.New("connection refused")}
	uc := NewCreateRecordUseCase(repo, &fakeNotifier{}, nil, nil)

	_, err := uc.Execute(context.Background(), CreateRecordInput{UserID: uuid.New(), Amount: "1", Category: "Food"})

	var recordErr *domainerror.RecordError
	if !errors.As(err, &recordErr) || recordErr.Code != domainerror.ErrCodeRecordInternalError {
		t.Fatalf("expected internal record error, got %v", err)
	}
}

func TestCreateRecord_BudgetAlert(t *testing.T) {
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		alertsOn       bool
		alreadyAlerted bool
		existing       string
		amount         string
		category       string
		expectedAlerts int
	}{
		{name: "crossing the budget alerts", alertsOn: true, existing: "450", amount: "100", category: "Food", expectedAlerts: 1},
		{name: "over budget without an earlier alert alerts", alertsOn: true, existing: "540", amount: "10", category: "Food", expectedAlerts: 1},
		{name: "already alerted this month does not alert again", alertsOn: true, alreadyAlerted: true, existing: "540", amount: "10", category: "Food"},
		{name: "staying within budget", alertsOn: true, existing: "100", amount: "10", category: "Food"},
		{name: "alerts disabled", alertsOn: false, existing: "450", amount: "100", category: "Food"},
		{name: "savings do not count", alertsOn: true, existing: "450", amount: "100", category: "Savings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			repo := &fakeRecordRepo{}
			ts := now.Add(-24 * time.Hour)
			repo.raws = append(repo.raws, entity.RawRecord{ID: uuid.New(), UserID: userID, Amount: tt.existing, Category: "Housing", Timestamp: &ts})

			settings := entity.NewBudgetSettings(userID)
			settings.MonthlyBudget = decimal.RequireFromString("500")
			settings.BudgetAlerts = tt.alertsOn

			emails := &fakeEmailService{}
			if tt.alreadyAlerted {
				emails.keys = map[string]bool{userID.String() + "|2024-03|$500.00": true}
			}
			alerts := NewBudgetAlertNotifier(
				&fakeSettingsRepo{settings: settings},
				repoLoader{repo: repo},
				&fakeUserRepo{user: &entity.User{ID: userID, Email: "a@example.com", Name: "A"}},
				emails,
				fixedClock(now),
			)
			uc := NewCreateRecordUseCase(repo, &fakeNotifier{}, alerts, fixedClock(now))

			if _, err := uc.Execute(context.Background(), CreateRecordInput{UserID: userID, Amount: tt.amount, Category: tt.category}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(emails.alerts) != tt.expectedAlerts {
				t.Fatalf("expected %d alerts, got %d", tt.expectedAlerts, len(emails.alerts))
			}
			if tt.expectedAlerts == 1 {
				if emails.alerts[0].MonthlySpent != "$550.00" {
					t.Errorf("expected spent $550.00, got %s", emails.alerts[0].MonthlySpent)
				}
				if emails.alerts[0].Period != "2024-03" || emails.alerts[0].UserID != userID.String() {
					t.Errorf("expected alert keyed on %s/2024-03, got %s/%s", userID, emails.alerts[0].UserID, emails.alerts[0].Period)
				}
			}
		})
	}
}

func TestBudgetAlertNotifier_ConcurrentExpensesAlertOnce(t *testing.T) {
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	ts := now.Add(-time.Hour)

	// Both expenses are already stored when each request checks the month.
	repo := &fakeRecordRepo{raws: []entity.RawRecord{
		{ID: uuid.New(), UserID: userID, Amount: "480", Category: "Housing", Timestamp: &ts},
		{ID: uuid.New(), UserID: userID, Amount: "15", Category: "Food", Timestamp: &ts},
		{ID: uuid.New(), UserID: userID, Amount: "15", Category: "Food", Timestamp: &ts},
	}}
	settings := entity.NewBudgetSettings(userID)
	settings.MonthlyBudget = decimal.RequireFromString("500")
	settings.BudgetAlerts = true

	emails := &fakeEmailService{}
	alerts := NewBudgetAlertNotifier(
		&fakeSettingsRepo{settings: settings},
		repoLoader{repo: repo},
		&fakeUserRepo{user: &entity.User{ID: userID, Email: "a@example.com", Name: "A"}},
		emails,
		fixedClock(now),
	)

	expense := &entity.Record{ID: uuid.New(), UserID: userID, Amount: decimal.RequireFromString("15"), Category: entity.CategoryFood, Kind: entity.RecordKindExpense, Timestamp: ts}
	var wg sync.WaitGroup
	var queued atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if alerts.CheckAfterExpense(context.Background(), expense) {
				queued.Add(1)
			}
		}()
	}
	wg.Wait()

	if len(emails.alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(emails.alerts))
	}
	if queued.Load() != 1 {
		t.Errorf("expected one caller to report a queued alert, got %d", queued.Load())
	}
}

func TestListRecords(t *testing.T) {
	userID := uuid.New()
	ts := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRecordRepo{raws: []entity.RawRecord{
		{ID: uuid.New(), UserID: userID, Amount: "10", Category: "Food", Timestamp: &ts},
		{ID: uuid.New(), UserID: userID, Amount: "oops", Category: "Food", Timestamp: &ts},
		{ID: uuid.New(), UserID: userID, Amount: "5", Category: "Food"},
		{ID: uuid.New(), UserID: userID, Amount: "7", Category: "Housing", Timestamp: &ts},
	}}
	uc := NewListRecordsUseCase(repo)

	tests := []struct {
		name            string
		limit           int
		expectedRecords int
		expectedSkipped int
		wantErr         bool
	}{
		{name: "default limit", limit: 0, expectedRecords: 2, expectedSkipped: 2},
		{name: "explicit limit", limit: 1, expectedRecords: 1, expectedSkipped: 0},
		{name: "negative limit", limit: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := uc.Execute(context.Background(), ListRecordsInput{UserID: userID, Limit: tt.limit})
			if tt.wantErr {
				var recordErr *domainerror.RecordError
				if !errors.As(err, &recordErr) || recordErr.Code != domainerror.ErrCodeInvalidLimit {
					t.Fatalf("expected invalid limit error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(output.Records) != tt.expectedRecords {
				t.Errorf("expected %d records, got %d", tt.expectedRecords, len(output.Records))
			}
			if output.Skipped != tt.expectedSkipped {
				t.Errorf("expected %d skipped, got %d", tt.expectedSkipped, output.Skipped)
			}
		})
	}
}
