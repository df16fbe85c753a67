package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/valueobject"
)

// AnalyticsUpdate is one push to a live analytics view. Exactly one of Analytics and Err is set.
type AnalyticsUpdate struct {
	Analytics      *Analytics
	SkippedRecords int
	Err            error
}

// WatchAnalyticsInput represents the input for a live analytics view.
type WatchAnalyticsInput struct {
	UserID uuid.UUID
	Range  string
}

// WatchAnalyticsUseCase keeps analytics up to date as records change.
type WatchAnalyticsUseCase struct {
	settingsRepo adapter.SettingsRepository
	feed         adapter.RecordFeed
	now          adapter.Clock
}

// NewWatchAnalyticsUseCase creates a new WatchAnalyticsUseCase instance.
func NewWatchAnalyticsUseCase(settingsRepo adapter.SettingsRepository, feed adapter.RecordFeed, now adapter.Clock) *WatchAnalyticsUseCase {
	if now == nil {
		now = time.Now
	}
	return &WatchAnalyticsUseCase{
		settingsRepo: settingsRepo,
		feed:         feed,
		now:          now,
	}
}

// Execute reads the base income, subscribes to the user's records and recomputes the
// views for every snapshot. The first update carries the current state.
func (uc *WatchAnalyticsUseCase) Execute(ctx context.Context, input WatchAnalyticsInput) (*AnalyticsWatch, error) {
	selector, err := parseRange(input.Range)
	if err != nil {
		return nil, err
	}

	baseIncome, err := uc.settingsRepo.GetBaseMonthlyIncome(ctx, input.UserID)
	if err != nil {
		return nil, unavailableError(fmt.Errorf("failed to load base income: %w", err))
	}

	subscription, err := uc.feed.Subscribe(ctx, input.UserID)
	if err != nil {
		return nil, unavailableError(err)
	}

	watch := &AnalyticsWatch{
		updates:      make(chan AnalyticsUpdate),
		done:         make(chan struct{}),
		subscription: subscription,
	}
	watch.alive.Store(true)

	go watch.run(input.UserID, selector, baseIncome, uc.now)

	slog.Info("Analytics watch started", "userID", input.UserID, "range", selector)
	return watch, nil
}

// AnalyticsWatch is a running live analytics view.
type AnalyticsWatch struct {
	updates      chan AnalyticsUpdate
	done         chan struct{}
	subscription adapter.RecordSubscription
	alive        atomic.Bool
	stopOnce     sync.Once
}

// Updates delivers recomputed analytics in order. It is closed after Stop.
func (w *AnalyticsWatch) Updates() <-chan AnalyticsUpdate {
	return w.updates
}

// Stop ends the watch and releases the subscription. It is safe to call more than once.
func (w *AnalyticsWatch) Stop() {
	w.stopOnce.Do(func() {
		w.alive.Store(false)
		close(w.done)
		w.subscription.Unsubscribe()
	})
}

func (w *AnalyticsWatch) run(userID uuid.UUID, selector valueobject.WindowSelector, baseIncome decimal.Decimal, now adapter.Clock) {
	defer close(w.updates)

	events := w.subscription.Events()
	for {
		var event adapter.SnapshotEvent
		select {
		case <-w.done:
			return
		case received, ok := <-events:
			if !ok {
				return
			}
			event = received
		}

		// A snapshot that raced with Stop belongs to a view nobody is showing.
		if !w.alive.Load() {
			return
		}

		update := compute(event, selector, baseIncome, now())
		if update.Err != nil {
			slog.Warn("Analytics watch received a store error", "error", update.Err, "userID", userID)
		}

		select {
		case w.updates <- update:
		case <-w.done:
			return
		}
	}
}

func compute(event adapter.SnapshotEvent, selector valueobject.WindowSelector, baseIncome decimal.Decimal, now time.Time) AnalyticsUpdate {
	if event.Err != nil {
		return AnalyticsUpdate{Err: unavailableError(event.Err)}
	}
	if event.Snapshot == nil {
		return AnalyticsUpdate{Err: unavailableError(fmt.Errorf("empty snapshot event"))}
	}

	window, err := selector.Resolve(now)
	if err != nil {
		return AnalyticsUpdate{Err: invalidRangeError(string(selector))}
	}

	analytics := Compute(event.Snapshot.Records, window, baseIncome)
	return AnalyticsUpdate{
		Analytics:      &analytics,
		SkippedRecords: event.Snapshot.Skipped,
	}
}
