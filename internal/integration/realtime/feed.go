package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// Feed opens record subscriptions by pairing a snapshot loader with a change notifier.
type Feed struct {
	loader   adapter.SnapshotLoader
	notifier adapter.ChangeNotifier
}

// NewFeed creates a new Feed.
func NewFeed(loader adapter.SnapshotLoader, notifier adapter.ChangeNotifier) *Feed {
	return &Feed{loader: loader, notifier: notifier}
}

// Subscribe starts listening for changes before loading the first snapshot, so a change
// landing in between still triggers a reload. The subscription ends when ctx is done or
// Unsubscribe is called.
func (f *Feed) Subscribe(ctx context.Context, userID uuid.UUID) (adapter.RecordSubscription, error) {
	changes, stopListening, err := f.notifier.Listen(ctx, userID)
	if err != nil {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeRecordStoreUnavailable,
			"failed to watch records",
			err,
		)
	}

	initial, err := f.loader.LoadSnapshot(ctx, userID)
	if err != nil {
		stopListening()
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeRecordStoreUnavailable,
			"failed to load initial records",
			err,
		)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ctx:    subCtx,
		cancel: cancel,
		events: make(chan adapter.SnapshotEvent, 1),
	}
	sub.active.Store(true)

	go sub.run(f.loader, userID, initial, changes, stopListening)

	return sub, nil
}

type subscription struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan adapter.SnapshotEvent
	active atomic.Bool
	once   sync.Once
}

func (s *subscription) Events() <-chan adapter.SnapshotEvent {
	return s.events
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)
		s.cancel()
	})
}

func (s *subscription) run(
	loader adapter.SnapshotLoader,
	userID uuid.UUID,
	initial *entity.RecordSnapshot,
	changes <-chan struct{},
	stopListening func(),
) {
	defer close(s.events)
	defer stopListening()
	defer s.Unsubscribe()

	if !s.deliver(adapter.SnapshotEvent{Snapshot: initial}) {
		return
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
		}

		snapshot, err := loader.LoadSnapshot(s.ctx, userID)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			slog.Warn("Failed to reload records", "error", err, "userID", userID)
			if !s.deliver(adapter.SnapshotEvent{Err: err}) {
				return
			}
			continue
		}

		if !s.deliver(adapter.SnapshotEvent{Snapshot: snapshot}) {
			return
		}
	}
}

// deliver hands event to the consumer unless the subscription ended first.
func (s *subscription) deliver(event adapter.SnapshotEvent) bool {
	if !s.active.Load() {
		return false
	}
	select {
	case s.events <- event:
		return true
	case <-s.ctx.Done():
		return false
	}
}
