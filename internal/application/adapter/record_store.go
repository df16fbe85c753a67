package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// RecordRepository persists records. Reads return rows undecoded because the store
// does not enforce their shape.
type RecordRepository interface {
	// Create appends a record for its owner.
	Create(ctx context.Context, record *entity.Record) error

	// ListByUser returns every record the user owns, in no particular order.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.RawRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.RawRecord, error)
}

// SnapshotLoader loads the validated record set of a user.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, userID uuid.UUID) (*entity.RecordSnapshot, error)
}

// SnapshotEvent carries either a fresh snapshot or the reason one could not be produced.
// An error event never means "no records".
type SnapshotEvent struct {
	Snapshot *entity.RecordSnapshot
	Err      error
}

// RecordSubscription is a live view of one user's records.
type RecordSubscription interface {
	// Events delivers the full record set after every change. It is closed after Unsubscribe.
	Events() <-chan SnapshotEvent

	// Unsubscribe releases the subscription. It is safe to call more than once.
	Unsubscribe()
}

// RecordFeed opens live record subscriptions.
type RecordFeed interface {
	// Subscribe delivers the current snapshot first, then one per change. It fails when
	// the initial snapshot cannot be loaded.
	Subscribe(ctx context.Context, userID uuid.UUID) (RecordSubscription, error)
}

// ChangeNotifier fans out "records changed" signals per user.
type ChangeNotifier interface {
	// Publish announces that the user's records changed.
	Publish(ctx context.Context, userID uuid.UUID) error

	// Listen returns a channel that receives a value after each change until stop is called.
	Listen(ctx context.Context, userID uuid.UUID) (changes <-chan struct{}, stop func(), err error)
}

// Clock returns the current time. Tests replace it to pin "now".
type Clock func() time.Time
