// Package realtime serves live views of a user's records: snapshot loading, change
// notification over Redis Pub/Sub or in process, and subscriptions that reload on change.
package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// SnapshotLoader reads every stored record of a user and keeps the ones that decode.
type SnapshotLoader struct {
	records adapter.RecordRepository
	now     adapter.Clock
}

// NewSnapshotLoader creates a new SnapshotLoader.
func NewSnapshotLoader(records adapter.RecordRepository, now adapter.Clock) *SnapshotLoader {
	if now == nil {
		now = time.Now
	}
	return &SnapshotLoader{records: records, now: now}
}

// LoadSnapshot returns the complete validated record set. Malformed rows are skipped and
// counted; a read failure is an error, never an empty snapshot.
func (l *SnapshotLoader) LoadSnapshot(ctx context.Context, userID uuid.UUID) (*entity.RecordSnapshot, error) {
	raws, err := l.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeRecordStoreUnavailable,
			"failed to load records",
			err,
		)
	}

	records, failures := entity.DecodeRecords(raws)
	for _, failure := range failures {
		slog.Warn("Skipping malformed record", "userID", userID, "recordID", failure.RecordID, "reason", failure.Reason)
	}

	return &entity.RecordSnapshot{
		UserID:   userID,
		Records:  records,
		Skipped:  len(failures),
		LoadedAt: l.now(),
	}, nil
}

var _ adapter.SnapshotLoader = (*SnapshotLoader)(nil)
