package adapter

import (
	"context"
	"time"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// EmailQueueRepository stores the outbound email queue.
type EmailQueueRepository interface {
	// Create queues job. It returns domainerror.ErrEmailAlreadyQueued when job carries a
	// dedupe key that an earlier job already used.
	Create(ctx context.Context, job *entity.EmailJob) error

	// DuePending returns up to limit pending jobs scheduled at or before now, oldest first.
	DuePending(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error)

	Update(ctx context.Context, job *entity.EmailJob) error

	// PurgeSent deletes sent jobs processed before cutoff and reports how many were removed.
	// Jobs with a dedupe key are kept so the key stays claimed.
	PurgeSent(ctx context.Context, cutoff time.Time) (int64, error)
}
