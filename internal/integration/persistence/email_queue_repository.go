package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

// emailQueueRepository keeps the outbound email queue in the email_queue table.
type emailQueueRepository struct {
	db *gorm.DB
}

// NewEmailQueueRepository creates a new email queue repository instance.
func NewEmailQueueRepository(db *gorm.DB) adapter.EmailQueueRepository {
	return &emailQueueRepository{db: db}
}

// Create inserts job. A job whose dedupe key is already taken is dropped and
// reported as domainerror.ErrEmailAlreadyQueued.
func (r *emailQueueRepository) Create(ctx context.Context, job *entity.EmailJob) error {
	db := r.db.WithContext(ctx)
	if job.DedupeKey != "" {
		db = db.Clauses(clause.OnConflict{DoNothing: true})
	}

	result := db.Create(model.EmailJobFromEntity(job))
	if result.Error != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, "failed to create email job", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrEmailAlreadyQueued
	}
	return nil
}

// DuePending returns pending jobs whose scheduled time has passed, oldest first.
func (r *emailQueueRepository) DuePending(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error) {
	var rows []model.EmailQueueModel
	result := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", entity.EmailStatusPending, now.UTC()).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load pending email jobs: %w", result.Error)
	}

	jobs := make([]*entity.EmailJob, len(rows))
	for i := range rows {
		jobs[i] = rows[i].ToEntity()
	}
	return jobs, nil
}

func (r *emailQueueRepository) Update(ctx context.Context, job *entity.EmailJob) error {
	if err := r.db.WithContext(ctx).Save(model.EmailJobFromEntity(job)).Error; err != nil {
		return fmt.Errorf("failed to update email job: %w", err)
	}
	return nil
}

func (r *emailQueueRepository) PurgeSent(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ? AND dedupe_key IS NULL", entity.EmailStatusSent, cutoff.UTC()).
		Delete(&model.EmailQueueModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sent email jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
