package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

// recordRepository implements the adapter.RecordRepository interface.
type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new record repository instance.
func NewRecordRepository(db *gorm.DB) adapter.RecordRepository {
	return &recordRepository{
		db: db,
	}
}

// Create appends a record. Records are never updated afterwards.
func (r *recordRepository) Create(ctx context.Context, record *entity.Record) error {
	if err := r.db.WithContext(ctx).Create(model.RecordFromEntity(record)).Error; err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// ListByUser returns every record of the user without decoding it.
func (r *recordRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.RawRecord, error) {
	var models []model.RecordModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list records: %w", result.Error)
	}
	return toRawRecords(models), nil
}

// ListRecent returns up to limit records, newest first.
func (r *recordRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.RawRecord, error) {
	var models []model.RecordModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recent records: %w", result.Error)
	}
	return toRawRecords(models), nil
}

func toRawRecords(models []model.RecordModel) []entity.RawRecord {
	raws := make([]entity.RawRecord, len(models))
	for i := range models {
		raws[i] = models[i].ToRaw()
	}
	return raws
}
