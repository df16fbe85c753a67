package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// RecordModel represents the records table. Amount, kind and timestamp are stored the
// way clients wrote them, so rows are read back as entity.RawRecord and decoded.
type RecordModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_records_user_created"`
	Amount      string     `gorm:"type:varchar(32);not null"`
	Category    string     `gorm:"type:varchar(30);not null"`
	Kind        *string    `gorm:"type:varchar(10)"`
	Rating      int        `gorm:"not null;default:0"`
	Description string     `gorm:"type:varchar(255)"`
	CreatedAt   *time.Time `gorm:"index:idx_records_user_created"`
}

// TableName returns the table name for the RecordModel.
func (RecordModel) TableName() string {
	return "records"
}

// ToRaw converts a RecordModel to an undecoded record.
func (m *RecordModel) ToRaw() entity.RawRecord {
	return entity.RawRecord{
		ID:          m.ID,
		UserID:      m.UserID,
		Amount:      m.Amount,
		Category:    m.Category,
		Kind:        m.Kind,
		Timestamp:   m.CreatedAt,
		Rating:      m.Rating,
		Description: m.Description,
	}
}

// RecordFromEntity creates a RecordModel from a domain Record entity.
func RecordFromEntity(record *entity.Record) *RecordModel {
	kind := string(record.Kind)
	createdAt := record.Timestamp.UTC()
	return &RecordModel{
		ID:          record.ID,
		UserID:      record.UserID,
		Amount:      record.Amount.String(),
		Category:    string(record.Category),
		Kind:        &kind,
		Rating:      record.Rating,
		Description: record.Description,
		CreatedAt:   &createdAt,
	}
}
