package model

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// EmailQueueModel is a queued outgoing email. The worker polls pending rows by scheduled_at.
type EmailQueueModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TemplateType   string     `gorm:"type:varchar(50);not null"`
	RecipientEmail string     `gorm:"type:varchar(255);not null;index"`
	RecipientName  string     `gorm:"type:varchar(255)"`
	Subject        string     `gorm:"type:varchar(500);not null"`
	TemplateData   string     `gorm:"type:text;not null"`
	DedupeKey      *string    `gorm:"type:varchar(255);uniqueIndex"`
	Status         string     `gorm:"type:varchar(20);not null;index:idx_email_queue_due,priority:1"`
	Attempts       int        `gorm:"not null"`
	MaxAttempts    int        `gorm:"not null"`
	LastError      string     `gorm:"type:text"`
	ResendID       string     `gorm:"type:varchar(100)"`
	CreatedAt      time.Time  `gorm:"not null"`
	ScheduledAt    time.Time  `gorm:"not null;index:idx_email_queue_due,priority:2"`
	ProcessedAt    *time.Time
}

// TableName returns the table name for the EmailQueueModel.
func (EmailQueueModel) TableName() string {
	return "email_queue"
}

// ToEntity converts the row to a domain EmailJob. Unreadable template data becomes an empty map.
func (m *EmailQueueModel) ToEntity() *entity.EmailJob {
	data := map[string]interface{}{}
	if m.TemplateData != "" {
		if err := json.Unmarshal([]byte(m.TemplateData), &data); err != nil {
			slog.Warn("Failed to decode email template data", "error", err, "jobID", m.ID)
			data = map[string]interface{}{}
		}
	}

	var dedupeKey string
	if m.DedupeKey != nil {
		dedupeKey = *m.DedupeKey
	}

	return &entity.EmailJob{
		ID:             m.ID,
		DedupeKey:      dedupeKey,
		TemplateType:   entity.EmailTemplateType(m.TemplateType),
		RecipientEmail: m.RecipientEmail,
		RecipientName:  m.RecipientName,
		Subject:        m.Subject,
		TemplateData:   data,
		Status:         entity.EmailStatus(m.Status),
		Attempts:       m.Attempts,
		MaxAttempts:    m.MaxAttempts,
		LastError:      m.LastError,
		ResendID:       m.ResendID,
		CreatedAt:      m.CreatedAt,
		ScheduledAt:    m.ScheduledAt,
		ProcessedAt:    m.ProcessedAt,
	}
}

// EmailJobFromEntity converts a domain EmailJob to its row.
func EmailJobFromEntity(job *entity.EmailJob) *EmailQueueModel {
	data, err := json.Marshal(job.TemplateData)
	if err != nil {
		slog.Error("Failed to encode email template data", "error", err, "jobID", job.ID)
		data = []byte("{}")
	}

	// NULL keys never collide on the unique index.
	var dedupeKey *string
	if job.DedupeKey != "" {
		key := job.DedupeKey
		dedupeKey = &key
	}

	return &EmailQueueModel{
		ID:             job.ID,
		DedupeKey:      dedupeKey,
		TemplateType:   string(job.TemplateType),
		RecipientEmail: job.RecipientEmail,
		RecipientName:  job.RecipientName,
		Subject:        job.Subject,
		TemplateData:   string(data),
		Status:         string(job.Status),
		Attempts:       job.Attempts,
		MaxAttempts:    job.MaxAttempts,
		LastError:      job.LastError,
		ResendID:       job.ResendID,
		CreatedAt:      job.CreatedAt,
		ScheduledAt:    job.ScheduledAt,
		ProcessedAt:    job.ProcessedAt,
	}
}
