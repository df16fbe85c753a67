package dto

import (
	"time"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// CreateRecordRequest represents the request body for recording a purchase or income.
type CreateRecordRequest struct {
	Description string `json:"description" binding:"max=255"`
	Amount      string `json:"amount" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Kind        string `json:"kind,omitempty"`
	Rating      int    `json:"rating"`
}

// ListRecordsQuery holds the query parameters for purchase history.
type ListRecordsQuery struct {
	Limit int `form:"limit"`
}

// RecordResponse represents a single record in API responses.
type RecordResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordListResponse represents the purchase history.
type RecordListResponse struct {
	Data    []RecordResponse `json:"data"`
	Skipped int              `json:"skipped_records"`
}

// ToRecordResponse converts a domain Record to its DTO.
func ToRecordResponse(record *entity.Record) RecordResponse {
	return RecordResponse{
		ID:          record.ID.String(),
		Description: record.Description,
		Amount:      record.Amount.StringFixed(2),
		Category:    string(record.Category),
		Kind:        string(record.Kind),
		Rating:      record.Rating,
		CreatedAt:   record.Timestamp,
	}
}

// ToRecordListResponse converts decoded records to the history DTO.
func ToRecordListResponse(records []entity.Record, skipped int) RecordListResponse {
	data := make([]RecordResponse, 0, len(records))
	for i := range records {
		data = append(data, ToRecordResponse(&records[i]))
	}
	return RecordListResponse{Data: data, Skipped: skipped}
}
