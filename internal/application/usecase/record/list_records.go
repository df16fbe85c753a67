package record

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListRecordsInput represents the input for the purchase history.
type ListRecordsInput struct {
	UserID uuid.UUID
	Limit  int
}

// ListRecordsOutput represents the purchase history, newest first.
type ListRecordsOutput struct {
	Records []entity.Record
	Skipped int
}

// ListRecordsUseCase returns a user's most recent records.
type ListRecordsUseCase struct {
	recordRepo adapter.RecordRepository
}

// NewListRecordsUseCase creates a new ListRecordsUseCase instance.
func NewListRecordsUseCase(recordRepo adapter.RecordRepository) *ListRecordsUseCase {
	return &ListRecordsUseCase{
		recordRepo: recordRepo,
	}
}

// Execute lists records, skipping rows that cannot be decoded.
func (uc *ListRecordsUseCase) Execute(ctx context.Context, input ListRecordsInput) (*ListRecordsOutput, error) {
	limit := input.Limit
	switch {
	case limit < 0:
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeInvalidLimit,
			"limit must not be negative",
			nil,
		)
	case limit == 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	raws, err := uc.recordRepo.ListRecent(ctx, input.UserID, limit)
	if err != nil {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeRecordStoreUnavailable,
			"failed to load records",
			err,
		)
	}

	records, failures := entity.DecodeRecords(raws)
	for _, failure := range failures {
		slog.Warn("Skipping malformed record", "userID", input.UserID, "recordID", failure.RecordID, "reason", failure.Reason)
	}

	return &ListRecordsOutput{
		Records: records,
		Skipped: len(failures),
	}, nil
}
