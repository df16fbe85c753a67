package settings

import (
	"context"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

const defaultHistoryLimit = 100

// ListHistoryInput represents the input for the settings history.
type ListHistoryInput struct {
	UserID uuid.UUID
	Field  string
	Limit  int
}

// ListHistoryOutput holds history entries, newest first.
type ListHistoryOutput struct {
	Entries []*entity.SettingsHistoryEntry
}

// ListHistoryUseCase lists past income, budget and goal values.
type ListHistoryUseCase struct {
	settingsRepo adapter.SettingsRepository
}

// NewListHistoryUseCase creates a new ListHistoryUseCase instance.
func NewListHistoryUseCase(settingsRepo adapter.SettingsRepository) *ListHistoryUseCase {
	return &ListHistoryUseCase{
		settingsRepo: settingsRepo,
	}
}

// Execute lists the history, optionally for one field.
func (uc *ListHistoryUseCase) Execute(ctx context.Context, input ListHistoryInput) (*ListHistoryOutput, error) {
	var field *entity.SettingsField
	if input.Field != "" {
		f := entity.SettingsField(input.Field)
		switch f {
		case entity.SettingsFieldMonthlyIncome, entity.SettingsFieldMonthlyBudget, entity.SettingsFieldSavingsGoal:
			field = &f
		default:
			return nil, domainerror.NewSettingsError(
				domainerror.ErrCodeInvalidSettingsField,
				"field must be: monthly_income, monthly_budget, or savings_goal",
				nil,
			)
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := uc.settingsRepo.ListHistory(ctx, input.UserID, field, limit)
	if err != nil {
		return nil, domainerror.NewSettingsError(domainerror.ErrCodeSettingsInternalError, "failed to load settings history", err)
	}

	return &ListHistoryOutput{Entries: entries}, nil
}
