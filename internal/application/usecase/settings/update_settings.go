package settings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// UpdateSettingsInput carries the fields to change. Nil fields are left as they are.
type UpdateSettingsInput struct {
	UserID        uuid.UUID
	MonthlyIncome *string
	MonthlyBudget *string
	SavingsGoal   *string
	BudgetAlerts  *bool
}

// UpdateSettingsOutput represents the settings after the update.
type UpdateSettingsOutput struct {
	Settings *entity.BudgetSettings
	History  []*entity.SettingsHistoryEntry
}

// UpdateSettingsUseCase applies partial updates and records every amount change.
type UpdateSettingsUseCase struct {
	settingsRepo adapter.SettingsRepository
	now          adapter.Clock
}

// NewUpdateSettingsUseCase creates a new UpdateSettingsUseCase instance.
func NewUpdateSettingsUseCase(settingsRepo adapter.SettingsRepository, now adapter.Clock) *UpdateSettingsUseCase {
	if now == nil {
		now = time.Now
	}
	return &UpdateSettingsUseCase{
		settingsRepo: settingsRepo,
		now:          now,
	}
}

// Execute performs the update.
func (uc *UpdateSettingsUseCase) Execute(ctx context.Context, input UpdateSettingsInput) (*UpdateSettingsOutput, error) {
	if input.MonthlyIncome == nil && input.MonthlyBudget == nil && input.SavingsGoal == nil && input.BudgetAlerts == nil {
		return nil, domainerror.NewSettingsError(
			domainerror.ErrCodeNoSettingsChanges,
			"at least one setting must be provided",
			domainerror.ErrNoSettingsChanges,
		)
	}

	changes := []struct {
		field entity.SettingsField
		raw   *string
	}{
		{field: entity.SettingsFieldMonthlyIncome, raw: input.MonthlyIncome},
		{field: entity.SettingsFieldMonthlyBudget, raw: input.MonthlyBudget},
		{field: entity.SettingsFieldSavingsGoal, raw: input.SavingsGoal},
	}

	parsed := make(map[entity.SettingsField]decimal.Decimal, len(changes))
	for _, change := range changes {
		if change.raw == nil {
			continue
		}
		amount, err := entity.ParseMoney(*change.raw)
		if err != nil {
			return nil, domainerror.NewSettingsError(
				domainerror.ErrCodeInvalidSettingsAmount,
				string(change.field)+" must be a non-negative number with at most 13 digits and 2 decimal places",
				domainerror.ErrInvalidSettingsAmount,
			)
		}
		parsed[change.field] = amount
	}

	settings, err := uc.settingsRepo.Get(ctx, input.UserID)
	if err != nil {
		return nil, domainerror.NewSettingsError(domainerror.ErrCodeSettingsInternalError, "failed to load settings", err)
	}

	now := uc.now().UTC()
	var history []*entity.SettingsHistoryEntry
	apply := func(field entity.SettingsField, current *decimal.Decimal) {
		amount, ok := parsed[field]
		if !ok || amount.Equal(*current) {
			return
		}
		*current = amount
		history = append(history, entity.NewSettingsHistoryEntry(input.UserID, field, amount, now))
	}

	apply(entity.SettingsFieldMonthlyIncome, &settings.MonthlyIncome)
	apply(entity.SettingsFieldMonthlyBudget, &settings.MonthlyBudget)
	apply(entity.SettingsFieldSavingsGoal, &settings.SavingsGoal)
	if input.BudgetAlerts != nil {
		settings.BudgetAlerts = *input.BudgetAlerts
	}
	settings.UpdatedAt = now

	if err := uc.settingsRepo.SaveWithHistory(ctx, settings, history); err != nil {
		return nil, domainerror.NewSettingsError(domainerror.ErrCodeSettingsInternalError, "failed to save settings", err)
	}

	return &UpdateSettingsOutput{
		Settings: settings,
		History:  history,
	}, nil
}
