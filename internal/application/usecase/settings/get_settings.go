// Package settings contains use cases for monthly budget settings.
package settings

import (
	"context"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// GetSettingsInput represents the input for reading budget settings.
type GetSettingsInput struct {
	UserID uuid.UUID
}

// GetSettingsOutput represents the user's budget settings.
type GetSettingsOutput struct {
	Settings *entity.BudgetSettings
}

// GetSettingsUseCase reads budget settings, falling back to zero values.
type GetSettingsUseCase struct {
	settingsRepo adapter.SettingsRepository
}

// NewGetSettingsUseCase creates a new GetSettingsUseCase instance.
func NewGetSettingsUseCase(settingsRepo adapter.SettingsRepository) *GetSettingsUseCase {
	return &GetSettingsUseCase{
		settingsRepo: settingsRepo,
	}
}

// Execute returns the settings.
func (uc *GetSettingsUseCase) Execute(ctx context.Context, input GetSettingsInput) (*GetSettingsOutput, error) {
	settings, err := uc.settingsRepo.Get(ctx, input.UserID)
	if err != nil {
		return nil, domainerror.NewSettingsError(
			domainerror.ErrCodeSettingsInternalError,
			"failed to load settings",
			err,
		)
	}

	return &GetSettingsOutput{Settings: settings}, nil
}
