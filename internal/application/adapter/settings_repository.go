package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// SettingsRepository defines persistence for budget settings and their change history.
type SettingsRepository interface {
	// Get returns the user's settings, or zeroed defaults when none were saved.
	Get(ctx context.Context, userID uuid.UUID) (*entity.BudgetSettings, error)

	// SaveWithHistory creates or replaces the user's settings and stores the change entries
	// describing them. Either both writes happen or neither does.
	SaveWithHistory(ctx context.Context, settings *entity.BudgetSettings, entries []*entity.SettingsHistoryEntry) error

	// GetBaseMonthlyIncome returns the configured monthly income, zero when unset.
	GetBaseMonthlyIncome(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// ListHistory returns change entries newest first, optionally filtered by field.
	ListHistory(ctx context.Context, userID uuid.UUID, field *entity.SettingsField, limit int) ([]*entity.SettingsHistoryEntry, error)
}
