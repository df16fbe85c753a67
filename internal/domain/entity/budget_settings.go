package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetSettings holds the monthly targets a user configures.
type BudgetSettings struct {
	UserID        uuid.UUID
	MonthlyIncome decimal.Decimal
	MonthlyBudget decimal.Decimal
	SavingsGoal   decimal.Decimal
	BudgetAlerts  bool
	UpdatedAt     time.Time
}

// NewBudgetSettings returns zeroed settings for a user who never saved any.
func NewBudgetSettings(userID uuid.UUID) *BudgetSettings {
	return &BudgetSettings{
		UserID:        userID,
		MonthlyIncome: decimal.Zero,
		MonthlyBudget: decimal.Zero,
		SavingsGoal:   decimal.Zero,
	}
}

// SettingsField names a tracked budget setting.
type SettingsField string

const (
	SettingsFieldMonthlyIncome SettingsField = "monthly_income"
	SettingsFieldMonthlyBudget SettingsField = "monthly_budget"
	SettingsFieldSavingsGoal   SettingsField = "savings_goal"
)

// SettingsHistoryEntry records one change of a tracked setting.
type SettingsHistoryEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Field     SettingsField
	Amount    decimal.Decimal
	ChangedAt time.Time
}

// NewSettingsHistoryEntry creates a history entry for the given change.
func NewSettingsHistoryEntry(userID uuid.UUID, field SettingsField, amount decimal.Decimal, changedAt time.Time) *SettingsHistoryEntry {
	return &SettingsHistoryEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Field:     field,
		Amount:    amount,
		ChangedAt: changedAt.UTC(),
	}
}
