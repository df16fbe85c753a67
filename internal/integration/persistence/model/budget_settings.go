package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// BudgetSettingsModel represents the budget_settings table, one row per user.
type BudgetSettingsModel struct {
	UserID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MonthlyIncome decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	MonthlyBudget decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	SavingsGoal   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	BudgetAlerts  bool            `gorm:"not null;default:false"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the BudgetSettingsModel.
func (BudgetSettingsModel) TableName() string {
	return "budget_settings"
}

// ToEntity converts a BudgetSettingsModel to a domain BudgetSettings entity.
func (m *BudgetSettingsModel) ToEntity() *entity.BudgetSettings {
	return &entity.BudgetSettings{
		UserID:        m.UserID,
		MonthlyIncome: m.MonthlyIncome,
		MonthlyBudget: m.MonthlyBudget,
		SavingsGoal:   m.SavingsGoal,
		BudgetAlerts:  m.BudgetAlerts,
		UpdatedAt:     m.UpdatedAt,
	}
}

// BudgetSettingsFromEntity creates a BudgetSettingsModel from a domain entity.
func BudgetSettingsFromEntity(settings *entity.BudgetSettings) *BudgetSettingsModel {
	return &BudgetSettingsModel{
		UserID:        settings.UserID,
		MonthlyIncome: settings.MonthlyIncome,
		MonthlyBudget: settings.MonthlyBudget,
		SavingsGoal:   settings.SavingsGoal,
		BudgetAlerts:  settings.BudgetAlerts,
		UpdatedAt:     settings.UpdatedAt,
	}
}

// SettingsHistoryModel represents the settings_history table.
type SettingsHistoryModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_settings_history_user_changed"`
	Field     string          `gorm:"type:varchar(30);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ChangedAt time.Time       `gorm:"not null;index:idx_settings_history_user_changed"`
}

// TableName returns the table name for the SettingsHistoryModel.
func (SettingsHistoryModel) TableName() string {
	return "settings_history"
}

// ToEntity converts a SettingsHistoryModel to a domain history entry.
func (m *SettingsHistoryModel) ToEntity() *entity.SettingsHistoryEntry {
	return &entity.SettingsHistoryEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		Field:     entity.SettingsField(m.Field),
		Amount:    m.Amount,
		ChangedAt: m.ChangedAt,
	}
}

// SettingsHistoryFromEntity creates a SettingsHistoryModel from a domain history entry.
func SettingsHistoryFromEntity(entry *entity.SettingsHistoryEntry) *SettingsHistoryModel {
	return &SettingsHistoryModel{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Field:     string(entry.Field),
		Amount:    entry.Amount,
		ChangedAt: entry.ChangedAt,
	}
}
