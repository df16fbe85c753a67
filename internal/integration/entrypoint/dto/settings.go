package dto

import (
	"time"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// UpdateSettingsRequest represents a partial update of budget settings.
// Amounts are decimal strings; omitted fields keep their value.
type UpdateSettingsRequest struct {
	MonthlyIncome *string `json:"monthly_income,omitempty"`
	MonthlyBudget *string `json:"monthly_budget,omitempty"`
	SavingsGoal   *string `json:"savings_goal,omitempty"`
	BudgetAlerts  *bool   `json:"budget_alerts,omitempty"`
}

// SettingsHistoryQuery holds the query parameters for settings history.
type SettingsHistoryQuery struct {
	Field string `form:"field"`
	Limit int    `form:"limit"`
}

// SettingsResponse represents budget settings in API responses.
type SettingsResponse struct {
	MonthlyIncome string    `json:"monthly_income"`
	MonthlyBudget string    `json:"monthly_budget"`
	SavingsGoal   string    `json:"savings_goal"`
	BudgetAlerts  bool      `json:"budget_alerts"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SettingsHistoryEntryResponse represents one recorded change.
type SettingsHistoryEntryResponse struct {
	ID        string    `json:"id"`
	Field     string    `json:"field"`
	Amount    string    `json:"amount"`
	ChangedAt time.Time `json:"changed_at"`
}

// SettingsHistoryResponse wraps the history entries.
type SettingsHistoryResponse struct {
	Data []SettingsHistoryEntryResponse `json:"data"`
}

// ToSettingsResponse converts domain settings to the DTO.
func ToSettingsResponse(settings *entity.BudgetSettings) SettingsResponse {
	return SettingsResponse{
		MonthlyIncome: settings.MonthlyIncome.StringFixed(2),
		MonthlyBudget: settings.MonthlyBudget.StringFixed(2),
		SavingsGoal:   settings.SavingsGoal.StringFixed(2),
		BudgetAlerts:  settings.BudgetAlerts,
		UpdatedAt:     settings.UpdatedAt,
	}
}

// ToSettingsHistoryResponse converts history entries to the DTO.
func ToSettingsHistoryResponse(entries []*entity.SettingsHistoryEntry) SettingsHistoryResponse {
	data := make([]SettingsHistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, SettingsHistoryEntryResponse{
			ID:        entry.ID.String(),
			Field:     string(entry.Field),
			Amount:    entry.Amount.StringFixed(2),
			ChangedAt: entry.ChangedAt,
		})
	}
	return SettingsHistoryResponse{Data: data}
}
