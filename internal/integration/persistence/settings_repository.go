package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

// settingsRepository implements the adapter.SettingsRepository interface.
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository instance.
func NewSettingsRepository(db *gorm.DB) adapter.SettingsRepository {
	return &settingsRepository{
		db: db,
	}
}

// Get returns the stored settings, or zeroed defaults for users who never saved any.
func (r *settingsRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.BudgetSettings, error) {
	var settingsModel model.BudgetSettingsModel
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settingsModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entity.NewBudgetSettings(userID), nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", result.Error)
	}
	return settingsModel.ToEntity(), nil
}

// SaveWithHistory upserts the settings row and inserts the history entries in one transaction.
func (r *settingsRepository) SaveWithHistory(ctx context.Context, settings *entity.BudgetSettings, entries []*entity.SettingsHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(model.BudgetSettingsFromEntity(settings))
		if result.Error != nil {
			return fmt.Errorf("failed to save settings: %w", result.Error)
		}

		if len(entries) == 0 {
			return nil
		}
		models := make([]*model.SettingsHistoryModel, len(entries))
		for i, entry := range entries {
			models[i] = model.SettingsHistoryFromEntity(entry)
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to append settings history: %w", err)
		}
		return nil
	})
}

// GetBaseMonthlyIncome reads only the monthly income.
func (r *settingsRepository) GetBaseMonthlyIncome(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var settingsModel model.BudgetSettingsModel
	result := r.db.WithContext(ctx).
		Select("user_id", "monthly_income").
		Where("user_id = ?", userID).
		First(&settingsModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to load monthly income: %w", result.Error)
	}
	return settingsModel.MonthlyIncome, nil
}

// ListHistory returns change entries newest first.
func (r *settingsRepository) ListHistory(ctx context.Context, userID uuid.UUID, field *entity.SettingsField, limit int) ([]*entity.SettingsHistoryEntry, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if field != nil {
		query = query.Where("field = ?", string(*field))
	}

	var models []model.SettingsHistoryModel
	result := query.Order("changed_at DESC").Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list settings history: %w", result.Error)
	}

	entries := make([]*entity.SettingsHistoryEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntity()
	}
	return entries, nil
}
