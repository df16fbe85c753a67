package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/money-tracker/backend/internal/domain/entity"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

// openTestDB opens a private in-memory database with the given tables.
func openTestDB(t *testing.T, tables ...any) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSettingsRepository_SaveWithHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, &model.BudgetSettingsModel{}, &model.SettingsHistoryModel{})
	repo := NewSettingsRepository(db)

	userID := uuid.New()
	changedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	settings := entity.NewBudgetSettings(userID)
	settings.MonthlyIncome = decimal.NewFromInt(4000)
	settings.MonthlyBudget = decimal.NewFromInt(2500)
	settings.UpdatedAt = changedAt

	entries := []*entity.SettingsHistoryEntry{
		entity.NewSettingsHistoryEntry(userID, entity.SettingsFieldMonthlyIncome, settings.MonthlyIncome, changedAt),
		entity.NewSettingsHistoryEntry(userID, entity.SettingsFieldMonthlyBudget, settings.MonthlyBudget, changedAt),
	}
	if err := repo.SaveWithHistory(ctx, settings, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settings.MonthlyBudget = decimal.NewFromInt(3000)
	if err := repo.SaveWithHistory(ctx, settings, nil); err != nil {
		t.Fatalf("unexpected error on second save: %v", err)
	}

	stored, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.MonthlyIncome.Equal(decimal.NewFromInt(4000)) || !stored.MonthlyBudget.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("unexpected settings: income %s budget %s", stored.MonthlyIncome, stored.MonthlyBudget)
	}

	history, err := repo.ListHistory(ctx, userID, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(history))
	}
}

func TestSettingsRepository_SaveWithHistoryRollsBack(t *testing.T) {
	ctx := context.Background()
	// Without the history table the second insert fails inside the transaction.
	db := openTestDB(t, &model.BudgetSettingsModel{})
	repo := NewSettingsRepository(db)

	userID := uuid.New()
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	settings := entity.NewBudgetSettings(userID)
	settings.MonthlyIncome = decimal.NewFromInt(4000)
	settings.UpdatedAt = now

	err := repo.SaveWithHistory(ctx, settings, []*entity.SettingsHistoryEntry{
		entity.NewSettingsHistoryEntry(userID, entity.SettingsFieldMonthlyIncome, settings.MonthlyIncome, now),
	})
	if err == nil {
		t.Fatal("expected the history insert to fail")
	}

	var count int64
	if err := db.Model(&model.BudgetSettingsModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count settings: %v", err)
	}
	if count != 0 {
		t.Errorf("expected the settings write to be rolled back, found %d rows", count)
	}

	stored, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.MonthlyIncome.IsZero() {
		t.Errorf("expected default income, got %s", stored.MonthlyIncome)
	}
}
