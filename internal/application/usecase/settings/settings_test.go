package settings

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

type memorySettingsRepo struct {
	settings map[uuid.UUID]*entity.BudgetSettings
	history  []*entity.SettingsHistoryEntry
	// historyErr makes the history insert fail, rolling the whole save back.
	historyErr error
}

func newMemorySettingsRepo() *memorySettingsRepo {
	return &memorySettingsRepo{settings: make(map[uuid.UUID]*entity.BudgetSettings)}
}

func (r *memorySettingsRepo) Get(_ context.Context, userID uuid.UUID) (*entity.BudgetSettings, error) {
	if s, ok := r.settings[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return entity.NewBudgetSettings(userID), nil
}

func (r *memorySettingsRepo) SaveWithHistory(_ context.Context, settings *entity.BudgetSettings, entries []*entity.SettingsHistoryEntry) error {
	if len(entries) > 0 && r.historyErr != nil {
		return r.historyErr
	}
	copied := *settings
	r.settings[settings.UserID] = &copied
	r.history = append(r.history, entries...)
	return nil
}

func (r *memorySettingsRepo) GetBaseMonthlyIncome(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.MonthlyIncome, nil
}

func (r *memorySettingsRepo) ListHistory(_ context.Context, userID uuid.UUID, field *entity.SettingsField, limit int) ([]*entity.SettingsHistoryEntry, error) {
	var out []*entity.SettingsHistoryEntry
	for _, e := range r.history {
		if e.UserID != userID || (field != nil && e.Field != *field) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestGetSettings_DefaultsToZero(t *testing.T) {
	uc := NewGetSettingsUseCase(newMemorySettingsRepo())

	output, err := uc.Execute(context.Background(), GetSettingsInput{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := output.Settings
	if !s.MonthlyIncome.IsZero() || !s.MonthlyBudget.IsZero() || !s.SavingsGoal.IsZero() || s.BudgetAlerts {
		t.Errorf("expected zeroed settings, got %+v", s)
	}
}

func TestUpdateSettings(t *testing.T) {
	tests := []struct {
		name            string
		input           func(userID uuid.UUID) UpdateSettingsInput
		expectedCode    domainerror.SettingsErrorCode
		expectedIncome  string
		expectedBudget  string
		expectedHistory int
	}{
		{
			name: "income and budget",
			input: func(userID uuid.UUID) UpdateSettingsInput {
				return UpdateSettingsInput{UserID: userID, MonthlyIncome: strPtr("4000"), MonthlyBudget: strPtr("2500.50")}
			},
			expectedIncome:  "4000",
			expectedBudget:  "2500.5",
			expectedHistory: 2,
		},
		{
			name: "alerts only records no history",
			input: func(userID uuid.UUID) UpdateSettingsInput {
				return UpdateSettingsInput{UserID: userID, BudgetAlerts: boolPtr(true)}
			},
			expectedIncome:  "0",
			expectedBudget:  "0",
			expectedHistory: 0,
		},
		{
			name: "unchanged value records no history",
			input: func(userID uuid.UUID) UpdateSettingsInput {
				return UpdateSettingsInput{UserID: userID, MonthlyIncome: strPtr("0")}
			},
			expectedIncome:  "0",
			expectedBudget:  "0",
			expectedHistory: 0,
		},
		{
			name: "empty update",
			input: func(userID uuid.UUID) UpdateSettingsInput {
				return UpdateSettingsInput{UserID: userID}
			},
			expectedCode: domainerror.ErrCodeNoSettingsChanges,
		},
		{
			name: "amount beyond cents",
			input: func(userID uuid.UUID) UpdateSettingsInput {
				return UpdateSettingsInput{UserID: userID, MonthlyBudget: strPtr("1.005")}
			},
			expectedCode: domainerror.ErrCodeInvalidSettingsAmount,
		},
		{
			name: "malformed amount",
			input: func(userID uuid.UUID) UpdateSettingsInput {
				return UpdateSettingsInput{UserID: userID, SavingsGoal: strPtr("lots")}
			},
			expectedCode: domainerror.ErrCodeInvalidSettingsAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemorySettingsRepo()
			userID := uuid.New()
			now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
			uc := NewUpdateSettingsUseCase(repo, func() time.Time { return now })

			output, err := uc.Execute(context.Background(), tt.input(userID))

			if tt.expectedCode != "" {
				var settingsErr *domainerror.SettingsError
				if !errors.As(err, &settingsErr) {
					t.Fatalf("expected SettingsError, got %v", err)
				}
				if settingsErr.Code != tt.expectedCode {
					t.Errorf("expected %s, got %s", tt.expectedCode, settingsErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			stored, _ := repo.Get(context.Background(), userID)
			if !stored.MonthlyIncome.Equal(decimal.RequireFromString(tt.expectedIncome)) {
				t.Errorf("expected income %s, got %s", tt.expectedIncome, stored.MonthlyIncome)
			}
			if !stored.MonthlyBudget.Equal(decimal.RequireFromString(tt.expectedBudget)) {
				t.Errorf("expected budget %s, got %s", tt.expectedBudget, stored.MonthlyBudget)
			}
			if len(output.History) != tt.expectedHistory || len(repo.history) != tt.expectedHistory {
				t.Errorf("expected %d history entries, got %d", tt.expectedHistory, len(repo.history))
			}
		})
	}
}

func TestUpdateSettings_HistoryFailureLeavesSettingsUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySettingsRepo()
	repo.historyErr = errors.New("settings_history unavailable")
	userID := uuid.New()
	uc := NewUpdateSettingsUseCase(repo, func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) })

	_, err := uc.Execute(ctx, UpdateSettingsInput{UserID: userID, MonthlyIncome: strPtr("4000")})

	var settingsErr *domainerror.SettingsError
	if !errors.As(err, &settingsErr) || settingsErr.Code != domainerror.ErrCodeSettingsInternalError {
		t.Fatalf("expected %s, got %v", domainerror.ErrCodeSettingsInternalError, err)
	}

	stored, _ := repo.Get(ctx, userID)
	if !stored.MonthlyIncome.IsZero() {
		t.Errorf("expected income to stay 0, got %s", stored.MonthlyIncome)
	}
	history, _ := repo.ListHistory(ctx, userID, nil, 10)
	if len(history) != 0 {
		t.Errorf("expected no history, got %d entries", len(history))
	}
}

func TestListHistory_NewestFirstAndFiltered(t *testing.T) {
	repo := newMemorySettingsRepo()
	userID := uuid.New()
	clock := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	uc := NewUpdateSettingsUseCase(repo, func() time.Time { return clock })

	for _, income := range []string{"1000", "1200", "1500"} {
		if _, err := uc.Execute(context.Background(), UpdateSettingsInput{UserID: userID, MonthlyIncome: strPtr(income), MonthlyBudget: strPtr(income)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		clock = clock.AddDate(0, 1, 0)
	}

	list := NewListHistoryUseCase(repo)
	output, err := list.Execute(context.Background(), ListHistoryInput{UserID: userID, Field: "monthly_income"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(output.Entries) != 3 {
		t.Fatalf("expected 3 income entries, got %d", len(output.Entries))
	}
	if !output.Entries[0].Amount.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("expected latest income first, got %s", output.Entries[0].Amount)
	}

	_, err = list.Execute(context.Background(), ListHistoryInput{UserID: userID, Field: "rent"})
	var settingsErr *domainerror.SettingsError
	if !errors.As(err, &settingsErr) || settingsErr.Code != domainerror.ErrCodeInvalidSettingsField {
		t.Errorf("expected invalid field error, got %v", err)
	}
}
