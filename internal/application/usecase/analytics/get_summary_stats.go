package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
)

// GetSummaryStatsInput represents the input for the dashboard summary.
type GetSummaryStatsInput struct {
	UserID uuid.UUID
}

// GetSummaryStatsOutput represents the dashboard summary.
type GetSummaryStatsOutput struct {
	Stats           SummaryStats
	Figures         SummaryFigures
	Overview        MonthlyOverview
	MonthlyBudget   decimal.Decimal
	RemainingBudget decimal.Decimal
	SkippedRecords  int
}

// GetSummaryStatsUseCase computes the four summary stats and the current month overview.
type GetSummaryStatsUseCase struct {
	settingsRepo adapter.SettingsRepository
	loader       adapter.SnapshotLoader
	now          adapter.Clock
}

// NewGetSummaryStatsUseCase creates a new GetSummaryStatsUseCase instance.
func NewGetSummaryStatsUseCase(settingsRepo adapter.SettingsRepository, loader adapter.SnapshotLoader, now adapter.Clock) *GetSummaryStatsUseCase {
	if now == nil {
		now = time.Now
	}
	return &GetSummaryStatsUseCase{
		settingsRepo: settingsRepo,
		loader:       loader,
		now:          now,
	}
}

// Execute loads settings and records and summarizes them relative to now.
func (uc *GetSummaryStatsUseCase) Execute(ctx context.Context, input GetSummaryStatsInput) (*GetSummaryStatsOutput, error) {
	var (
		settings *entity.BudgetSettings
		snapshot *entity.RecordSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := uc.settingsRepo.Get(gctx, input.UserID)
		settings = loaded
		return err
	})
	g.Go(func() error {
		loaded, err := uc.loader.LoadSnapshot(gctx, input.UserID)
		snapshot = loaded
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, unavailableError(err)
	}

	now := uc.now()
	figures := ComputeSummaryFigures(snapshot.Records, now)
	overview := ComputeMonthlyOverview(snapshot.Records, now)

	return &GetSummaryStatsOutput{
		Stats:           FormatSummaryStats(figures),
		Figures:         figures,
		Overview:        overview,
		MonthlyBudget:   settings.MonthlyBudget,
		RemainingBudget: settings.MonthlyBudget.Sub(overview.MonthlyExpenses),
		SkippedRecords:  snapshot.Skipped,
	}, nil
}
