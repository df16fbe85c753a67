package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/domain/valueobject"
)

// GetAnalyticsInput represents the input for the analytics views.
type GetAnalyticsInput struct {
	UserID uuid.UUID
	Range  string
}

// GetAnalyticsOutput represents the computed analytics views.
type GetAnalyticsOutput struct {
	Analytics      Analytics
	BaseIncome     decimal.Decimal
	SkippedRecords int
}

// GetAnalyticsUseCase computes the monthly, category and savings views once.
type GetAnalyticsUseCase struct {
	settingsRepo adapter.SettingsRepository
	loader       adapter.SnapshotLoader
	now          adapter.Clock
}

// NewGetAnalyticsUseCase creates a new GetAnalyticsUseCase instance.
func NewGetAnalyticsUseCase(settingsRepo adapter.SettingsRepository, loader adapter.SnapshotLoader, now adapter.Clock) *GetAnalyticsUseCase {
	if now == nil {
		now = time.Now
	}
	return &GetAnalyticsUseCase{
		settingsRepo: settingsRepo,
		loader:       loader,
		now:          now,
	}
}

// Execute loads the base income and the record snapshot, then aggregates them.
func (uc *GetAnalyticsUseCase) Execute(ctx context.Context, input GetAnalyticsInput) (*GetAnalyticsOutput, error) {
	selector, err := parseRange(input.Range)
	if err != nil {
		return nil, err
	}

	baseIncome, snapshot, err := loadInputs(ctx, uc.settingsRepo, uc.loader, input.UserID)
	if err != nil {
		return nil, err
	}

	window, err := selector.Resolve(uc.now())
	if err != nil {
		return nil, invalidRangeError(input.Range)
	}

	return &GetAnalyticsOutput{
		Analytics:      Compute(snapshot.Records, window, baseIncome),
		BaseIncome:     baseIncome,
		SkippedRecords: snapshot.Skipped,
	}, nil
}

func parseRange(value string) (valueobject.WindowSelector, error) {
	selector, err := valueobject.ParseWindowSelector(value)
	if err != nil {
		return "", invalidRangeError(value)
	}
	return selector, nil
}

func invalidRangeError(value string) error {
	return domainerror.NewAnalyticsError(
		domainerror.ErrCodeInvalidRange,
		fmt.Sprintf("range %q is not supported, use: 6months, ytd, or 1year", value),
		domainerror.ErrInvalidRange,
	)
}

func unavailableError(err error) error {
	return domainerror.NewAnalyticsError(
		domainerror.ErrCodeAnalyticsUnavailable,
		"analytics data is temporarily unavailable",
		err,
	)
}

// loadInputs reads the base income and the snapshot concurrently. Either failure fails
// the whole load so callers never render a partial view as if it were empty.
func loadInputs(
	ctx context.Context,
	settingsRepo adapter.SettingsRepository,
	loader adapter.SnapshotLoader,
	userID uuid.UUID,
) (decimal.Decimal, *entity.RecordSnapshot, error) {
	var (
		baseIncome decimal.Decimal
		snapshot   *entity.RecordSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, err := settingsRepo.GetBaseMonthlyIncome(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load base income: %w", err)
		}
		baseIncome = income
		return nil
	})
	g.Go(func() error {
		loaded, err := loader.LoadSnapshot(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load records: %w", err)
		}
		snapshot = loaded
		return nil
	})

	if err := g.Wait(); err != nil {
		return decimal.Zero, nil, unavailableError(err)
	}
	return baseIncome, snapshot, nil
}
