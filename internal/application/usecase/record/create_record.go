// Package record contains use cases for logging and listing financial records.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/application/usecase/analytics"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// CreateRecordInput represents the input for logging a purchase or income entry.
type CreateRecordInput struct {
	UserID      uuid.UUID
	Description string
	Amount      string
	Category    string
	Kind        string
	Rating      int
}

// CreateRecordOutput represents the output of logging a record.
type CreateRecordOutput struct {
	Record *entity.Record
}

// CreateRecordUseCase stores a record and tells live subscribers about it.
type CreateRecordUseCase struct {
	recordRepo   adapter.RecordRepository
	notifier     adapter.ChangeNotifier
	budgetAlerts *BudgetAlertNotifier
	now          adapter.Clock
}

// NewCreateRecordUseCase creates a new CreateRecordUseCase instance.
// budgetAlerts may be nil to disable overspending emails.
func NewCreateRecordUseCase(
	recordRepo adapter.RecordRepository,
	notifier adapter.ChangeNotifier,
	budgetAlerts *BudgetAlertNotifier,
	now adapter.Clock,
) *CreateRecordUseCase {
	if now == nil {
		now = time.Now
	}
	return &CreateRecordUseCase{
		recordRepo:   recordRepo,
		notifier:     notifier,
		budgetAlerts: budgetAlerts,
		now:          now,
	}
}

// Execute validates and stores the record.
func (uc *CreateRecordUseCase) Execute(ctx context.Context, input CreateRecordInput) (*CreateRecordOutput, error) {
	if _, err := entity.ParseMoney(input.Amount); err != nil {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeInvalidAmount,
			"amount must be a non-negative number with at most 13 digits and 2 decimal places",
			domainerror.ErrInvalidAmount,
		)
	}

	category := entity.Category(input.Category)
	if !category.IsValid() {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeInvalidCategory,
			fmt.Sprintf("category %q is not supported", input.Category),
			domainerror.ErrInvalidCategory,
		)
	}

	kind := entity.RecordKind(input.Kind)
	if kind != "" && !kind.IsValid() {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeInvalidRecordKind,
			"kind must be: expense or income",
			domainerror.ErrInvalidRecordKind,
		)
	}

	if input.Rating < 0 || input.Rating > entity.MaxRating {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeInvalidRating,
			"rating must be between 0 and 5",
			domainerror.ErrInvalidRating,
		)
	}

	record, err := entity.NewRecord(input.UserID, input.Description, input.Amount, category, kind, input.Rating, uc.now())
	if err != nil {
		return nil, domainerror.NewRecordError(domainerror.ErrCodeRecordInternalError, "failed to build record", err)
	}

	if err := uc.recordRepo.Create(ctx, record); err != nil {
		return nil, domainerror.NewRecordError(domainerror.ErrCodeRecordInternalError, "failed to save record", err)
	}

	// Subscribers reload on their own schedule; a lost signal only delays their view.
	if uc.notifier != nil {
		if err := uc.notifier.Publish(ctx, input.UserID); err != nil {
			slog.Warn("Failed to publish record change", "error", err, "userID", input.UserID)
		}
	}

	if uc.budgetAlerts != nil && !record.IsIncome() {
		uc.budgetAlerts.CheckAfterExpense(ctx, record)
	}

	return &CreateRecordOutput{Record: record}, nil
}

// BudgetAlertNotifier emails users whose spending for the month passed their budget. The
// email queue accepts one alert per user, month and budget amount, so concurrent expenses
// cannot send it twice.
type BudgetAlertNotifier struct {
	settingsRepo adapter.SettingsRepository
	loader       adapter.SnapshotLoader
	userRepo     adapter.UserRepository
	emailService adapter.EmailService
	now          adapter.Clock
}

// NewBudgetAlertNotifier creates a new BudgetAlertNotifier instance.
func NewBudgetAlertNotifier(
	settingsRepo adapter.SettingsRepository,
	loader adapter.SnapshotLoader,
	userRepo adapter.UserRepository,
	emailService adapter.EmailService,
	now adapter.Clock,
) *BudgetAlertNotifier {
	if now == nil {
		now = time.Now
	}
	return &BudgetAlertNotifier{
		settingsRepo: settingsRepo,
		loader:       loader,
		userRepo:     userRepo,
		emailService: emailService,
		now:          now,
	}
}

// CheckAfterExpense queues an alert when the month is over budget after expense. It reports
// whether a new alert was queued.
// Failures are logged, never returned.
func (n *BudgetAlertNotifier) CheckAfterExpense(ctx context.Context, expense *entity.Record) bool {
	settings, err := n.settingsRepo.Get(ctx, expense.UserID)
	if err != nil {
		slog.Warn("Failed to load budget settings for alert", "error", err, "userID", expense.UserID)
		return false
	}
	if !settings.BudgetAlerts || !settings.MonthlyBudget.IsPositive() {
		return false
	}
	if expense.Category == entity.CategorySavings {
		return false
	}

	snapshot, err := n.loader.LoadSnapshot(ctx, expense.UserID)
	if err != nil {
		slog.Warn("Failed to load records for budget alert", "error", err, "userID", expense.UserID)
		return false
	}

	now := n.now()
	overview := analytics.ComputeMonthlyOverview(snapshot.Records, now)
	if overview.MonthlyExpenses.LessThanOrEqual(settings.MonthlyBudget) {
		return false
	}

	user, err := n.userRepo.FindByID(ctx, expense.UserID)
	if err != nil {
		slog.Warn("Failed to load user for budget alert", "error", err, "userID", expense.UserID)
		return false
	}

	err = n.emailService.QueueBudgetAlertEmail(ctx, adapter.QueueBudgetAlertInput{
		UserID:        expense.UserID.String(),
		Period:        now.Format("2006-01"),
		UserEmail:     user.Email,
		UserName:      user.Name,
		MonthLabel:    overview.Label,
		MonthlyBudget: analytics.FormatCurrency(settings.MonthlyBudget),
		MonthlySpent:  analytics.FormatCurrency(overview.MonthlyExpenses),
	})
	if errors.Is(err, domainerror.ErrEmailAlreadyQueued) {
		return false
	}
	if err != nil {
		slog.Error("Failed to queue budget alert", "error", err, "userID", expense.UserID)
		return false
	}

	slog.Info("Budget alert queued", "userID", expense.UserID, "month", overview.Label)
	return true
}
