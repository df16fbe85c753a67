// Package email queues, renders and delivers transactional emails.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

const subjectSuffix = " - Money Tracker"

// Service writes emails to the queue; the Worker delivers them.
type Service struct {
	queue adapter.EmailQueueRepository
	now   adapter.Clock
}

// NewService creates a new email service. A nil clock uses time.Now.
func NewService(queue adapter.EmailQueueRepository, now adapter.Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		queue: queue,
		now:   now,
	}
}

// QueueVerificationEmail queues an email address verification message.
func (s *Service) QueueVerificationEmail(ctx context.Context, input adapter.QueueVerificationInput) error {
	return s.enqueue(ctx, entity.EmailMessage{
		Template: entity.TemplateEmailVerification,
		To:       input.UserEmail,
		Name:     input.UserName,
		Subject:  "Verify your email" + subjectSuffix,
		Data: map[string]any{
			"user_id":          input.UserID,
			"user_name":        input.UserName,
			"verification_url": input.VerificationURL,
			"expires_in":       input.ExpiresIn,
		},
	})
}

// QueueBudgetAlertEmail queues a notice that monthly spending passed the budget. Only the
// first alert per user, month and budget amount is accepted; repeats return
// domainerror.ErrEmailAlreadyQueued.
func (s *Service) QueueBudgetAlertEmail(ctx context.Context, input adapter.QueueBudgetAlertInput) error {
	return s.enqueue(ctx, entity.EmailMessage{
		Template: entity.TemplateBudgetAlert,
		To:       input.UserEmail,
		Name:     input.UserName,
		Subject:  fmt.Sprintf("You went over budget in %s%s", input.MonthLabel, subjectSuffix),
		Data: map[string]any{
			"user_name":      input.UserName,
			"month_label":    input.MonthLabel,
			"monthly_budget": input.MonthlyBudget,
			"monthly_spent":  input.MonthlySpent,
		},
		DedupeKey: budgetAlertKey(input),
	})
}

func budgetAlertKey(input adapter.QueueBudgetAlertInput) string {
	if input.UserID == "" || input.Period == "" {
		return ""
	}
	return fmt.Sprintf("budget_alert:%s:%s:%s", input.UserID, input.Period, input.MonthlyBudget)
}

func (s *Service) enqueue(ctx context.Context, msg entity.EmailMessage) error {
	err := s.queue.Create(ctx, entity.NewEmailJob(msg, s.now()))
	if errors.Is(err, domainerror.ErrEmailAlreadyQueued) {
		return err
	}
	if err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			fmt.Sprintf("failed to queue %s email", msg.Template),
			err,
		)
	}
	return nil
}

var _ adapter.EmailService = (*Service)(nil)
