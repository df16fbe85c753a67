package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/integration/email/templates"
)

// Worker polls the email queue, renders each due job and hands it to the sender.
type Worker struct {
	queue    adapter.EmailQueueRepository
	sender   adapter.EmailSender
	renderer *templates.Renderer
	config   WorkerConfig
	now      adapter.Clock

	lastPurge time.Time
}

// WorkerConfig holds configuration for the email worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// Retention is how long sent jobs are kept. Zero keeps them forever.
	Retention     time.Duration
	PurgeInterval time.Duration
	Clock         adapter.Clock
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  5 * time.Second,
		BatchSize:     10,
		Retention:     30 * 24 * time.Hour,
		PurgeInterval: 24 * time.Hour,
	}
}

// NewWorker creates a new email worker. Unset intervals and sizes fall back to the defaults.
func NewWorker(queue adapter.EmailQueueRepository, sender adapter.EmailSender, renderer *templates.Renderer, config WorkerConfig) *Worker {
	defaults := DefaultWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PurgeInterval <= 0 {
		config.PurgeInterval = defaults.PurgeInterval
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}

	return &Worker{
		queue:    queue,
		sender:   sender,
		renderer: renderer,
		config:   config,
		now:      now,
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Email worker started",
		"poll_interval", w.config.PollInterval,
		"batch_size", w.config.BatchSize,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		w.processBatch(ctx)
		w.purge(ctx)

		select {
		case <-ctx.Done():
			slog.Info("Email worker shutting down")
			return
		case <-ticker.C:
		}
	}
}

// ProcessNow delivers every job that is due right away.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}

func (w *Worker) purge(ctx context.Context) {
	now := w.now()
	if w.config.Retention <= 0 || now.Sub(w.lastPurge) < w.config.PurgeInterval {
		return
	}
	w.lastPurge = now

	deleted, err := w.queue.PurgeSent(ctx, now.Add(-w.config.Retention))
	if err != nil {
		slog.Error("Failed to purge sent email jobs", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Purged sent email jobs", "deleted", deleted, "retention", w.config.Retention)
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.queue.DuePending(ctx, w.now(), w.config.BatchSize)
	if err != nil {
		slog.Error("Failed to get pending email jobs", "error", err)
		return
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, job)
	}
}

func (w *Worker) deliver(ctx context.Context, job *entity.EmailJob) {
	logger := slog.With(
		"job_id", job.ID,
		"template", job.TemplateType,
		"recipient", job.RecipientEmail,
	)

	job.MarkProcessing()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as processing", "error", err)
		return
	}

	email, err := w.render(job)
	if err == nil {
		var receipt *adapter.DeliveryReceipt
		if receipt, err = w.sender.Send(ctx, *email); err == nil {
			job.MarkSent(receipt.MessageID, w.now())
			if err := w.queue.Update(ctx, job); err != nil {
				logger.Error("Failed to mark job as sent", "error", err)
				return
			}
			logger.Info("Email sent", "message_id", receipt.MessageID)
			return
		}
	}

	job.MarkFailed(err, domainerror.IsPermanentEmailFailure(err), w.now())
	if updateErr := w.queue.Update(ctx, job); updateErr != nil {
		logger.Error("Failed to update job after failure", "error", updateErr)
	}

	if job.Status == entity.EmailStatusFailed {
		logger.Warn("Email job failed for good", "attempts", job.Attempts, "error", err)
		return
	}
	logger.Info("Email job scheduled for retry", "attempts", job.Attempts, "scheduled_at", job.ScheduledAt, "error", err)
}

func (w *Worker) render(job *entity.EmailJob) (*adapter.OutgoingEmail, error) {
	var data any
	switch job.TemplateType {
	case entity.TemplateEmailVerification:
		data = templates.VerificationData{
			UserName:        stringField(job.TemplateData, "user_name"),
			VerificationURL: stringField(job.TemplateData, "verification_url"),
			ExpiresIn:       stringField(job.TemplateData, "expires_in"),
		}
	case entity.TemplateBudgetAlert:
		data = templates.BudgetAlertData{
			UserName:      stringField(job.TemplateData, "user_name"),
			MonthLabel:    stringField(job.TemplateData, "month_label"),
			MonthlyBudget: stringField(job.TemplateData, "monthly_budget"),
			MonthlySpent:  stringField(job.TemplateData, "monthly_spent"),
		}
	default:
		return nil, domainerror.NewEmailError(
			domainerror.ErrCodeUnknownTemplate,
			"cannot render "+string(job.TemplateType),
			domainerror.ErrUnknownTemplate,
		)
	}

	html, text, err := w.renderer.Render(string(job.TemplateType), data)
	if err != nil {
		return nil, domainerror.NewEmailError(domainerror.ErrCodeTemplateRenderFailed, "failed to render email", err)
	}

	return &adapter.OutgoingEmail{
		To:      job.RecipientEmail,
		Name:    job.RecipientName,
		Subject: job.Subject,
		HTML:    html,
		Text:    text,
	}, nil
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}
