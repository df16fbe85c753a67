package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus is the delivery state of a queued email.
type EmailStatus string

const (
	EmailStatusPending    EmailStatus = "pending"
	EmailStatusProcessing EmailStatus = "processing"
	EmailStatusSent       EmailStatus = "sent"
	EmailStatusFailed     EmailStatus = "failed"
)

// EmailTemplateType selects the template a queued email is rendered with.
type EmailTemplateType string

const (
	TemplateEmailVerification EmailTemplateType = "email_verification"
	TemplateBudgetAlert       EmailTemplateType = "budget_alert"
)

// MaxEmailAttempts bounds how often one email is handed to the provider.
const MaxEmailAttempts = 3

// emailRetryBackoff[n-1] is the wait after the n-th failed attempt. The last entry repeats.
var emailRetryBackoff = []time.Duration{time.Minute, 5 * time.Minute}

// EmailMessage is an email as the application asks for it, before it is queued.
// DedupeKey, when set, lets the queue accept the message only once.
type EmailMessage struct {
	Template  EmailTemplateType
	To        string
	Name      string
	Subject   string
	Data      map[string]any
	DedupeKey string
}

// EmailJob is one message in the outbound queue.
type EmailJob struct {
	ID             uuid.UUID
	TemplateType   EmailTemplateType
	RecipientEmail string
	RecipientName  string
	Subject        string
	TemplateData   map[string]any
	DedupeKey      string
	Status         EmailStatus
	Attempts       int
	MaxAttempts    int
	LastError      string
	ResendID       string
	CreatedAt      time.Time
	ScheduledAt    time.Time
	ProcessedAt    *time.Time
}

// NewEmailJob queues msg for delivery as soon as the worker next polls.
func NewEmailJob(msg EmailMessage, now time.Time) *EmailJob {
	now = now.UTC()
	data := msg.Data
	if data == nil {
		data = map[string]any{}
	}

	return &EmailJob{
		ID:             uuid.New(),
		TemplateType:   msg.Template,
		RecipientEmail: msg.To,
		RecipientName:  msg.Name,
		Subject:        msg.Subject,
		TemplateData:   data,
		DedupeKey:      msg.DedupeKey,
		Status:         EmailStatusPending,
		MaxAttempts:    MaxEmailAttempts,
		CreatedAt:      now,
		ScheduledAt:    now,
	}
}

// Due reports whether the worker should pick the job up at now.
func (e *EmailJob) Due(now time.Time) bool {
	return e.Status == EmailStatusPending && !now.Before(e.ScheduledAt)
}

func (e *EmailJob) MarkProcessing() {
	e.Status = EmailStatusProcessing
}

// MarkSent stores the provider's message id and closes the job.
func (e *EmailJob) MarkSent(providerID string, now time.Time) {
	e.Attempts++
	e.Status = EmailStatusSent
	e.ResendID = providerID
	e.LastError = ""
	e.close(now)
}

// MarkFailed counts a failed attempt. A temporary failure goes back to pending behind a
// backoff until the attempts run out; a permanent one closes the job right away.
func (e *EmailJob) MarkFailed(cause error, permanent bool, now time.Time) {
	e.Attempts++
	e.LastError = cause.Error()

	if permanent || e.Attempts >= e.MaxAttempts {
		e.Status = EmailStatusFailed
		e.close(now)
		return
	}

	e.Status = EmailStatusPending
	step := min(e.Attempts, len(emailRetryBackoff)) - 1
	e.ScheduledAt = now.UTC().Add(emailRetryBackoff[step])
}

func (e *EmailJob) close(now time.Time) {
	at := now.UTC()
	e.ProcessedAt = &at
}
