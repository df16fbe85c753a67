package adapter

import "context"

// OutgoingEmail is a rendered message ready for the provider.
type OutgoingEmail struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// DeliveryReceipt identifies a message accepted by the provider.
type DeliveryReceipt struct {
	MessageID string
}

// EmailSender hands rendered emails to the delivery provider. Failures are returned as
// *domainerror.EmailError so the worker can tell a rejection from a deferral.
type EmailSender interface {
	Send(ctx context.Context, email OutgoingEmail) (*DeliveryReceipt, error)
}

// EmailService queues transactional emails for the background worker.
type EmailService interface {
	QueueVerificationEmail(ctx context.Context, input QueueVerificationInput) error
	QueueBudgetAlertEmail(ctx context.Context, input QueueBudgetAlertInput) error
}

// QueueVerificationInput represents the input for queueing a verification email.
type QueueVerificationInput struct {
	UserID          string
	UserEmail       string
	UserName        string
	VerificationURL string
	ExpiresIn       string
}

// QueueBudgetAlertInput represents the input for queueing a budget alert email.
type QueueBudgetAlertInput struct {
	UserID        string
	Period        string // YYYY-MM
	UserEmail     string
	UserName      string
	MonthLabel    string
	MonthlyBudget string
	MonthlySpent  string
}
