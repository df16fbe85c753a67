package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/resend/resend-go/v2"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// ResendClient implements the adapter.EmailSender interface using Resend.
type ResendClient struct {
	client *resend.Client
	from   string
}

// NewResendClient creates a new Resend client. An empty baseURL keeps the public Resend API.
func NewResendClient(apiKey, fromName, fromEmail, baseURL string) (*ResendClient, error) {
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = parsed
	}

	return &ResendClient{
		client: client,
		from:   fmt.Sprintf("%s <%s>", fromName, fromEmail),
	}, nil
}

// Send hands one email to Resend.
func (c *ResendClient) Send(ctx context.Context, email adapter.OutgoingEmail) (*adapter.DeliveryReceipt, error) {
	resp, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return nil, classifyDeliveryError(err)
	}

	return &adapter.DeliveryReceipt{MessageID: resp.Id}, nil
}

// rejectionMarkers match Resend failures that will repeat on retry: bad credentials,
// forbidden senders and validation errors. Rate limits and 5xx responses are deferred.
var rejectionMarkers = []string{
	"401",
	"403",
	"422",
	"unauthorized",
	"forbidden",
	"validation",
	"invalid",
	"bad request",
}

func classifyDeliveryError(err error) *domainerror.EmailError {
	message := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(message, marker) {
			return domainerror.NewEmailError(domainerror.ErrCodeDeliveryRejected, "email rejected by provider", err)
		}
	}
	return domainerror.NewEmailError(domainerror.ErrCodeDeliveryDeferred, "email delivery deferred", err)
}

// RecordingSender keeps every email in memory instead of sending it. It is used in
// tests and when no Resend API key is configured.
type RecordingSender struct {
	mu        sync.Mutex
	sent      []adapter.OutgoingEmail
	failWith  error
	permanent bool
}

// NewRecordingSender creates an empty RecordingSender.
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

// Send records the email, or fails when a failure was configured.
func (s *RecordingSender) Send(_ context.Context, input adapter.OutgoingEmail) (*adapter.DeliveryReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		code := domainerror.ErrCodeDeliveryDeferred
		if s.permanent {
			code = domainerror.ErrCodeDeliveryRejected
		}
		return nil, domainerror.NewEmailError(code, "recorded failure", s.failWith)
	}

	s.sent = append(s.sent, input)
	return &adapter.DeliveryReceipt{MessageID: fmt.Sprintf("local-%d", len(s.sent))}, nil
}

// Sent returns a copy of every recorded email.
func (s *RecordingSender) Sent() []adapter.OutgoingEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]adapter.OutgoingEmail(nil), s.sent...)
}

// SetFailure makes subsequent sends fail with err.
func (s *RecordingSender) SetFailure(err error, permanent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
	s.permanent = permanent
}

var (
	_ adapter.EmailSender = (*ResendClient)(nil)
	_ adapter.EmailSender = (*RecordingSender)(nil)
)
