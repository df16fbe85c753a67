package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
)

// verificationMailer issues a verification token and queues the email carrying it.
type verificationMailer struct {
	tokenService adapter.VerificationTokenService
	emailService adapter.EmailService
	appBaseURL   string
}

func newVerificationMailer(
	tokenService adapter.VerificationTokenService,
	emailService adapter.EmailService,
	appBaseURL string,
) *verificationMailer {
	return &verificationMailer{
		tokenService: tokenService,
		emailService: emailService,
		appBaseURL:   appBaseURL,
	}
}

func (m *verificationMailer) send(ctx context.Context, user *entity.User) error {
	return m.sendTo(ctx, user, user.Email)
}

// sendTo issues a token bound to address and mails the link there.
func (m *verificationMailer) sendTo(ctx context.Context, user *entity.User, address string) error {
	token, err := m.tokenService.GenerateVerificationToken(ctx, user.ID, address)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", m.appBaseURL, token.Token)

	if m.emailService == nil {
		slog.Info("Verification token generated (email service not configured)",
			"userID", user.ID,
			"email", address,
			"verificationURL", verificationURL,
		)
		return nil
	}

	err = m.emailService.QueueVerificationEmail(ctx, adapter.QueueVerificationInput{
		UserID:          user.ID.String(),
		UserEmail:       address,
		UserName:        user.Name,
		VerificationURL: verificationURL,
		ExpiresIn:       humanizeDuration(time.Until(token.ExpiresAt)),
	})
	if err != nil {
		return fmt.Errorf("failed to queue verification email: %w", err)
	}

	slog.Info("Verification email queued", "userID", user.ID, "email", address)
	return nil
}

func humanizeDuration(d time.Duration) string {
	hours := int(d.Round(time.Hour).Hours())
	switch {
	case hours <= 1:
		return "1 hour"
	case hours%24 == 0:
		days := hours / 24
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	default:
		return fmt.Sprintf("%d hours", hours)
	}
}
