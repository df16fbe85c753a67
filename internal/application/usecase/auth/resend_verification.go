package auth

import (
	"context"
	"log/slog"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

const resendVerificationMessage = "If an unverified account with that email exists, we have sent a new verification link"

// ResendVerificationInput represents the input for re-sending a verification email.
type ResendVerificationInput struct {
	Email string
}

// ResendVerificationOutput represents the output of re-sending a verification email.
type ResendVerificationOutput struct {
	Message string
}

// ResendVerificationUseCase sends a fresh verification link.
type ResendVerificationUseCase struct {
	userRepo adapter.UserRepository
	mailer   *verificationMailer
}

// NewResendVerificationUseCase creates a new ResendVerificationUseCase instance.
func NewResendVerificationUseCase(
	userRepo adapter.UserRepository,
	verificationTokenService adapter.VerificationTokenService,
	emailService adapter.EmailService,
	appBaseURL string,
) *ResendVerificationUseCase {
	return &ResendVerificationUseCase{
		userRepo: userRepo,
		mailer:   newVerificationMailer(verificationTokenService, emailService, appBaseURL),
	}
}

// Execute always answers with the same message to prevent email enumeration.
func (uc *ResendVerificationUseCase) Execute(ctx context.Context, input ResendVerificationInput) (*ResendVerificationOutput, error) {
	email := normalizeEmail(input.Email)
	if !isValidEmail(email) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"invalid email format",
			domainerror.ErrInvalidEmail,
		)
	}

	output := &ResendVerificationOutput{Message: resendVerificationMessage}

	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Debug("Verification resend requested for unknown email", "email", email)
		return output, nil
	}
	if user.IsEmailVerified() {
		return output, nil
	}

	if err := uc.mailer.send(ctx, user); err != nil {
		slog.Error("Failed to resend verification email", "error", err, "userID", user.ID)
	}

	return output, nil
}
