package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// VerifyEmailInput represents the input for email verification.
type VerifyEmailInput struct {
	Token string
}

// VerifyEmailOutput represents the output of email verification.
type VerifyEmailOutput struct {
	Message string
}

// VerifyEmailUseCase confirms ownership of an email address.
type VerifyEmailUseCase struct {
	userRepo     adapter.UserRepository
	tokenService adapter.VerificationTokenService
	sessions     adapter.VerifiedSessionStore
}

// NewVerifyEmailUseCase creates a new VerifyEmailUseCase instance.
func NewVerifyEmailUseCase(
	userRepo adapter.UserRepository,
	tokenService adapter.VerificationTokenService,
	sessions adapter.VerifiedSessionStore,
) *VerifyEmailUseCase {
	return &VerifyEmailUseCase{
		userRepo:     userRepo,
		tokenService: tokenService,
		sessions:     sessions,
	}
}

// Execute marks the token owner as verified.
func (uc *VerifyEmailUseCase) Execute(ctx context.Context, input VerifyEmailInput) (*VerifyEmailOutput, error) {
	if input.Token == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeMissingFields,
			"verification token is required",
			domainerror.ErrInvalidVerificationToken,
		)
	}

	token, err := uc.tokenService.ValidateVerificationToken(ctx, input.Token)
	if err != nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidVerificationToken,
			"invalid or expired verification token",
			domainerror.ErrInvalidVerificationToken,
		)
	}

	now := time.Now().UTC()
	if now.After(token.ExpiresAt) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeExpiredVerificationToken,
			"verification token has expired",
			domainerror.ErrInvalidVerificationToken,
		)
	}

	user, err := uc.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrUserNotFound) {
			return nil, domainerror.NewAuthError(
				domainerror.ErrCodeInvalidVerificationToken,
				"invalid or expired verification token",
				domainerror.ErrInvalidVerificationToken,
			)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	message := "Email address verified"
	switch {
	case user.Email == token.Email:
		user.MarkEmailVerified(now)
	case user.HasPendingEmail(token.Email):
		taken, err := uc.userRepo.ExistsByEmail(ctx, token.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if taken {
			return nil, domainerror.NewAuthError(domainerror.ErrCodeEmailExists, "email already exists", domainerror.ErrEmailAlreadyExists)
		}
		user.ConfirmEmailChange(now)
		message = "Email address updated"
	default:
		// Issued for an address the user neither owns nor asked to move to.
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidVerificationToken,
			"invalid or expired verification token",
			domainerror.ErrInvalidVerificationToken,
		)
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := uc.tokenService.InvalidateVerificationToken(ctx, input.Token); err != nil {
		slog.Warn("Failed to invalidate verification token", "error", err, "userID", user.ID)
	}

	if uc.sessions != nil {
		if err := uc.sessions.MarkVerified(ctx, user.ID); err != nil {
			slog.Warn("Failed to cache verified session", "error", err, "userID", user.ID)
		}
	}

	return &VerifyEmailOutput{
		Message: message,
	}, nil
}
