package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

const (
	updateEmailMessage        = "A verification link has been sent to your new email address. Please verify it to complete the email change"
	verifyCurrentEmailMessage = "Please verify your current email first. A verification link has been sent"
)

// UpdateEmailInput represents the input for moving an account to a new address.
type UpdateEmailInput struct {
	UserID          uuid.UUID
	NewEmail        string
	CurrentPassword string
}

// UpdateEmailOutput represents the output of an email change request.
type UpdateEmailOutput struct {
	Message      string
	PendingEmail string
}

// UpdateEmailUseCase starts an email change. The account keeps its address until the
// link sent to the new one is redeemed through VerifyEmailUseCase.
type UpdateEmailUseCase struct {
	userRepo        adapter.UserRepository
	passwordService adapter.PasswordService
	mailer          *verificationMailer
}

// NewUpdateEmailUseCase creates a new UpdateEmailUseCase instance.
func NewUpdateEmailUseCase(
	userRepo adapter.UserRepository,
	passwordService adapter.PasswordService,
	verificationTokenService adapter.VerificationTokenService,
	emailService adapter.EmailService,
	appBaseURL string,
) *UpdateEmailUseCase {
	return &UpdateEmailUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		mailer:          newVerificationMailer(verificationTokenService, emailService, appBaseURL),
	}
}

// Execute parks the new address on the user and mails a verification link to it. A user
// whose current address is unverified gets a link for that address instead and an
// AUTH-060001 error.
func (uc *UpdateEmailUseCase) Execute(ctx context.Context, input UpdateEmailInput) (*UpdateEmailOutput, error) {
	email := normalizeEmail(input.NewEmail)
	if !isValidEmail(email) {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidEmail, "invalid email format", domainerror.ErrInvalidEmail)
	}

	user, err := uc.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrUserNotFound) {
			return nil, domainerror.NewAuthError(domainerror.ErrCodeUserNotFound, "user not found", err)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if err := uc.passwordService.VerifyPassword(user.PasswordHash, input.CurrentPassword); err != nil {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidCredentials, "current password is incorrect", domainerror.ErrInvalidCredentials)
	}

	if !user.IsEmailVerified() {
		if err := uc.mailer.send(ctx, user); err != nil {
			slog.Error("Failed to resend verification email", "error", err, "userID", user.ID)
		}
		return nil, domainerror.NewAuthError(domainerror.ErrCodeEmailNotVerified, verifyCurrentEmailMessage, domainerror.ErrEmailNotVerified)
	}

	if email == user.Email {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeEmailUnchanged, "new email matches the current one", domainerror.ErrEmailUnchanged)
	}

	taken, err := uc.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if taken {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeEmailExists, "this email is already in use by another account", domainerror.ErrEmailAlreadyExists)
	}

	user.RequestEmailChange(email, time.Now())
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := uc.mailer.sendTo(ctx, user, email); err != nil {
		return nil, err
	}

	return &UpdateEmailOutput{
		Message:      updateEmailMessage,
		PendingEmail: email,
	}, nil
}
