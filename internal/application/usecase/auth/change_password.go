package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// ChangePasswordInput represents the input for changing the signed-in user's password.
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordUseCase replaces a password and signs every other session out.
type ChangePasswordUseCase struct {
	userRepo        adapter.UserRepository
	passwordService adapter.PasswordService
	tokenService    adapter.TokenService
	issuer          sessionIssuer
}

// NewChangePasswordUseCase creates a new ChangePasswordUseCase instance.
func NewChangePasswordUseCase(
	userRepo adapter.UserRepository,
	passwordService adapter.PasswordService,
	tokenService adapter.TokenService,
	sessions adapter.VerifiedSessionStore,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
		issuer:          sessionIssuer{tokens: tokenService, sessions: sessions},
	}
}

// Execute stores the new password, revokes every refresh token of the user and returns a
// fresh session for the caller.
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, input ChangePasswordInput) (*Session, error) {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeMissingFields, "current and new password are required", domainerror.ErrInvalidCredentials)
	}
	if err := uc.passwordService.ValidatePasswordStrength(input.NewPassword); err != nil {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeWeakPassword, "password does not meet minimum requirements", domainerror.ErrWeakPassword)
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

	hash, err := uc.passwordService.HashPassword(input.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.ChangePassword(hash, time.Now())
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user password: %w", err)
	}

	if err := uc.tokenService.RevokeUserTokens(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	return uc.issuer.open(ctx, user, false)
}
