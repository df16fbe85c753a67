package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// RefreshTokenInput represents the input for token refresh.
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenUseCase rotates a refresh token. Presenting a token that was already rotated
// or revoked revokes every token of its owner and ends the verified session.
type RefreshTokenUseCase struct {
	tokenService adapter.TokenService
	userRepo     adapter.UserRepository
	issuer       sessionIssuer
}

// NewRefreshTokenUseCase creates a new RefreshTokenUseCase instance.
func NewRefreshTokenUseCase(
	tokenService adapter.TokenService,
	userRepo adapter.UserRepository,
	sessions adapter.VerifiedSessionStore,
) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		tokenService: tokenService,
		userRepo:     userRepo,
		issuer:       sessionIssuer{tokens: tokenService, sessions: sessions},
	}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, input RefreshTokenInput) (*Session, error) {
	claims, err := uc.tokenService.ValidateRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, invalidRefreshToken("invalid or expired refresh token")
	}

	valid, err := uc.tokenService.IsRefreshTokenValid(ctx, input.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token validity: %w", err)
	}
	if !valid {
		if err := uc.tokenService.RevokeUserTokens(ctx, claims.UserID); err != nil {
			slog.Error("Failed to revoke refresh tokens after reuse", "error", err, "userID", claims.UserID)
		}
		uc.issuer.end(ctx, claims.UserID)
		slog.Warn("Refresh token reuse detected", "userID", claims.UserID)
		return nil, invalidRefreshToken("refresh token has been revoked")
	}

	user, err := uc.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrUserNotFound) {
			return nil, invalidRefreshToken("refresh token has been revoked")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := uc.tokenService.InvalidateRefreshToken(ctx, input.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to invalidate old token: %w", err)
	}

	return uc.issuer.open(ctx, user, false)
}

func invalidRefreshToken(message string) error {
	return domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, message, domainerror.ErrInvalidToken)
}
