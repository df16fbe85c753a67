package auth

import (
	"context"

	"github.com/money-tracker/backend/internal/application/adapter"
)

const logoutMessage = "Successfully logged out"

// LogoutUserInput represents the input for user logout.
type LogoutUserInput struct {
	RefreshToken string
}

// LogoutUserOutput represents the output of user logout.
type LogoutUserOutput struct {
	Message string
}

// LogoutUserUseCase ends a session. It always succeeds so a client can drop its tokens
// even when they are already unusable.
type LogoutUserUseCase struct {
	tokenService adapter.TokenService
	issuer       sessionIssuer
}

// NewLogoutUserUseCase creates a new LogoutUserUseCase instance.
func NewLogoutUserUseCase(tokenService adapter.TokenService, sessions adapter.VerifiedSessionStore) *LogoutUserUseCase {
	return &LogoutUserUseCase{
		tokenService: tokenService,
		issuer:       sessionIssuer{tokens: tokenService, sessions: sessions},
	}
}

func (uc *LogoutUserUseCase) Execute(ctx context.Context, input LogoutUserInput) (*LogoutUserOutput, error) {
	if claims, err := uc.tokenService.ValidateRefreshToken(ctx, input.RefreshToken); err == nil {
		uc.issuer.end(ctx, claims.UserID)
	}
	_ = uc.tokenService.InvalidateRefreshToken(ctx, input.RefreshToken)

	return &LogoutUserOutput{Message: logoutMessage}, nil
}
