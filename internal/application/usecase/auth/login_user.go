package auth

import (
	"context"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// LoginUserInput represents the input for user login.
type LoginUserInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// LoginUserUseCase exchanges credentials for a session.
type LoginUserUseCase struct {
	userRepo        adapter.UserRepository
	passwordService adapter.PasswordService
	issuer          sessionIssuer
}

// NewLoginUserUseCase creates a new LoginUserUseCase instance.
func NewLoginUserUseCase(
	userRepo adapter.UserRepository,
	passwordService adapter.PasswordService,
	tokenService adapter.TokenService,
	sessions adapter.VerifiedSessionStore,
) *LoginUserUseCase {
	return &LoginUserUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		issuer:          sessionIssuer{tokens: tokenService, sessions: sessions},
	}
}

// Execute answers unknown addresses and wrong passwords with the same error.
func (uc *LoginUserUseCase) Execute(ctx context.Context, input LoginUserInput) (*Session, error) {
	user, err := uc.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, invalidCredentials()
	}
	if err := uc.passwordService.VerifyPassword(user.PasswordHash, input.Password); err != nil {
		return nil, invalidCredentials()
	}

	return uc.issuer.open(ctx, user, input.RememberMe)
}

func invalidCredentials() error {
	return domainerror.NewAuthError(domainerror.ErrCodeInvalidCredentials, "invalid email or password", domainerror.ErrInvalidCredentials)
}
