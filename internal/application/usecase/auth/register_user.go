package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// RegisterUserInput represents the input for user registration.
type RegisterUserInput struct {
	Email         string
	Name          string
	Password      string
	TermsAccepted bool
}

// RegisterUserUseCase opens an account. The account starts unverified and a verification
// email is queued for it; the returned session works for the routes that do not require
// a verified address.
type RegisterUserUseCase struct {
	userRepo        adapter.UserRepository
	passwordService adapter.PasswordService
	issuer          sessionIssuer
	mailer          *verificationMailer
}

// NewRegisterUserUseCase creates a new RegisterUserUseCase instance.
func NewRegisterUserUseCase(
	userRepo adapter.UserRepository,
	passwordService adapter.PasswordService,
	tokenService adapter.TokenService,
	verificationTokenService adapter.VerificationTokenService,
	emailService adapter.EmailService,
	appBaseURL string,
) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		issuer:          sessionIssuer{tokens: tokenService},
		mailer:          newVerificationMailer(verificationTokenService, emailService, appBaseURL),
	}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, input RegisterUserInput) (*Session, error) {
	email := normalizeEmail(input.Email)
	if err := uc.validate(email, input); err != nil {
		return nil, err
	}

	taken, err := uc.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if taken {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeEmailExists, "email already exists", domainerror.ErrEmailAlreadyExists)
	}

	hash, err := uc.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entity.NewUser(email, strings.TrimSpace(input.Name), hash, time.Now().UTC())
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The account exists either way; the user can ask for the email again.
	if err := uc.mailer.send(ctx, user); err != nil {
		slog.Error("Failed to send verification email", "error", err, "userID", user.ID)
	}

	return uc.issuer.open(ctx, user, false)
}

func (uc *RegisterUserUseCase) validate(email string, input RegisterUserInput) error {
	switch {
	case !input.TermsAccepted:
		return domainerror.NewAuthError(domainerror.ErrCodeTermsNotAccepted, "terms of service must be accepted", domainerror.ErrTermsNotAccepted)
	case !isValidEmail(email):
		return domainerror.NewAuthError(domainerror.ErrCodeInvalidEmail, "invalid email format", domainerror.ErrInvalidEmail)
	}

	if err := uc.passwordService.ValidatePasswordStrength(input.Password); err != nil {
		return domainerror.NewAuthError(domainerror.ErrCodeWeakPassword, "password does not meet minimum requirements", domainerror.ErrWeakPassword)
	}
	return nil
}
