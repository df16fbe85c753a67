package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

func authErrorCode(t *testing.T, err error) domainerror.AuthErrorCode {
	t.Helper()
	var authErr *domainerror.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	return authErr.Code
}

func TestRegisterUser(t *testing.T) {
	tests := []struct {
		name         string
		input        RegisterUserInput
		existing     []*entity.User
		expectedCode domainerror.AuthErrorCode
	}{
		{
			name:  "success queues verification email",
			input: RegisterUserInput{Email: "New@Example.com", Name: "New", Password: "password123", TermsAccepted: true},
		},
		{
			name:         "terms not accepted",
			input:        RegisterUserInput{Email: "a@example.com", Name: "A", Password: "password123"},
			expectedCode: domainerror.ErrCodeTermsNotAccepted,
		},
		{
			name:         "invalid email",
			input:        RegisterUserInput{Email: "not-an-email", Name: "A", Password: "password123", TermsAccepted: true},
			expectedCode: domainerror.ErrCodeInvalidEmail,
		},
		{
			name:         "weak password",
			input:        RegisterUserInput{Email: "a@example.com", Name: "A", Password: "short", TermsAccepted: true},
			expectedCode: domainerror.ErrCodeWeakPassword,
		},
		{
			name:         "duplicate email",
			input:        RegisterUserInput{Email: "taken@example.com", Name: "A", Password: "password123", TermsAccepted: true},
			existing:     []*entity.User{entity.NewUser("taken@example.com", "T", "hashed:x", time.Now())},
			expectedCode: domainerror.ErrCodeEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emails := &fakeEmailService{}
			uc := NewRegisterUserUseCase(
				newFakeUserRepo(tt.existing...),
				fakePasswordService{},
				newFakeTokenService(),
				newFakeVerificationTokens(),
				emails,
				"http://app.test",
			)

			output, err := uc.Execute(context.Background(), tt.input)

			if tt.expectedCode != "" {
				if got := authErrorCode(t, err); got != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, got)
				}
				if len(emails.verifications) != 0 {
					t.Error("no email should be queued on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.User.Email != "new@example.com" {
				t.Errorf("expected normalized email, got %s", output.User.Email)
			}
			if output.User.IsEmailVerified() {
				t.Error("new accounts must start unverified")
			}
			if len(emails.verifications) != 1 {
				t.Fatalf("expected 1 verification email, got %d", len(emails.verifications))
			}
			if !strings.HasPrefix(emails.verifications[0].VerificationURL, "http://app.test/verify-email?token=") {
				t.Errorf("unexpected verification url %s", emails.verifications[0].VerificationURL)
			}
			if emails.verifications[0].ExpiresIn != "1 day" {
				t.Errorf("expected expiry of 1 day, got %s", emails.verifications[0].ExpiresIn)
			}
		})
	}
}

func TestLoginUser_CachesVerifiedSessionOnlyForVerifiedUsers(t *testing.T) {
	verified := entity.NewUser("v@example.com", "V", "hashed:password123", time.Now())
	verified.MarkEmailVerified(time.Now())
	unverified := entity.NewUser("u@example.com", "U", "hashed:password123", time.Now())

	sessions := newFakeSessionStore()
	uc := NewLoginUserUseCase(newFakeUserRepo(verified, unverified), fakePasswordService{}, newFakeTokenService(), sessions)

	for _, email := range []string{"v@example.com", "u@example.com"} {
		if _, err := uc.Execute(context.Background(), LoginUserInput{Email: email, Password: "password123"}); err != nil {
			t.Fatalf("login %s: unexpected error: %v", email, err)
		}
	}

	if !sessions.verified[verified.ID] {
		t.Error("expected verified user session to be cached")
	}
	if sessions.verified[unverified.ID] {
		t.Error("unverified user must not be cached as verified")
	}
}

func TestLoginUser_InvalidCredentials(t *testing.T) {
	user := entity.NewUser("v@example.com", "V", "hashed:password123", time.Now())
	uc := NewLoginUserUseCase(newFakeUserRepo(user), fakePasswordService{}, newFakeTokenService(), newFakeSessionStore())

	tests := []struct {
		name  string
		input LoginUserInput
	}{
		{name: "unknown email", input: LoginUserInput{Email: "x@example.com", Password: "password123"}},
		{name: "wrong password", input: LoginUserInput{Email: "v@example.com", Password: "wrong-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.input)
			if got := authErrorCode(t, err); got != domainerror.ErrCodeInvalidCredentials {
				t.Errorf("expected %s, got %s", domainerror.ErrCodeInvalidCredentials, got)
			}
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("success marks user and session", func(t *testing.T) {
		user := entity.NewUser("v@example.com", "V", "hashed:x", time.Now())
		repo := newFakeUserRepo(user)
		tokens := newFakeVerificationTokens()
		sessions := newFakeSessionStore()
		token, _ := tokens.GenerateVerificationToken(ctx, user.ID, user.Email)

		uc := NewVerifyEmailUseCase(repo, tokens, sessions)
		if _, err := uc.Execute(ctx, VerifyEmailInput{Token: token.Token}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !repo.users[user.ID].IsEmailVerified() {
			t.Error("expected user to be verified")
		}
		if !sessions.verified[user.ID] {
			t.Error("expected session to be marked verified")
		}
		if !tokens.used[token.Token] {
			t.Error("expected token to be consumed")
		}

		_, err := uc.Execute(ctx, VerifyEmailInput{Token: token.Token})
		if got := authErrorCode(t, err); got != domainerror.ErrCodeInvalidVerificationToken {
			t.Errorf("expected reused token to fail with %s, got %s", domainerror.ErrCodeInvalidVerificationToken, got)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		user := entity.NewUser("e@example.com", "E", "hashed:x", time.Now())
		tokens := newFakeVerificationTokens()
		tokens.ttl = -time.Minute
		token, _ := tokens.GenerateVerificationToken(ctx, user.ID, user.Email)

		uc := NewVerifyEmailUseCase(newFakeUserRepo(user), tokens, newFakeSessionStore())
		_, err := uc.Execute(ctx, VerifyEmailInput{Token: token.Token})
		if got := authErrorCode(t, err); got != domainerror.ErrCodeExpiredVerificationToken {
			t.Errorf("expected %s, got %s", domainerror.ErrCodeExpiredVerificationToken, got)
		}
	})

	t.Run("email changed since issue", func(t *testing.T) {
		user := entity.NewUser("old@example.com", "O", "hashed:x", time.Now())
		tokens := newFakeVerificationTokens()
		token, _ := tokens.GenerateVerificationToken(ctx, user.ID, user.Email)
		user.Email = "new@example.com"

		uc := NewVerifyEmailUseCase(newFakeUserRepo(user), tokens, newFakeSessionStore())
		_, err := uc.Execute(ctx, VerifyEmailInput{Token: token.Token})
		if got := authErrorCode(t, err); got != domainerror.ErrCodeInvalidVerificationToken {
			t.Errorf("expected %s, got %s", domainerror.ErrCodeInvalidVerificationToken, got)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		uc := NewVerifyEmailUseCase(newFakeUserRepo(), newFakeVerificationTokens(), newFakeSessionStore())
		_, err := uc.Execute(ctx, VerifyEmailInput{})
		if got := authErrorCode(t, err); got != domainerror.ErrCodeMissingFields {
			t.Errorf("expected %s, got %s", domainerror.ErrCodeMissingFields, got)
		}
	})
}

func TestLogoutUser_ClearsVerifiedSession(t *testing.T) {
	ctx := context.Background()
	user := entity.NewUser("v@example.com", "V", "hashed:x", time.Now())
	tokens := newFakeTokenService()
	sessions := newFakeSessionStore()
	pair, _ := tokens.GenerateTokenPair(ctx, user.ID, user.Email, false)
	_ = sessions.MarkVerified(ctx, user.ID)

	uc := NewLogoutUserUseCase(tokens, sessions)
	output, err := uc.Execute(ctx, LogoutUserInput{RefreshToken: pair.RefreshToken})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.Message != "Successfully logged out" {
		t.Errorf("unexpected message %q", output.Message)
	}
	if sessions.verified[user.ID] {
		t.Error("expected verified session to be cleared")
	}
	if !tokens.invalidated[pair.RefreshToken] {
		t.Error("expected refresh token to be invalidated")
	}
}

func TestRefreshToken(t *testing.T) {
	verified := entity.NewUser("v@example.com", "V", "hashed:x", time.Now())
	verified.MarkEmailVerified(time.Now())
	pending := entity.NewUser("p@example.com", "P", "hashed:x", time.Now())

	tests := []struct {
		name            string
		user            *entity.User
		stored          bool
		expectedSession bool
		expectedCode    domainerror.AuthErrorCode
	}{
		{name: "verified user renews session", user: verified, stored: true, expectedSession: true},
		{name: "unverified user gets no session", user: pending, stored: true, expectedSession: false},
		{name: "deleted user is rejected", user: pending, stored: false, expectedCode: domainerror.ErrCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			users := newFakeUserRepo()
			if tt.stored {
				users = newFakeUserRepo(tt.user)
			}
			tokens := newFakeTokenService()
			sessions := newFakeSessionStore()
			pair, _ := tokens.GenerateTokenPair(ctx, tt.user.ID, tt.user.Email, false)

			uc := NewRefreshTokenUseCase(tokens, users, sessions)
			output, err := uc.Execute(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
			if tt.expectedCode != "" {
				if got := authErrorCode(t, err); got != tt.expectedCode {
					t.Errorf("expected %s, got %s", tt.expectedCode, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.RefreshToken == pair.RefreshToken {
				t.Error("expected a new refresh token")
			}
			if sessions.verified[tt.user.ID] != tt.expectedSession {
				t.Errorf("expected verified session %v", tt.expectedSession)
			}

			_, err = uc.Execute(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
			if got := authErrorCode(t, err); got != domainerror.ErrCodeInvalidToken {
				t.Errorf("expected %s for reused token, got %s", domainerror.ErrCodeInvalidToken, got)
			}
			if !tokens.revoked[tt.user.ID] {
				t.Error("expected reuse to revoke every token of the user")
			}
			if sessions.verified[tt.user.ID] {
				t.Error("expected reuse to clear the verified session")
			}
			if _, err := uc.Execute(ctx, RefreshTokenInput{RefreshToken: output.RefreshToken}); err == nil {
				t.Error("expected the rotated token to be revoked as well")
			}
		})
	}
}

func TestResendVerification(t *testing.T) {
	verified := entity.NewUser("v@example.com", "V", "hashed:x", time.Now())
	verified.MarkEmailVerified(time.Now())
	pending := entity.NewUser("p@example.com", "P", "hashed:x", time.Now())

	tests := []struct {
		name           string
		email          string
		expectedEmails int
	}{
		{name: "unverified user gets a new link", email: "p@example.com", expectedEmails: 1},
		{name: "verified user gets nothing", email: "v@example.com", expectedEmails: 0},
		{name: "unknown email gets nothing", email: "nobody@example.com", expectedEmails: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emails := &fakeEmailService{}
			uc := NewResendVerificationUseCase(newFakeUserRepo(verified, pending), newFakeVerificationTokens(), emails, "http://app.test")

			output, err := uc.Execute(context.Background(), ResendVerificationInput{Email: tt.email})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.Message != resendVerificationMessage {
				t.Errorf("unexpected message %q", output.Message)
			}
			if len(emails.verifications) != tt.expectedEmails {
				t.Errorf("expected %d emails, got %d", tt.expectedEmails, len(emails.verifications))
			}
		})
	}
}
