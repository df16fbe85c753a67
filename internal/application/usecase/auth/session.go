// Package auth contains the account and session use cases.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail is applied to every address before it is stored or looked up.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Session is the token pair handed to a client together with the account it opens.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// sessionIssuer signs token pairs and keeps the verified-session marker in step with them:
// a verified user's marker is written whenever a refresh token is issued and dropped when
// the session ends.
type sessionIssuer struct {
	tokens   adapter.TokenService
	sessions adapter.VerifiedSessionStore
}

func (s sessionIssuer) open(ctx context.Context, user *entity.User, rememberMe bool) (*Session, error) {
	pair, err := s.tokens.GenerateTokenPair(ctx, user.ID, user.Email, rememberMe)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if user.IsEmailVerified() && s.sessions != nil {
		if err := s.sessions.MarkVerified(ctx, user.ID); err != nil {
			slog.Warn("Failed to cache verified session", "error", err, "userID", user.ID)
		}
	}

	return &Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

func (s sessionIssuer) end(ctx context.Context, userID uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Clear(ctx, userID); err != nil {
		slog.Warn("Failed to clear verified session", "error", err, "userID", userID)
	}
}
