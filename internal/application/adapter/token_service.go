package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenPair is what a successful login, registration or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims are the fields read back from a signed token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// TokenService signs session tokens and tracks which refresh tokens are still usable.
type TokenService interface {
	// GenerateTokenPair signs both tokens and stores the refresh token. rememberMe stretches
	// both lifetimes.
	GenerateTokenPair(ctx context.Context, userID uuid.UUID, email string, rememberMe bool) (*TokenPair, error)

	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
	ValidateRefreshToken(ctx context.Context, token string) (*TokenClaims, error)

	// IsRefreshTokenValid reports whether a stored refresh token is neither revoked nor expired.
	IsRefreshTokenValid(ctx context.Context, token string) (bool, error)
	InvalidateRefreshToken(ctx context.Context, token string) error

	// RevokeUserTokens revokes every refresh token the user holds.
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

// VerificationToken is a single-use token proving ownership of an email address.
type VerificationToken struct {
	Token     string
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// VerificationTokenService issues and redeems email verification tokens.
type VerificationTokenService interface {
	// GenerateVerificationToken issues a token for email and retires the user's older ones.
	GenerateVerificationToken(ctx context.Context, userID uuid.UUID, email string) (*VerificationToken, error)

	// ValidateVerificationToken returns the token while it is unused. Expiry is checked by the caller.
	ValidateVerificationToken(ctx context.Context, token string) (*VerificationToken, error)

	InvalidateVerificationToken(ctx context.Context, token string) error
}
