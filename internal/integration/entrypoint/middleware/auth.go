// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID.
	UserIDKey ContextKey = "user_id"
	// UserEmailKey is the context key for the authenticated user's email.
	UserEmailKey ContextKey = "user_email"
)

// accessTokenQueryParam carries the token on WebSocket handshakes, where browsers cannot set headers.
const accessTokenQueryParam = "access_token"

// AuthMiddleware provides JWT authentication and the verified-email gate.
type AuthMiddleware struct {
	tokenService    adapter.TokenService
	sessions        adapter.VerifiedSessionStore
	userRepo        adapter.UserRepository
	requireVerified bool
}

// NewAuthMiddleware creates a new auth middleware instance.
// With requireVerified false, RequireVerifiedEmail lets every authenticated user through.
func NewAuthMiddleware(
	tokenService adapter.TokenService,
	sessions adapter.VerifiedSessionStore,
	userRepo adapter.UserRepository,
	requireVerified bool,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService:    tokenService,
		sessions:        sessions,
		userRepo:        userRepo,
		requireVerified: requireVerified,
	}
}

// Authenticate returns a Gin middleware handler that enforces JWT authentication.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, message := bearerToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, message, string(code))
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid or expired token", string(domainerror.ErrCodeInvalidToken))
			return
		}

		c.Set(string(UserIDKey), claims.UserID)
		c.Set(string(UserEmailKey), claims.Email)

		c.Next()
	}
}

// RequireVerifiedEmail rejects users who have not confirmed their email address.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.requireVerified {
			c.Next()
			return
		}

		userID, ok := GetUserIDFromContext(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "User not authenticated", string(domainerror.ErrCodeMissingToken))
			return
		}

		ctx := c.Request.Context()
		if m.sessions != nil {
			verified, err := m.sessions.IsVerified(ctx, userID)
			if err != nil {
				slog.Warn("Verified session lookup failed", "error", err, "userID", userID)
			} else if verified {
				c.Next()
				return
			}
		}

		user, err := m.userRepo.FindByID(ctx, userID)
		if err != nil || !user.IsEmailVerified() {
			abortWithError(c, http.StatusForbidden, "Please verify your email address to continue", string(domainerror.ErrCodeEmailNotVerified))
			return
		}

		if m.sessions != nil {
			if err := m.sessions.MarkVerified(ctx, userID); err != nil {
				slog.Warn("Failed to cache verified session", "error", err, "userID", userID)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, domainerror.AuthErrorCode, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if token := c.Query(accessTokenQueryParam); token != "" {
				return token, "", ""
			}
		}
		return "", domainerror.ErrCodeMissingToken, "Authorization header is required"
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", domainerror.ErrCodeInvalidToken, "Invalid authorization header format"
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", domainerror.ErrCodeMissingToken, "Token is required"
	}
	return token, "", ""
}

func abortWithError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// GetUserIDFromContext extracts the user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}
