package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

// TokenRepository defines the interface for token persistence operations.
type TokenRepository interface {
	// SaveRefreshToken saves a refresh token to the database.
	SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error

	// IsRefreshTokenValid checks if a refresh token exists, is not invalidated and has not expired.
	IsRefreshTokenValid(ctx context.Context, token string) (bool, error)

	// InvalidateRefreshToken marks a refresh token as invalidated.
	InvalidateRefreshToken(ctx context.Context, token string) error

	// RevokeUserRefreshTokens invalidates every open refresh token of a user.
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error

	// SaveVerificationToken stores a new email verification token.
	SaveVerificationToken(ctx context.Context, token string, userID uuid.UUID, email string, expiresAt time.Time) error

	// GetVerificationToken returns an unused verification token, or nil when none matches.
	GetVerificationToken(ctx context.Context, token string) (*model.EmailVerificationTokenModel, error)

	// MarkVerificationTokenUsed marks a verification token as used.
	MarkVerificationTokenUsed(ctx context.Context, token string) error

	// InvalidateUserVerificationTokens marks every open verification token of a user as used.
	InvalidateUserVerificationTokens(ctx context.Context, userID uuid.UUID) error
}

// tokenRepository implements the TokenRepository interface.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&model.RefreshTokenModel{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}).Error
}

func (r *tokenRepository) IsRefreshTokenValid(ctx context.Context, token string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token = ? AND invalidated = ? AND expires_at > ?", token, false, time.Now().UTC()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *tokenRepository) InvalidateRefreshToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token = ?", token).
		Update("invalidated", true).Error
}

func (r *tokenRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("user_id = ? AND invalidated = ?", userID, false).
		Update("invalidated", true).Error
}

func (r *tokenRepository) SaveVerificationToken(ctx context.Context, token string, userID uuid.UUID, email string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&model.EmailVerificationTokenModel{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}).Error
}

func (r *tokenRepository) GetVerificationToken(ctx context.Context, token string) (*model.EmailVerificationTokenModel, error) {
	var verificationToken model.EmailVerificationTokenModel
	result := r.db.WithContext(ctx).
		Where("token = ? AND used = ?", token, false).
		First(&verificationToken)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &verificationToken, nil
}

func (r *tokenRepository) MarkVerificationTokenUsed(ctx context.Context, token string) error {
	return r.markVerificationTokensUsed(ctx, "token = ?", token)
}

func (r *tokenRepository) InvalidateUserVerificationTokens(ctx context.Context, userID uuid.UUID) error {
	return r.markVerificationTokensUsed(ctx, "user_id = ? AND used = ?", userID, false)
}

func (r *tokenRepository) markVerificationTokensUsed(ctx context.Context, query string, args ...any) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.EmailVerificationTokenModel{}).
		Where(query, args...).
		Updates(map[string]any{
			"used":    true,
			"used_at": &now,
		}).Error
}
