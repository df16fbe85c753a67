package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/domain/entity"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

type fakePasswordService struct{}

func (fakePasswordService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswordService) VerifyPassword(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func (fakePasswordService) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return domainerror.ErrWeakPassword
	}
	return nil
}

type fakeTokenService struct {
	invalidated map[string]bool
	owners      map[string]uuid.UUID
	revoked     map[uuid.UUID]bool
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{
		invalidated: make(map[string]bool),
		owners:      make(map[string]uuid.UUID),
		revoked:     make(map[uuid.UUID]bool),
	}
}

func (s *fakeTokenService) GenerateTokenPair(_ context.Context, userID uuid.UUID, _ string, _ bool) (*adapter.TokenPair, error) {
	refresh := "refresh-" + uuid.NewString()
	s.owners[refresh] = userID
	return &adapter.TokenPair{AccessToken: "access-" + userID.String(), RefreshToken: refresh}, nil
}

func (s *fakeTokenService) ValidateAccessToken(_ context.Context, _ string) (*adapter.TokenClaims, error) {
	return nil, errors.New("not used")
}

func (s *fakeTokenService) ValidateRefreshToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	userID, ok := s.owners[token]
	if !ok {
		return nil, domainerror.ErrInvalidToken
	}
	return &adapter.TokenClaims{UserID: userID}, nil
}

func (s *fakeTokenService) InvalidateRefreshToken(_ context.Context, token string) error {
	s.invalidated[token] = true
	return nil
}

func (s *fakeTokenService) RevokeUserTokens(_ context.Context, userID uuid.UUID) error {
	s.revoked[userID] = true
	for token, owner := range s.owners {
		if owner == userID {
			s.invalidated[token] = true
		}
	}
	return nil
}

func (s *fakeTokenService) IsRefreshTokenValid(_ context.Context, token string) (bool, error) {
	_, ok := s.owners[token]
	return ok && !s.invalidated[token], nil
}

type fakeVerificationTokens struct {
	tokens map[string]*adapter.VerificationToken
	used   map[string]bool
	ttl    time.Duration
}

func newFakeVerificationTokens() *fakeVerificationTokens {
	return &fakeVerificationTokens{
		tokens: make(map[string]*adapter.VerificationToken),
		used:   make(map[string]bool),
		ttl:    24 * time.Hour,
	}
}

func (s *fakeVerificationTokens) GenerateVerificationToken(_ context.Context, userID uuid.UUID, email string) (*adapter.VerificationToken, error) {
	token := &adapter.VerificationToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	s.tokens[token.Token] = token
	return token, nil
}

func (s *fakeVerificationTokens) ValidateVerificationToken(_ context.Context, token string) (*adapter.VerificationToken, error) {
	t, ok := s.tokens[token]
	if !ok || s.used[token] {
		return nil, domainerror.ErrInvalidVerificationToken
	}
	return t, nil
}

func (s *fakeVerificationTokens) InvalidateVerificationToken(_ context.Context, token string) error {
	s.used[token] = true
	return nil
}

type fakeEmailService struct {
	verifications []adapter.QueueVerificationInput
}

func (s *fakeEmailService) QueueVerificationEmail(_ context.Context, input adapter.QueueVerificationInput) error {
	s.verifications = append(s.verifications, input)
	return nil
}

func (s *fakeEmailService) QueueBudgetAlertEmail(_ context.Context, _ adapter.QueueBudgetAlertInput) error {
	return nil
}

type fakeSessionStore struct {
	verified map[uuid.UUID]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{verified: make(map[uuid.UUID]bool)}
}

func (s *fakeSessionStore) MarkVerified(_ context.Context, userID uuid.UUID) error {
	s.verified[userID] = true
	return nil
}

func (s *fakeSessionStore) IsVerified(_ context.Context, userID uuid.UUID) (bool, error) {
	return s.verified[userID], nil
}

func (s *fakeSessionStore) Clear(_ context.Context, userID uuid.UUID) error {
	delete(s.verified, userID)
	return nil
}
