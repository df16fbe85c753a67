package adapters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/money-tracker/backend/internal/application/adapter"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

type memoryTokenRepository struct {
	mu            sync.Mutex
	refresh       map[string]bool
	verifications map[string]*model.EmailVerificationTokenModel
}

func newMemoryTokenRepository() *memoryTokenRepository {
	return &memoryTokenRepository{
		refresh:       make(map[string]bool),
		verifications: make(map[string]*model.EmailVerificationTokenModel),
	}
}

func (r *memoryTokenRepository) SaveRefreshToken(_ context.Context, token string, _ uuid.UUID, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh[token] = true
	return nil
}

func (r *memoryTokenRepository) IsRefreshTokenValid(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refresh[token], nil
}

func (r *memoryTokenRepository) InvalidateRefreshToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh[token] = false
	return nil
}

func (r *memoryTokenRepository) RevokeUserRefreshTokens(context.Context, uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token := range r.refresh {
		r.refresh[token] = false
	}
	return nil
}

func (r *memoryTokenRepository) SaveVerificationToken(_ context.Context, token string, userID uuid.UUID, email string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifications[token] = &model.EmailVerificationTokenModel{Token: token, UserID: userID, Email: email, ExpiresAt: expiresAt}
	return nil
}

func (r *memoryTokenRepository) GetVerificationToken(_ context.Context, token string) (*model.EmailVerificationTokenModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.verifications[token]
	if !ok || stored.Used {
		return nil, nil
	}
	return stored, nil
}

func (r *memoryTokenRepository) MarkVerificationTokenUsed(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.verifications[token]; ok {
		stored.Used = true
	}
	return nil
}

func (r *memoryTokenRepository) InvalidateUserVerificationTokens(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.verifications {
		if stored.UserID == userID {
			stored.Used = true
		}
	}
	return nil
}

func TestTokenService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTokenRepository()
	service := NewTokenService("test-secret", TokenDurations{Access: time.Minute, Refresh: time.Hour}, repo)
	userID := uuid.New()

	pair, err := service.GenerateTokenPair(ctx, userID, "ana@example.com", false)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	claims, err := service.ValidateAccessToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("access token rejected: %v", err)
	}
	if claims.UserID != userID || claims.Email != "ana@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := service.ValidateAccessToken(ctx, pair.RefreshToken); err == nil {
		t.Error("expected refresh token to be rejected as access token")
	}
	if _, err := service.ValidateRefreshToken(ctx, pair.AccessToken); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}

	valid, _ := service.IsRefreshTokenValid(ctx, pair.RefreshToken)
	if !valid {
		t.Error("expected stored refresh token to be valid")
	}
	if err := service.InvalidateRefreshToken(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}
	valid, _ = service.IsRefreshTokenValid(ctx, pair.RefreshToken)
	if valid {
		t.Error("expected invalidated refresh token to be rejected")
	}
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	issuer := NewTokenService("secret-a", TokenDurations{}, newMemoryTokenRepository())
	verifier := NewTokenService("secret-b", TokenDurations{}, newMemoryTokenRepository())

	pair, err := issuer.GenerateTokenPair(ctx, uuid.New(), "ana@example.com", false)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}
	if _, err := verifier.ValidateAccessToken(ctx, pair.AccessToken); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestVerificationTokenService(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTokenRepository()
	service := NewVerificationTokenService(repo, 2*time.Hour)
	userID := uuid.New()

	first, err := service.GenerateVerificationToken(ctx, userID, "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if len(first.Token) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(first.Token))
	}
	if time.Until(first.ExpiresAt) < time.Hour {
		t.Errorf("expected about two hours of validity, got %s", time.Until(first.ExpiresAt))
	}

	second, err := service.GenerateVerificationToken(ctx, userID, "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if _, err := service.ValidateVerificationToken(ctx, first.Token); err == nil {
		t.Error("expected the older token to be retired")
	}

	got, err := service.ValidateVerificationToken(ctx, second.Token)
	if err != nil {
		t.Fatalf("expected newest token to be valid: %v", err)
	}
	if got.UserID != userID || got.Email != "ana@example.com" {
		t.Errorf("unexpected token %+v", got)
	}

	if err := service.InvalidateVerificationToken(ctx, second.Token); err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}
	if _, err := service.ValidateVerificationToken(ctx, second.Token); err == nil {
		t.Error("expected used token to be rejected")
	}
}

func TestPasswordService(t *testing.T) {
	service := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := service.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	if err := service.VerifyPassword(hash, "correct horse"); err != nil {
		t.Errorf("expected password to match: %v", err)
	}
	if err := service.VerifyPassword(hash, "wrong horse"); err == nil {
		t.Error("expected mismatch")
	}

	tests := []struct {
		password string
		valid    bool
	}{
		{password: "short", valid: false},
		{password: "12345678", valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := service.ValidatePasswordStrength(tt.password)
			if (err == nil) != tt.valid {
				t.Errorf("expected valid=%v, got %v", tt.valid, err)
			}
		})
	}
}

func testVerifiedSessionStore(t *testing.T, store adapter.VerifiedSessionStore) {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()

	verified, err := store.IsVerified(ctx, userID)
	if err != nil || verified {
		t.Fatalf("expected unknown user to be unverified, got %v (%v)", verified, err)
	}

	if err := store.MarkVerified(ctx, userID); err != nil {
		t.Fatalf("failed to mark verified: %v", err)
	}
	verified, err = store.IsVerified(ctx, userID)
	if err != nil || !verified {
		t.Fatalf("expected user to be verified, got %v (%v)", verified, err)
	}

	if err := store.Clear(ctx, userID); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	verified, _ = store.IsVerified(ctx, userID)
	if verified {
		t.Error("expected cleared user to be unverified")
	}
}

func TestRedisVerifiedSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisVerifiedSessionStore(client, time.Hour)
	testVerifiedSessionStore(t, store)

	userID := uuid.New()
	if err := store.MarkVerified(context.Background(), userID); err != nil {
		t.Fatalf("failed to mark verified: %v", err)
	}
	if !mr.Exists("session:verified:" + userID.String()) {
		t.Error("expected session key in redis")
	}

	mr.FastForward(2 * time.Hour)
	verified, _ := store.IsVerified(context.Background(), userID)
	if verified {
		t.Error("expected the marker to expire")
	}
}

func TestMemoryVerifiedSessionStore(t *testing.T) {
	store := NewMemoryVerifiedSessionStore(time.Hour)
	testVerifiedSessionStore(t, store)

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	userID := uuid.New()
	_ = store.MarkVerified(context.Background(), userID)

	now = now.Add(2 * time.Hour)
	verified, _ := store.IsVerified(context.Background(), userID)
	if verified {
		t.Error("expected the marker to expire")
	}
}

func TestGeminiLanguageModel_Availability(t *testing.T) {
	if NewGeminiLanguageModel(GeminiConfig{}).IsAvailable() {
		t.Error("expected model without key to be unavailable")
	}
	if !NewGeminiLanguageModel(GeminiConfig{APIKey: "key"}).IsAvailable() {
		t.Error("expected model with key to be available")
	}
	if _, err := NewGeminiLanguageModel(GeminiConfig{}).Generate(context.Background(), "hi"); err == nil {
		t.Error("expected unconfigured model to fail")
	}
}

func TestFirstText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Save "), genai.Text("20%.")}}},
		},
	}

	text, err := firstText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Save 20%." {
		t.Errorf("expected joined text, got %q", text)
	}

	if _, err := firstText(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected empty response to fail")
	}
}
