package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/money-tracker/backend/internal/application/adapter"
)

const verifiedSessionKeyPrefix = "session:verified:"

// RedisVerifiedSessionStore keeps verified-session markers in Redis with a TTL.
type RedisVerifiedSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisVerifiedSessionStore creates a Redis-backed store.
func NewRedisVerifiedSessionStore(client *redis.Client, ttl time.Duration) *RedisVerifiedSessionStore {
	return &RedisVerifiedSessionStore{client: client, ttl: ttl}
}

func (s *RedisVerifiedSessionStore) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Set(ctx, verifiedSessionKey(userID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark session verified: %w", err)
	}
	return nil
}

func (s *RedisVerifiedSessionStore) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	count, err := s.client.Exists(ctx, verifiedSessionKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read verified session: %w", err)
	}
	return count > 0, nil
}

func (s *RedisVerifiedSessionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, verifiedSessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear verified session: %w", err)
	}
	return nil
}

func verifiedSessionKey(userID uuid.UUID) string {
	return verifiedSessionKeyPrefix + userID.String()
}

// MemoryVerifiedSessionStore is the in-process store used when Redis is unavailable.
type MemoryVerifiedSessionStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]time.Time
}

// NewMemoryVerifiedSessionStore creates an in-memory store. A zero ttl never expires entries.
func NewMemoryVerifiedSessionStore(ttl time.Duration) *MemoryVerifiedSessionStore {
	return &MemoryVerifiedSessionStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uuid.UUID]time.Time),
	}
}

func (s *MemoryVerifiedSessionStore) MarkVerified(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	s.entries[userID] = expiresAt
	return nil
}

func (s *MemoryVerifiedSessionStore) IsVerified(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.entries[userID]
	if !ok {
		return false, nil
	}
	return expiresAt.IsZero() || s.now().Before(expiresAt), nil
}

func (s *MemoryVerifiedSessionStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

var (
	_ adapter.VerifiedSessionStore = (*RedisVerifiedSessionStore)(nil)
	_ adapter.VerifiedSessionStore = (*MemoryVerifiedSessionStore)(nil)
)
