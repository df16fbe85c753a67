package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/money-tracker/backend/internal/application/adapter"
)

// DefaultChannelPrefix prefixes the per-user Pub/Sub channel.
const DefaultChannelPrefix = "records:changed:"

// RedisNotifier broadcasts record changes across API instances with Redis Pub/Sub.
type RedisNotifier struct {
	client *redis.Client
	prefix string
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(client *redis.Client, prefix string) *RedisNotifier {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisNotifier{client: client, prefix: prefix}
}

// Publish announces a change on the user's channel.
func (n *RedisNotifier) Publish(ctx context.Context, userID uuid.UUID) error {
	if err := n.client.Publish(ctx, n.channel(userID), userID.String()).Err(); err != nil {
		return fmt.Errorf("failed to publish record change: %w", err)
	}
	return nil
}

// Listen subscribes to the user's channel. The subscription is confirmed before Listen
// returns, so no change published afterwards is missed.
func (n *RedisNotifier) Listen(ctx context.Context, userID uuid.UUID) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, n.channel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to record changes: %w", err)
	}

	changes := make(chan struct{}, 1)
	done := make(chan struct{})
	messages := pubsub.Channel()

	go func() {
		defer close(changes)
		for {
			select {
			case <-done:
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				signal(changes)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return changes, stop, nil
}

func (n *RedisNotifier) channel(userID uuid.UUID) string {
	return n.prefix + userID.String()
}

// MemoryNotifier delivers changes within a single process.
type MemoryNotifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[uuid.UUID]map[int]chan struct{}
}

// NewMemoryNotifier creates a new MemoryNotifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{listeners: make(map[uuid.UUID]map[int]chan struct{})}
}

// Publish signals every listener of the user.
func (n *MemoryNotifier) Publish(_ context.Context, userID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.listeners[userID] {
		signal(ch)
	}
	return nil
}

// Listen registers a listener until stop is called.
func (n *MemoryNotifier) Listen(_ context.Context, userID uuid.UUID) (<-chan struct{}, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	if n.listeners[userID] == nil {
		n.listeners[userID] = make(map[int]chan struct{})
	}
	n.listeners[userID][id] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.listeners[userID], id)
			if len(n.listeners[userID]) == 0 {
				delete(n.listeners, userID)
			}
			close(ch)
		})
	}
	return ch, stop, nil
}

func (n *MemoryNotifier) listenerCount(userID uuid.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners[userID])
}

// signal leaves at most one pending change on ch. Changes arriving before the listener
// reads it collapse into that one, as every reload returns the full record set.
func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

var (
	_ adapter.ChangeNotifier = (*RedisNotifier)(nil)
	_ adapter.ChangeNotifier = (*MemoryNotifier)(nil)
)
