package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// defaultMaxAttempts is the default number of allowed attempts per window.
	defaultMaxAttempts = 5
	// defaultWindowDuration is the default time window for rate limiting.
	defaultWindowDuration = 1 * time.Minute
)

// rateLimitEntry tracks rate limit data for a single key.
type rateLimitEntry struct {
	attempts  int
	resetTime time.Time
}

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	MaxAttempts int
	Window      time.Duration
	// Code is the error code sent with 429 responses.
	Code string
	// Disabled lets every request through, as automated tests need.
	Disabled bool
}

// RateLimiter provides IP-based rate limiting functionality.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	config  RateLimiterConfig
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter. Zero limits fall back to 5 attempts per minute.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.Window <= 0 {
		config.Window = defaultWindowDuration
	}
	return &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		config:  config,
		now:     time.Now,
	}
}

// Middleware returns a Gin middleware handler that enforces rate limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Disabled {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.Request.RemoteAddr
		}

		if !rl.allow(clientIP) {
			abortWithError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", rl.config.Code)
			return
		}

		c.Next()
	}
}

// allow checks if a request from the given key should be allowed.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	entry, exists := rl.entries[key]
	if !exists || now.After(entry.resetTime) {
		rl.entries[key] = &rateLimitEntry{
			attempts:  1,
			resetTime: now.Add(rl.config.Window),
		}
		return true
	}

	if entry.attempts < rl.config.MaxAttempts {
		entry.attempts++
		return true
	}

	return false
}

// Cleanup removes expired entries.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.entries {
		if now.After(entry.resetTime) {
			delete(rl.entries, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until stop is closed.
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
