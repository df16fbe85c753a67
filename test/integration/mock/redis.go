package mock

import (
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisOnce sync.Once
var sharedRedis *Redis

// Redis is an in-process Redis server plus a client connected to it.
type Redis struct {
	Client *redis.Client
	server *miniredis.Miniredis
}

// NewRedis starts the shared server on first use and returns it afterwards.
func NewRedis() *Redis {
	redisOnce.Do(
		func() {
			server, err := miniredis.Run()
			if err != nil {
				panic(err)
			}
			sharedRedis = &Redis{
				Client: redis.NewClient(&redis.Options{Addr: server.Addr()}),
				server: server,
			}
		},
	)

	return sharedRedis
}

// Clear drops every key.
func (r *Redis) Clear() {
	r.server.FlushAll()
}

// Exists reports whether key is currently set.
func (r *Redis) Exists(key string) bool {
	return r.server.Exists(key)
}

// FastForward expires keys as if d had passed.
func (r *Redis) FastForward(d time.Duration) {
	r.server.FastForward(d)
}

func (r *Redis) Close() {
	_ = r.Client.Close()
	r.server.Close()
}
