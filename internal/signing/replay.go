package signing

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryReplayGuard remembers consumed token ids until they expire.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Consume records jti and reports whether it was unseen. Expired entries are
// pruned on each call.
func (g *MemoryReplayGuard) Consume(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.seen {
		if !exp.After(now) {
			delete(g.seen, k)
		}
	}
	if _, ok := g.seen[jti]; ok {
		return false, nil
	}
	g.seen[jti] = expiresAt
	return true, nil
}

// RedisReplayGuard records token ids with SETNX so replicas share one view.
type RedisReplayGuard struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisReplayGuard(client redis.UniversalClient) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, prefix: "signing:jti:"}
}

func (g *RedisReplayGuard) Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	return g.client.SetNX(ctx, g.prefix+jti, 1, ttl).Result()
}
