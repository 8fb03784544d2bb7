package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultAlertKeyPrefix namespaces alert dedupe keys
const DefaultAlertKeyPrefix = "spares:alerts:sent:"

// DedupeStore suppresses repeated stock alerts for a window.
type DedupeStore interface {
	// Claim reports whether the caller is the first to claim key within ttl
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a claim early, letting the next Claim succeed
	Release(ctx context.Context, key string) error
	Close() error
}

// NewAlertDedupeStore returns a Redis store when client is set, otherwise
// a process-local one. Only the Redis store is shared across replicas.
func NewAlertDedupeStore(client *redis.Client, logger *zap.Logger) DedupeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		logger.Warn("Redis not configured, stock alert dedupe is per instance")
		return NewMemoryDedupeStore()
	}
	logger.Info("Using Redis for stock alert dedupe")
	return NewRedisDedupeStore(client, DefaultAlertKeyPrefix)
}

// RedisDedupeStore claims keys with SET NX
type RedisDedupeStore struct {
	client redisCmdable
	prefix string
}

// NewRedisDedupeStore wraps an existing client; an empty prefix uses DefaultAlertKeyPrefix
func NewRedisDedupeStore(client redisCmdable, prefix string) *RedisDedupeStore {
	if prefix == "" {
		prefix = DefaultAlertKeyPrefix
	}
	return &RedisDedupeStore{client: client, prefix: prefix}
}

func (s *RedisDedupeStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	won, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim alert key %s: %w", key, err)
	}
	return won, nil
}

func (s *RedisDedupeStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release alert key %s: %w", key, err)
	}
	return nil
}

// Close leaves the client open; its owner closes it.
func (s *RedisDedupeStore) Close() error { return nil }

// minPruneSize is the entry count below which expired claims are left in place
const minPruneSize = 256

// MemoryDedupeStore keeps claims in a map. Expired entries are pruned
// lazily whenever the map has doubled since the last prune.
type MemoryDedupeStore struct {
	mu      sync.Mutex
	claims  map[string]time.Time
	pruneAt int
	now     func() time.Time
}

// NewMemoryDedupeStore creates an empty store
func NewMemoryDedupeStore() *MemoryDedupeStore {
	return &MemoryDedupeStore{
		claims:  make(map[string]time.Time),
		pruneAt: minPruneSize,
		now:     time.Now,
	}
}

func (s *MemoryDedupeStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if until, held := s.claims[key]; held && now.Before(until) {
		return false, nil
	}
	s.claims[key] = now.Add(ttl)
	if len(s.claims) >= s.pruneAt {
		s.prune(now)
	}
	return true, nil
}

func (s *MemoryDedupeStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.claims, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryDedupeStore) Close() error { return nil }

// Len returns the number of stored claims, expired or not
func (s *MemoryDedupeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

func (s *MemoryDedupeStore) prune(now time.Time) {
	for key, until := range s.claims {
		if !now.Before(until) {
			delete(s.claims, key)
		}
	}
	s.pruneAt = max(minPruneSize, 2*len(s.claims))
}

var (
	_ DedupeStore = (*RedisDedupeStore)(nil)
	_ DedupeStore = (*MemoryDedupeStore)(nil)
)
