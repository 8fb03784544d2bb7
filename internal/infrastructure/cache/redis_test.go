package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// mockRedis is an in-memory stand-in for the go-redis commands used here
type mockRedis struct {
	mu          sync.Mutex
	data        map[string]string
	ttls        map[string]time.Duration
	published   map[string][]string
	failSetNX   error
	failPublish error
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		data:      make(map[string]string),
		ttls:      make(map[string]time.Duration),
		published: make(map[string][]string),
	}
}

func (m *mockRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockRedis) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetNX != nil {
		return redis.NewBoolResult(false, m.failSetNX)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPublish != nil {
		return redis.NewIntResult(0, m.failPublish)
	}
	var body string
	switch v := message.(type) {
	case []byte:
		body = string(v)
	default:
		body = fmt.Sprint(v)
	}
	m.published[channel] = append(m.published[channel], body)
	return redis.NewIntResult(1, nil)
}

func (m *mockRedis) messages(channel string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.published[channel]...)
}

var errRedisDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
