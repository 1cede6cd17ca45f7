package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client *redis.Client
}

var _ domain.Cache = (*RedisCache)(nil)

// NewRedis создаёт кэш.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Once выполняет функцию, если ключ ещё не задан. Возвращает true, если функция запускалась.
// При ошибке функции ключ снимается, чтобы следующая попытка могла повторить запуск.
func (c *RedisCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error) {
	start := time.Now()
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	metrics.ObserveNetworkRequest("redis", "setnx", key, start, err)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := fn(); err != nil {
		_ = c.client.Del(context.WithoutCancel(ctx), key).Err()
		return true, err
	}
	return true, nil
}

// Memory заменяет Redis внутри одного процесса.
type Memory struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

var _ domain.Cache = (*Memory)(nil)

// NewMemory создаёт in-memory кэш.
func NewMemory() *Memory {
	return &Memory{keys: make(map[string]time.Time), now: time.Now}
}

// Once повторяет семантику RedisCache.Once в памяти процесса.
func (m *Memory) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error) {
	m.mu.Lock()
	now := m.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		m.mu.Unlock()
		return false, nil
	}
	m.keys[key] = now.Add(ttl)
	m.mu.Unlock()

	if err := fn(); err != nil {
		m.mu.Lock()
		delete(m.keys, key)
		m.mu.Unlock()
		return true, err
	}
	return true, nil
}
