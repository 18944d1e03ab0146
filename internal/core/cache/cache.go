package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"go-gin-admin-panel/internal/core/config"
)

var ErrMiss = errors.New("cache miss")

// Backend 最小 KV 接口：redis 或进程内
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Cache struct {
	b  Backend
	sf singleflight.Group
}

func New(b Backend) *Cache { return &Cache{b: b} }

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) { return c.b.Get(ctx, key) }

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.b.Set(ctx, key, val, ttl)
}

func (c *Cache) Del(ctx context.Context, keys ...string) error { return c.b.Del(ctx, keys...) }

// GetOrLoad 先读缓存，未命中时同 key 的并发回源合并成一次
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.b.Get(ctx, key); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.b.Set(ctx, key, b, ttl)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

/* ---------- redis ---------- */

type RedisBackend struct{ RDB *redis.Client }

func NewRedis(cfg config.Redis) *RedisBackend {
	return &RedisBackend{RDB: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (r *RedisBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.RDB.Set(ctx, key, val, ttl).Err()
}

func (r *RedisBackend) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.RDB.Del(ctx, keys...).Err()
}

func (r *RedisBackend) Ping(ctx context.Context) error { return r.RDB.Ping(ctx).Err() }

func (r *RedisBackend) Close() error { return r.RDB.Close() }

/* ---------- 进程内（单实例 / 测试） ---------- */

type entry struct {
	val []byte
	exp time.Time // 零值 = 不过期
}

type MemoryBackend struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

func NewMemory() *MemoryBackend {
	return &MemoryBackend{m: map[string]entry{}, now: time.Now}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.m[key]
	m.mu.RUnlock()
	if !ok || (!e.exp.IsZero() && m.now().After(e.exp)) {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.val...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.m[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.m, k)
	}
	m.mu.Unlock()
	return nil
}
