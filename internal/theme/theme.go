package theme

import (
	"context"
	"errors"
	"strings"

	"go-gin-admin-panel/internal/core/cache"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) Dark() bool { return m == Dark }

// Store 持久化的主题偏好；subject 为用户或匿名访客标识
type Store interface {
	Get(ctx context.Context, subject string) (Mode, bool, error)
	Set(ctx context.Context, subject string, m Mode) error
}

// CacheStore 基于 cache.Backend：redis 或进程内
type CacheStore struct {
	c *cache.Cache
}

func NewCacheStore(c *cache.Cache) *CacheStore { return &CacheStore{c: c} }

// NewMemoryStore 单实例 / 测试
func NewMemoryStore() *CacheStore { return NewCacheStore(cache.New(cache.NewMemory())) }

func key(subject string) string { return "theme:" + subject }

func (s *CacheStore) Get(ctx context.Context, subject string) (Mode, bool, error) {
	b, err := s.c.Get(ctx, key(subject))
	if errors.Is(err, cache.ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	m, ok := ParseMode(string(b))
	return m, ok, nil
}

// Set 偏好不过期
func (s *CacheStore) Set(ctx context.Context, subject string, m Mode) error {
	return s.c.Set(ctx, key(subject), []byte(m), 0)
}

// Resolver 持久化偏好 > 系统偏好 > light
type Resolver struct {
	Store Store
}

func (r Resolver) Resolve(ctx context.Context, subject, systemHint string) (Mode, error) {
	if subject != "" && r.Store != nil {
		m, ok, err := r.Store.Get(ctx, subject)
		if err != nil {
			return fallback(systemHint), err
		}
		if ok {
			return m, nil
		}
	}
	return fallback(systemHint), nil
}

func fallback(hint string) Mode {
	if m, ok := ParseMode(hint); ok {
		return m
	}
	return Light
}
