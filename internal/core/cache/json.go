package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// GetOrLoadJSON 值以 JSON 存放；缓存里的脏数据按未命中处理并重新加载
func GetOrLoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	if b, err := c.Get(ctx, key); err == nil {
		if json.Unmarshal(b, &out) == nil {
			return out, nil
		}
		_ = c.Del(ctx, key)
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("cache %s: %w", key, err)
	}
	return out, nil
}

// SetJSON 主动写入，更新后用它刷新缓存
func SetJSON(ctx context.Context, c *Cache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}
