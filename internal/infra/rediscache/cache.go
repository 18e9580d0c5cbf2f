// Package rediscache caches rendered public pages in Redis. A nil or unreachable
// client turns every call into a miss so the service runs without Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kashpages/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// Connect pings addr and returns a disabled cache when Redis is not available.
func Connect(ctx context.Context, addr, password string, ttl time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	if addr == "" {
		log.Info("redis not configured, running without cache")
		return &Cache{ttl: ttl, log: log}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis not available, running without cache", "addr", addr, "error", err)
		_ = client.Close()
		return &Cache{ttl: ttl, log: log}
	}
	log.Info("redis connected", "addr", addr)
	return New(client, ttl, log)
}

func New(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, log: log}
}

func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

// Get returns the cached value for key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

// Delete drops key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("cache delete failed", "key", key, "error", err)
	}
}

// Version returns the current version counter stored at key, zero when unset.
func (c *Cache) Version(ctx context.Context, key string) int64 {
	if !c.Enabled() {
		return 0
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Bump increments the version at key so entries built on the old version are never read again.
func (c *Cache) Bump(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		c.log.Warn("cache version bump failed", "key", key, "error", err)
	}
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// PageVersionKey holds the version counter of one page's rendered output.
func PageVersionKey(pageID string) string {
	return "page:" + pageID + ":version"
}

// RouteKey maps a public route to the page it last resolved to.
func RouteKey(route string) string {
	return "route:" + route
}

// PageHTMLKey addresses one rendered page as served at path.
func PageHTMLKey(path, pageID string, version int64) string {
	return fmt.Sprintf("page:%s:v:%d:%s", pageID, version, path)
}
