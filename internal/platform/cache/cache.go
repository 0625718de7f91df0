package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportPrefix namespaces every cached report.
const ReportPrefix = "reports:"

// Client is a JSON read-through cache. A nil *Client is a valid disabled
// cache: reads miss and writes are dropped.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect parses a redis:// URL and pings the server. An empty URL returns
// a nil client.
func Connect(ctx context.Context, url string, ttl time.Duration) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("redis cache enabled", "addr", opts.Addr, "ttl", ttl.String())
	return New(rdb, ttl), nil
}

func New(rdb *redis.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{rdb: rdb, ttl: ttl}
}

func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Get decodes the value at key into dest and reports whether it was found.
func (c *Client) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *Client) Set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix deletes every key starting with prefix.
func (c *Client) InvalidatePrefix(ctx context.Context, prefix string) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// InvalidateReports drops all cached reports and logs instead of failing;
// a stale cache entry expires on its own.
func (c *Client) InvalidateReports(ctx context.Context) {
	if err := c.InvalidatePrefix(ctx, ReportPrefix); err != nil {
		slog.Warn("report cache invalidation failed", "err", err)
	}
}

// Key joins parts under ReportPrefix, substituting "-" for empty parts.
func Key(report string, parts ...string) string {
	var b strings.Builder
	b.WriteString(ReportPrefix)
	b.WriteString(report)
	for _, p := range parts {
		b.WriteByte(':')
		p = strings.TrimSpace(p)
		if p == "" {
			p = "-"
		}
		b.WriteString(p)
	}
	return b.String()
}
