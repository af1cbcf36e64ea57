// Package cache provides Redis access for short-lived request state.
// It never holds application data; Postgres stays the only source of truth.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	// URL is a redis:// or rediss:// URL.
	URL string

	// KeyPrefix namespaces every key this process writes. Defaults to "fintrack".
	KeyPrefix string

	// ConnectTimeout bounds the startup ping. Defaults to 5s.
	ConnectTimeout time.Duration

	// OpTimeout bounds each command so a stalled Redis cannot hold up login.
	// Defaults to 500ms.
	OpTimeout time.Duration
}

// Cache holds the Redis client and the key namespace.
type Cache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// clientOptions turns Options into go-redis settings. Login throttling issues
// one short script per attempt, so the pool stays small.
func clientOptions(o Options) (*redis.Options, error) {
	opt, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}

	opTimeout := o.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}

	opt.ClientName = "fintrack-api"
	opt.PoolSize = 8
	opt.MinIdleConns = 1
	opt.ReadTimeout = opTimeout
	opt.WriteTimeout = opTimeout
	opt.PoolTimeout = 2 * opTimeout
	opt.ConnMaxIdleTime = 5 * time.Minute
	return opt, nil
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, o Options) (*Cache, error) {
	opt, err := clientOptions(o)
	if err != nil {
		return nil, err
	}

	connectTimeout := o.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping Redis at %s: %w", opt.Addr, err)
	}

	prefix := strings.Trim(o.KeyPrefix, ":")
	if prefix == "" {
		prefix = "fintrack"
	}

	return &Cache{client: client, prefix: prefix, now: time.Now}, nil
}

// key joins parts under the configured namespace.
func (c *Cache) key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

// Ping reports Redis reachability for the health endpoint.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
