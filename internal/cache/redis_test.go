package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opt, err := clientOptions(Options{URL: "redis://:secret@cache.internal:6380/2"})
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, "fintrack-api", opt.ClientName)
	assert.Equal(t, 500*time.Millisecond, opt.ReadTimeout)
	assert.Equal(t, time.Second, opt.PoolTimeout)

	opt, err = clientOptions(Options{URL: "redis://localhost:6379", OpTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, opt.WriteTimeout)
}

func TestClientOptions_BadURL(t *testing.T) {
	_, err := clientOptions(Options{URL: "postgres://localhost:5432/fintrack"})
	assert.Error(t, err)
}

func TestNew_UnreachableRedis(t *testing.T) {
	// Port 1 on loopback refuses connections.
	_, err := New(context.Background(), Options{
		URL:            "redis://127.0.0.1:1",
		ConnectTimeout: time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestCacheKey(t *testing.T) {
	c := &Cache{prefix: "fintrack"}
	assert.Equal(t, "fintrack:ratelimit:login:abc", c.key("ratelimit", "login", "abc"))
}
