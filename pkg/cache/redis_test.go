package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRedisCache_RequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Fatal("expected error without address")
	}
}

func TestNewRedisCache_DefaultTTL(t *testing.T) {
	c := newRedisCache(nil, 0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

// Integration test: requires a reachable Redis
func TestRedisCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	addr := os.Getenv("PLAYEXTRACT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PLAYEXTRACT_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisCache failed: %v", err)
	}
	defer c.Close()

	key := "playextract:test:" + uuid.NewString()

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get on missing key = ok %v, err %v", ok, err)
	}
	if err := c.Set(ctx, key, []byte("HAMLET")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(got) != "HAMLET" {
		t.Errorf("Get = %q, want HAMLET", got)
	}
}
