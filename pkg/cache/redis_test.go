package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: s.Addr()}), "")
	t.Cleanup(func() { c.Close() })
	return c, s
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, s := newRedis(t)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(absent) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !s.Exists(DefaultRedisPrefix + "k") {
		t.Error("key not stored under prefix")
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}

	s.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived its TTL")
	}

	_ = c.Set(ctx, "d", []byte("v"), 0)
	if err := c.Delete(ctx, "d"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "d"); hit {
		t.Error("entry survived Delete")
	}
}

func TestRedisCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, s := newRedis(t)
	_ = s.Set("unrelated", "x")
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v; want 3", n, err)
	}
	if !s.Exists("unrelated") {
		t.Error("Clear removed a key outside the prefix")
	}
}

func TestOpenRedis(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := OpenRedis(context.Background(), "redis://"+s.Addr())
	if err != nil {
		t.Fatalf("OpenRedis() error = %v", err)
	}
	c.Close()

	if _, err := OpenRedis(context.Background(), "://bad"); err == nil {
		t.Error("OpenRedis(bad url) succeeded")
	}
}
