//go:build integration

package redisad_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	redisad "gamerental/internal/adapters/redis"
	"gamerental/internal/domain"
)

// Runs the cache adapter against a real Redis in a throwaway container.
func TestCache_RealRedis(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	addr := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp"))
	if err := pool.Retry(func() error {
		return redis.NewClient(&redis.Options{Addr: addr}).Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	c := redisad.New(addr, "", 0)
	ctx := context.Background()

	in := domain.PlatformDetail{
		Platform: domain.Platform{ID: 3, Name: "Nebula X", Slug: "nebula-x"},
		Games:    []domain.Game{{ID: 42, Name: "Star Drift", Slug: "star-drift"}},
	}
	if err := c.Set(ctx, "platform:nebula-x", in, 120); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out domain.PlatformDetail
	ok, err := c.Get(ctx, "platform:nebula-x", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Platform.Slug != "nebula-x" || len(out.Games) != 1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := c.Del(ctx, "platform:nebula-x"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "platform:nebula-x", &out); ok {
		t.Fatal("expected miss after del")
	}
}
