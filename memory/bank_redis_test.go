package memory

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/attachehq/attache/core"
)

// Redis integration coverage runs only when a server is provided, e.g.
//
//	ATTACHE_TEST_REDIS_ADDR=localhost:6379 go test ./memory/...
func redisBankForTest(t *testing.T) *RedisBank {
	t.Helper()

	addr := os.Getenv("ATTACHE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ATTACHE_TEST_REDIS_ADDR not set")
	}

	client, err := DialRedis(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("dial redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	bank := NewRedisBank(client, func(o *RedisBankOptions) {
		o.Prefix = "attache:test:" + core.NewID() + ":"
	})

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := bank.Keys(ctx)
		for _, key := range keys {
			_ = bank.Delete(ctx, key)
		}
	})

	return bank
}

func TestRedisBank_RoundTrip(t *testing.T) {
	bank := redisBankForTest(t)
	ctx := context.Background()

	if err := bank.Persist(ctx, "q3", "first"); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if err := bank.Persist(ctx, "q3", "final"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	text, err := bank.Load(ctx, "q3")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if text != "final" {
		t.Fatalf("expected overwritten text, got %q", text)
	}

	if _, err := bank.Load(ctx, "absent"); !errors.Is(err, core.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}

	_ = bank.Persist(ctx, "team", "hiring notes")

	keys, err := bank.Keys(ctx)
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "q3" || keys[1] != "team" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	hits, err := bank.Find(ctx, "hiring")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Key != "team" {
		t.Fatalf("unexpected hits: %#v", hits)
	}

	if err := bank.Delete(ctx, "q3"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := bank.Delete(ctx, "q3"); !errors.Is(err, core.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound on double delete, got %v", err)
	}
}
