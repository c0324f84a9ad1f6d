package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

func getRedisAdapter(t *testing.T) (*RedisAdapter, *redis.Client) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	return NewRedisAdapter(rdb), rdb
}

func TestRedis_DecrementStock(t *testing.T) {
	adapter, rdb := getRedisAdapter(t)
	ctx := context.Background()
	const itemID int64 = 900001

	rdb.Del(ctx, stockKey(itemID))
	if err := adapter.SetStock(ctx, itemID, 2); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	defer rdb.Del(ctx, stockKey(itemID))

	for i := 0; i < 2; i++ {
		ok, err := adapter.DecrementStock(ctx, itemID)
		if err != nil {
			t.Fatalf("decrement %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("decrement %d should succeed", i)
		}
	}

	ok, err := adapter.DecrementStock(ctx, itemID)
	if err != nil {
		t.Fatalf("decrement at zero: %v", err)
	}
	if ok {
		t.Error("decrement at zero should be refused")
	}

	val, err := rdb.Get(ctx, stockKey(itemID)).Int()
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if val != 0 {
		t.Errorf("expected stock 0, got %d", val)
	}
}

func TestRedis_DecrementUnknownItemRefused(t *testing.T) {
	adapter, rdb := getRedisAdapter(t)
	ctx := context.Background()
	const itemID int64 = 900002

	rdb.Del(ctx, stockKey(itemID))

	ok, err := adapter.DecrementStock(ctx, itemID)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Error("unwarmed item must not pass the gate")
	}
}

func TestRedis_IncrementStock(t *testing.T) {
	adapter, rdb := getRedisAdapter(t)
	ctx := context.Background()
	const itemID int64 = 900003

	rdb.Del(ctx, stockKey(itemID))
	defer rdb.Del(ctx, stockKey(itemID))

	if err := adapter.SetStock(ctx, itemID, 1); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if err := adapter.IncrementStock(ctx, itemID); err != nil {
		t.Fatalf("increment: %v", err)
	}

	val, err := rdb.Get(ctx, stockKey(itemID)).Int()
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if val != 2 {
		t.Errorf("expected stock 2, got %d", val)
	}
}

func TestRedis_SetIdempotency(t *testing.T) {
	adapter, rdb := getRedisAdapter(t)
	ctx := context.Background()
	key := "booking:req:test-idempotency"

	rdb.Del(ctx, key)
	defer rdb.Del(ctx, key)

	ok, err := adapter.SetIdempotency(ctx, key)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	if !ok {
		t.Fatal("first set should succeed")
	}

	ok, err = adapter.SetIdempotency(ctx, key)
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if ok {
		t.Error("second set should report duplicate")
	}
}
