package redis

import (
	"context"
	"os"
	"testing"
	"time"

	redisClient "github.com/go-redis/redis/v8"

	"cartshare/internal/domain"
)

func testClient(t *testing.T) *redisClient.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}

	client := redisClient.NewClient(&redisClient.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis unreachable at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisPriceCacheRoundTrip(t *testing.T) {
	cache := NewRedisPriceCache(testClient(t))
	ctx := context.Background()

	key := domain.PriceCacheKey("Tel Aviv", []string{"111", "222"})
	want := []domain.PriceResult{{Barcode: "111", ItemName: "Milk", Price: 5.9}}
	if err := cache.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, hit, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() miss after Set()")
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Get() = %v, want %v", got, want)
	}
}

func TestRedisPriceCacheMiss(t *testing.T) {
	cache := NewRedisPriceCache(testClient(t))

	_, hit, err := cache.Get(context.Background(), "no-such-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit for a key that was never set")
	}
}

func TestRedisPriceCacheExpires(t *testing.T) {
	cache := NewRedisPriceCache(testClient(t))
	ctx := context.Background()

	cache.Set(ctx, "short-lived", []domain.PriceResult{{Barcode: "111"}}, time.Second)
	time.Sleep(1500 * time.Millisecond)

	if _, hit, _ := cache.Get(ctx, "short-lived"); hit {
		t.Error("entry survived its redis TTL")
	}
}

func TestRedisPriceCacheLastWriteWins(t *testing.T) {
	cache := NewRedisPriceCache(testClient(t))
	ctx := context.Background()

	cache.Set(ctx, "contested", []domain.PriceResult{{Barcode: "old"}}, time.Minute)
	cache.Set(ctx, "contested", []domain.PriceResult{{Barcode: "new"}}, time.Minute)

	got, hit, _ := cache.Get(ctx, "contested")
	if !hit || got[0].Barcode != "new" {
		t.Errorf("Get() = %v, want the later write", got)
	}
}
