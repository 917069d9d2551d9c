package memory

import (
	"context"
	"testing"
	"time"

	"cartshare/internal/domain"
)

func TestMemoryPriceCacheHit(t *testing.T) {
	cache := NewMemoryPriceCache()
	ctx := context.Background()

	want := []domain.PriceResult{{Barcode: "111", ItemName: "Milk", Price: 5.9}}
	if err := cache.Set(ctx, "key", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, hit, err := cache.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() miss, want hit")
	}
	if len(got) != 1 || got[0].Barcode != "111" {
		t.Errorf("Get() = %v, want %v", got, want)
	}
}

func TestMemoryPriceCacheMiss(t *testing.T) {
	cache := NewMemoryPriceCache()

	_, hit, err := cache.Get(context.Background(), "never-set")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit for a key that was never set")
	}
}

func TestMemoryPriceCacheExpires(t *testing.T) {
	cache := NewMemoryPriceCache()
	ctx := context.Background()

	cache.Set(ctx, "key", []domain.PriceResult{{Barcode: "111"}}, 30*time.Millisecond)

	if _, hit, _ := cache.Get(ctx, "key"); !hit {
		t.Fatal("entry expired before its TTL")
	}

	time.Sleep(60 * time.Millisecond)

	if _, hit, _ := cache.Get(ctx, "key"); hit {
		t.Error("entry still live after its TTL")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", cache.Len())
	}
}

func TestMemoryPriceCacheOverwriteResetsTTL(t *testing.T) {
	cache := NewMemoryPriceCache()
	ctx := context.Background()

	cache.Set(ctx, "key", []domain.PriceResult{{Barcode: "old"}}, 30*time.Millisecond)
	cache.Set(ctx, "key", []domain.PriceResult{{Barcode: "new"}}, time.Minute)

	// The first entry's timer firing must not evict the replacement.
	time.Sleep(60 * time.Millisecond)

	got, hit, _ := cache.Get(ctx, "key")
	if !hit {
		t.Fatal("replacement entry was evicted by the stale timer")
	}
	if got[0].Barcode != "new" {
		t.Errorf("Get() barcode = %q, want %q (last write wins)", got[0].Barcode, "new")
	}
}
