package services

import (
	"context"
	"time"

	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

// ComputeFn produces price results on a cache miss.
type ComputeFn func(ctx context.Context) ([]domain.PriceResult, error)

// PriceService memoizes external price lookups for a day. Two racing
// misses for the same key may both call the provider; the later Set
// wins, which is fine since both hold equally fresh data.
type PriceService struct {
	store    domain.PriceCacheStore
	provider domain.PriceLookupProvider
	distance domain.DistanceProvider
	ttl      time.Duration
	log      logger.Logger
}

func NewPriceService(store domain.PriceCacheStore, provider domain.PriceLookupProvider,
	distance domain.DistanceProvider, ttl time.Duration, log logger.Logger) *PriceService {
	if ttl <= 0 {
		ttl = domain.PriceCacheTTL
	}
	return &PriceService{
		store:    store,
		provider: provider,
		distance: distance,
		ttl:      ttl,
		log:      log,
	}
}

// GetOrCompute returns cached results for (city, barcodes) when a live
// entry exists, calling compute and storing its result otherwise. The
// key is order-independent over the barcode set.
func (s *PriceService) GetOrCompute(ctx context.Context, city string, barcodes []string,
	compute ComputeFn) ([]domain.PriceResult, error) {
	key := domain.PriceCacheKey(city, barcodes)

	results, hit, err := s.store.Get(ctx, key)
	if err != nil {
		// A broken cache should not break the lookup itself.
		s.log.Error("Price cache read failed", "key", key, "error", err)
	}
	if hit {
		s.log.Debug("Price cache hit", "city", city, "barcodes", len(barcodes))
		return results, nil
	}

	results, err = compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, key, results, s.ttl); err != nil {
		s.log.Error("Price cache write failed", "key", key, "error", err)
	}
	return results, nil
}

// GetPrices looks prices up through the cache. When origin is non-empty
// every result is annotated with the distance from origin to its store.
func (s *PriceService) GetPrices(ctx context.Context, city string, barcodes []string,
	origin string) ([]domain.PriceResult, error) {
	results, err := s.GetOrCompute(ctx, city, barcodes, func(ctx context.Context) ([]domain.PriceResult, error) {
		return s.provider.Lookup(ctx, city, barcodes)
	})
	if err != nil {
		return nil, err
	}

	if origin == "" {
		return results, nil
	}

	// Distances depend on the caller's origin, so they are computed per
	// request and never cached with the prices.
	annotated := make([]domain.PriceResult, len(results))
	distances := make(map[string]float64)
	for i, result := range results {
		annotated[i] = result
		if result.StoreAddress == "" {
			continue
		}
		km, known := distances[result.StoreAddress]
		if !known {
			km, err = s.distance.Distance(ctx, origin, result.StoreAddress)
			if err != nil {
				return nil, err
			}
			distances[result.StoreAddress] = km
		}
		annotated[i].DistanceKm = km
	}
	return annotated, nil
}
