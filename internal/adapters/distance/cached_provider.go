package distance

import (
	"context"
	"fmt"
	"store-rebalance-service/internal/adapters/cache"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/metrics"
	"store-rebalance-service/internal/ports"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	OutcomeCacheHit = "cache_hit"
	OutcomeStoreHit = "store_hit"
	OutcomeLive     = "live"
)

// CachedDistanceProvider implements DistanceProvider for a fixed set of stores.
//
// Resolution order for an ordered pair:
//   - the in-run PairCache
//   - the optional cross-run RoadDistanceStore
//   - the live RouteLookup
//   - the great-circle distance, when the live lookup fails
//
// Whatever is resolved first is cached for the rest of the run, so the live
// lookup runs at most once per pair. Lookup failures are logged and counted
// but never returned. The provider is safe for concurrent use.
type CachedDistanceProvider struct {
	coords map[string]domain.Coordinates
	lookup ports.RouteLookup
	cache  *cache.PairCache
	store  ports.RoadDistanceStore
	group  singleflight.Group

	mu       sync.Mutex
	outcomes map[string]int
}

// NewCachedDistanceProvider builds a provider over stores. lookup may be nil,
// in which case every distance is a great-circle estimate. store may be nil.
func NewCachedDistanceProvider(
	stores []domain.StoreLocation,
	lookup ports.RouteLookup,
	pairCache *cache.PairCache,
	store ports.RoadDistanceStore,
) (*CachedDistanceProvider, error) {
	coords := make(map[string]domain.Coordinates, len(stores))
	for _, s := range stores {
		if s.StoreID == "" {
			return nil, fmt.Errorf("new distance provider: empty store id")
		}
		if _, dup := coords[s.StoreID]; dup {
			return nil, fmt.Errorf("new distance provider: duplicate store id %q", s.StoreID)
		}
		coords[s.StoreID] = s.Coordinates()
	}

	if pairCache == nil {
		pairCache = cache.NewPairCache(nil)
	}

	return &CachedDistanceProvider{
		coords:   coords,
		lookup:   lookup,
		cache:    pairCache,
		store:    store,
		outcomes: make(map[string]int),
	}, nil
}

// Distance returns the kilometres from one store to another.
func (p *CachedDistanceProvider) Distance(ctx context.Context, from, to string) (float64, error) {
	fromCoord, ok := p.coords[from]
	if !ok {
		return 0, fmt.Errorf("distance %q -> %q: %w %q", from, to, ports.ErrUnknownStore, from)
	}
	toCoord, ok := p.coords[to]
	if !ok {
		return 0, fmt.Errorf("distance %q -> %q: %w %q", from, to, ports.ErrUnknownStore, to)
	}

	pair := domain.StorePair{From: from, To: to}
	if km, ok := p.cache.Get(pair); ok {
		p.record(OutcomeCacheHit)
		return km, nil
	}

	// Concurrent callers for the same pair share one resolution.
	v, _, _ := p.group.Do(pair.String(), func() (any, error) {
		if km, ok := p.cache.Get(pair); ok {
			p.record(OutcomeCacheHit)
			return km, nil
		}
		km := p.resolve(ctx, pair, fromCoord, toCoord)
		return p.cache.Put(pair, km), nil
	})

	return v.(float64), nil
}

func (p *CachedDistanceProvider) resolve(
	ctx context.Context,
	pair domain.StorePair,
	fromCoord domain.Coordinates,
	toCoord domain.Coordinates,
) float64 {
	if p.store != nil {
		km, ok, err := p.store.Get(ctx, pair)
		if err != nil {
			log.Warn().Err(err).Str("pair", pair.String()).Msg("distance store read failed")
		} else if ok {
			p.record(OutcomeStoreHit)
			return km
		}
	}

	if p.lookup != nil {
		km, err := p.lookup.RoadDistance(ctx, fromCoord, toCoord)
		if err == nil {
			p.record(OutcomeLive)
			if p.store != nil {
				if err := p.store.Put(ctx, pair, km); err != nil {
					log.Warn().Err(err).Str("pair", pair.String()).Msg("distance store write failed")
				}
			}
			return km
		}

		kind := Classify(err)
		log.Debug().
			Err(err).
			Str("pair", pair.String()).
			Str("kind", string(kind)).
			Msg("live distance lookup failed, using great-circle distance")
		p.record("fallback_" + string(kind))
	} else {
		p.record("fallback_disabled")
	}

	return GreatCircleKm(fromCoord, toCoord)
}

func (p *CachedDistanceProvider) record(outcome string) {
	metrics.DistanceLookups.WithLabelValues(outcome).Inc()

	p.mu.Lock()
	p.outcomes[outcome]++
	p.mu.Unlock()
}

// OutcomeCounts returns how many lookups ended in each outcome so far.
func (p *CachedDistanceProvider) OutcomeCounts() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.outcomes))
	for k, v := range p.outcomes {
		out[k] = v
	}
	return out
}
