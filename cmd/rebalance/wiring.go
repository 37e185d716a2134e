package main

import (
	"context"
	"fmt"
	"store-rebalance-service/internal/adapters/cache"
	"store-rebalance-service/internal/adapters/distance"
	"store-rebalance-service/internal/adapters/repositories"
	"store-rebalance-service/internal/config"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/db"
	"store-rebalance-service/internal/ports"
	"store-rebalance-service/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// runtime holds the concrete adapters for one command invocation.
type runtime struct {
	cfg *config.Config

	db      *sqlx.DB
	closers []func() error

	// Set once the provider factory has run.
	provider *distance.CachedDistanceProvider
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close resource")
		}
	}
}

func (r *runtime) database() (*sqlx.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	if r.cfg.Storage.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	conn, err := db.Open(r.cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, err
	}
	r.db = conn
	r.closers = append(r.closers, conn.Close)
	return conn, nil
}

func (r *runtime) storeRepo() (ports.StoreRepository, error) {
	if r.cfg.Feeds.InputSource == "postgres" {
		conn, err := r.database()
		if err != nil {
			return nil, err
		}
		return repositories.NewPostgresStoreRepository(conn), nil
	}
	return repositories.NewCSVStoreRepository(r.cfg.Feeds.StoreLocationsPath), nil
}

func (r *runtime) positionRepo() (ports.PositionRepository, error) {
	if r.cfg.Feeds.InputSource == "postgres" {
		conn, err := r.database()
		if err != nil {
			return nil, err
		}
		return repositories.NewPostgresPositionRepository(conn), nil
	}
	return repositories.NewCSVPositionRepository(r.cfg.Feeds.PredictionsPath), nil
}

// distanceStore returns the configured cross-run road distance store, or nil.
func (r *runtime) distanceStore(ctx context.Context) (ports.RoadDistanceStore, error) {
	switch r.cfg.Distance.Store {
	case "postgres":
		conn, err := r.database()
		if err != nil {
			return nil, fmt.Errorf("distance store: %w", err)
		}
		return cache.NewSQLDistanceStore(conn), nil
	case "redis":
		if r.cfg.Storage.RedisURL == "" {
			return nil, fmt.Errorf("distance store: REDIS_URL is required")
		}
		store, err := cache.NewRedisDistanceStore(ctx, r.cfg.Storage.RedisURL, r.cfg.Storage.RedisDistanceTTL)
		if err != nil {
			return nil, fmt.Errorf("distance store: %w", err)
		}
		r.closers = append(r.closers, store.Close)
		return store, nil
	default:
		return nil, nil
	}
}

// providerFactory wires Mapbox, the in-run pair cache and the optional
// cross-run store behind the DistanceProvider port.
func (r *runtime) providerFactory(ctx context.Context) (services.ProviderFactory, error) {
	if err := r.cfg.RequireDistanceCredential(); err != nil {
		return nil, err
	}

	opts := []distance.MapboxOption{
		distance.WithBaseURL(r.cfg.Distance.MapboxBaseURL),
		distance.WithTimeout(r.cfg.Distance.Timeout),
	}
	if r.cfg.Distance.RateLimit > 0 {
		opts = append(opts, distance.WithRateLimit(r.cfg.Distance.RateLimit))
	}
	lookup, err := distance.NewMapboxRouteLookup(r.cfg.Distance.MapboxToken, opts...)
	if err != nil {
		return nil, err
	}

	store, err := r.distanceStore(ctx)
	if err != nil {
		return nil, err
	}

	return func(stores []domain.StoreLocation) (ports.DistanceProvider, error) {
		p, err := distance.NewCachedDistanceProvider(stores, lookup, cache.NewPairCache(nil), store)
		if err != nil {
			return nil, err
		}
		r.provider = p
		return p, nil
	}, nil
}

func (r *runtime) lookupOutcomes() map[string]int {
	if r.provider == nil {
		return nil
	}
	return r.provider.OutcomeCounts()
}

func (r *runtime) strategyParams() services.StrategyParams {
	return services.StrategyParams{
		TruckCapacity: r.cfg.Planning.TruckCapacity,
		SpeedKmph:     r.cfg.Planning.SpeedKmph,
		GraceHours:    r.cfg.Planning.GraceHours,
	}
}
