package ports

import (
	"context"
	"store-rebalance-service/internal/domain"
)

// Contract for a live road-routing service.
type RouteLookup interface {
	// Return the driving distance in kilometres between two coordinates.
	RoadDistance(ctx context.Context, from, to domain.Coordinates) (float64, error)
}

// Optional cross-run storage for distances obtained from a RouteLookup.
// Only live results are stored; geometric estimates never are.
type RoadDistanceStore interface {
	Get(ctx context.Context, pair domain.StorePair) (km float64, ok bool, err error)
	Put(ctx context.Context, pair domain.StorePair, km float64) error
}
