package domain

import (
	"fmt"
	"strings"
)

// Strategy is the delivery plan chosen for a destination store.
type Strategy string

const (
	// One vehicle visits every origin, farthest first, then the destination.
	StrategySingleVehicle Strategy = "single-vehicle-multi-pickup"
	// Every origin dispatches its own truck-loads directly to the destination.
	StrategyParallelBundled Strategy = "parallel-bundled"
)

func (s Strategy) Valid() bool {
	return s == StrategySingleVehicle || s == StrategyParallelBundled
}

// FeedLabel is the label written to the strategy comparison feed, where
// the single-vehicle plan is "A" and the parallel plan is "B".
func (s Strategy) FeedLabel() string {
	switch s {
	case StrategySingleVehicle:
		return "A (multi-pickup)"
	case StrategyParallelBundled:
		return "B (parallel bundled)"
	default:
		return string(s)
	}
}

// ParseStrategy accepts either a Strategy value or a feed label.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.TrimSpace(s)
	switch {
	case Strategy(s).Valid():
		return Strategy(s), nil
	case strings.HasPrefix(s, "A"):
		return StrategySingleVehicle, nil
	case strings.HasPrefix(s, "B"):
		return StrategyParallelBundled, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// RouteLeg is one origin's contribution to the parallel strategy.
type RouteLeg struct {
	Origin     string
	Quantity   int
	Trips      int
	DistanceKm float64
	Hours      float64
}

// Represents the strategy comparison for one destination store.
// A RouteDecision is immutable planning data; it carries both simulated
// strategies so reporting can show what was rejected.
type RouteDecision struct {
	ToStore           string
	OriginCount       int
	VehiclesSingle    int
	VehiclesParallel  int
	TimeSingleHours   float64
	TimeParallelHours float64
	Chosen            Strategy

	// Pickup order of the single-vehicle route (farthest origin first).
	PickupOrder   []string
	SingleRouteKm float64
	ParallelLegs  []RouteLeg
}
