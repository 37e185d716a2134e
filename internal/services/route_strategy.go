package services

import (
	"context"
	"fmt"
	"sort"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/metrics"
	"store-rebalance-service/internal/ports"
)

const (
	DefaultSpeedKmph  = 40.0
	DefaultGraceHours = 2.0
)

type StrategyParams struct {
	TruckCapacity int
	SpeedKmph     float64
	GraceHours    float64
}

func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		TruckCapacity: domain.DefaultTruckCapacity,
		SpeedKmph:     DefaultSpeedKmph,
		GraceHours:    DefaultGraceHours,
	}
}

// RouteStrategyEvaluator simulates both delivery strategies per destination.
type RouteStrategyEvaluator struct {
	distances ports.DistanceProvider
	truck     *domain.Truck
	speed     float64
	grace     float64
}

func NewRouteStrategyEvaluator(distances ports.DistanceProvider, params StrategyParams) (*RouteStrategyEvaluator, error) {
	truck, err := domain.NewTruck(params.TruckCapacity)
	if err != nil {
		return nil, fmt.Errorf("new route strategy evaluator: %w", err)
	}
	if params.SpeedKmph <= 0 {
		return nil, fmt.Errorf("new route strategy evaluator: speed must be positive (speed=%g)", params.SpeedKmph)
	}

	return &RouteStrategyEvaluator{
		distances: distances,
		truck:     truck,
		speed:     params.SpeedKmph,
		grace:     params.GraceHours,
	}, nil
}

// Evaluate returns one decision per destination, in the order destinations
// first appear in transfers.
func (e *RouteStrategyEvaluator) Evaluate(
	ctx context.Context,
	transfers []domain.Transfer,
) ([]domain.RouteDecision, error) {
	dests := []string{}
	rowsByDest := make(map[string][]domain.Transfer)
	for _, t := range transfers {
		if _, seen := rowsByDest[t.ToStore]; !seen {
			dests = append(dests, t.ToStore)
		}
		rowsByDest[t.ToStore] = append(rowsByDest[t.ToStore], t)
	}

	decisions := make([]domain.RouteDecision, 0, len(dests))
	for _, dest := range dests {
		d, err := e.EvaluateDestination(ctx, dest, rowsByDest[dest])
		if err != nil {
			return nil, fmt.Errorf("evaluate strategies: %w", err)
		}
		metrics.RouteDecisions.WithLabelValues(string(d.Chosen)).Inc()
		decisions = append(decisions, d)
	}

	return decisions, nil
}

// EvaluateDestination compares the two strategies for the transfers into dest.
func (e *RouteStrategyEvaluator) EvaluateDestination(
	ctx context.Context,
	dest string,
	rows []domain.Transfer,
) (domain.RouteDecision, error) {
	if len(rows) == 0 {
		return domain.RouteDecision{}, fmt.Errorf("evaluate destination %q: no transfers", dest)
	}

	origins := []string{}
	qtyByOrigin := make(map[string]int)
	for _, r := range rows {
		if _, seen := qtyByOrigin[r.FromStore]; !seen {
			origins = append(origins, r.FromStore)
		}
		qtyByOrigin[r.FromStore] += r.Quantity
	}

	legKm := make(map[string]float64, len(origins))
	for _, o := range origins {
		km, err := e.distances.Distance(ctx, o, dest)
		if err != nil {
			return domain.RouteDecision{}, fmt.Errorf("evaluate destination %q: %w", dest, err)
		}
		legKm[o] = km
	}

	legs, parallelHours, parallelVehicles := e.parallelBundled(origins, qtyByOrigin, legKm)

	pickup, singleKm, err := e.singleVehicle(ctx, dest, origins, legKm)
	if err != nil {
		return domain.RouteDecision{}, fmt.Errorf("evaluate destination %q: %w", dest, err)
	}
	singleHours := singleKm / e.speed

	return domain.RouteDecision{
		ToStore:           dest,
		OriginCount:       len(origins),
		VehiclesSingle:    1,
		VehiclesParallel:  parallelVehicles,
		TimeSingleHours:   singleHours,
		TimeParallelHours: parallelHours,
		Chosen:            ChooseStrategy(singleHours, parallelHours, e.grace),
		PickupOrder:       pickup,
		SingleRouteKm:     singleKm,
		ParallelLegs:      legs,
	}, nil
}

// parallelBundled sends every origin's load straight to the destination.
//
// All trucks are assumed to run at once, including several trucks from the
// same origin, so trip count only affects the vehicle count and elapsed time
// is the slowest single leg. This ignores fleet limits on purpose; changing
// it would change which strategy wins.
func (e *RouteStrategyEvaluator) parallelBundled(
	origins []string,
	qtyByOrigin map[string]int,
	legKm map[string]float64,
) ([]domain.RouteLeg, float64, int) {
	legs := make([]domain.RouteLeg, 0, len(origins))
	vehicles := 0
	hours := 0.0

	for _, o := range origins {
		trips := e.truck.Trips(qtyByOrigin[o])
		legHours := legKm[o] / e.speed

		legs = append(legs, domain.RouteLeg{
			Origin:     o,
			Quantity:   qtyByOrigin[o],
			Trips:      trips,
			DistanceKm: legKm[o],
			Hours:      legHours,
		})

		vehicles += trips
		if trips > 0 && legHours > hours {
			hours = legHours
		}
	}

	return legs, hours, vehicles
}

// singleVehicle visits origins farthest-first, then drives to dest.
// Farthest-first is a fixed heuristic, not a shortest-route solve.
func (e *RouteStrategyEvaluator) singleVehicle(
	ctx context.Context,
	dest string,
	origins []string,
	legKm map[string]float64,
) ([]string, float64, error) {
	order := append([]string(nil), origins...)
	sort.SliceStable(order, func(i, j int) bool {
		return legKm[order[i]] > legKm[order[j]]
	})

	routeKm := 0.0
	for i := 0; i+1 < len(order); i++ {
		km, err := e.distances.Distance(ctx, order[i], order[i+1])
		if err != nil {
			return nil, 0, err
		}
		routeKm += km
	}
	routeKm += legKm[order[len(order)-1]]

	return order, routeKm, nil
}

// ChooseStrategy keeps the single vehicle unless parallelHours-singleHours
// reaches the grace margin. The comparison is strict: a difference exactly
// equal to grace selects the parallel strategy.
func ChooseStrategy(singleHours, parallelHours, graceHours float64) domain.Strategy {
	if parallelHours-singleHours < graceHours {
		return domain.StrategySingleVehicle
	}
	return domain.StrategyParallelBundled
}
