package services

import (
	"context"
	"math"
	"reflect"
	"store-rebalance-service/internal/adapters/distance"
	"store-rebalance-service/internal/domain"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestChooseStrategyBoundary(t *testing.T) {
	cases := []struct {
		single, parallel, grace float64
		want                    domain.Strategy
	}{
		// Difference exactly equal to grace selects parallel.
		{5.0, 7.0, 2, domain.StrategyParallelBundled},
		{5.0, 6.99, 2, domain.StrategySingleVehicle},
		{5.0, 9.0, 2, domain.StrategyParallelBundled},
		{6.0, 4.0, 2, domain.StrategySingleVehicle},
		{3.0, 3.0, 0, domain.StrategyParallelBundled},
	}

	for _, c := range cases {
		if got := ChooseStrategy(c.single, c.parallel, c.grace); got != c.want {
			t.Errorf("ChooseStrategy(%v, %v, %v) = %q, want %q", c.single, c.parallel, c.grace, got, c.want)
		}
	}
}

func TestEvaluateDestinationTwoOrigins(t *testing.T) {
	// At 40 km/h: O3 is a 3h leg, O4 a 4h leg, O4 -> O3 another 3h.
	provider := distance.NewTableProvider([]distance.MockPair{
		{From: "O3", To: "D", Km: 120},
		{From: "O4", To: "D", Km: 160},
		{From: "O4", To: "O3", Km: 120},
	})

	ev, err := NewRouteStrategyEvaluator(provider, DefaultStrategyParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := []domain.Transfer{
		{ProductID: "p1", FromStore: "O3", ToStore: "D", Quantity: 40, DistanceKm: 120},
		{ProductID: "p1", FromStore: "O4", ToStore: "D", Quantity: 60, DistanceKm: 160},
	}

	d, err := ev.EvaluateDestination(context.Background(), "D", rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.OriginCount != 2 {
		t.Fatalf("origins = %d, want 2", d.OriginCount)
	}
	if d.VehiclesParallel != 2 || d.VehiclesSingle != 1 {
		t.Fatalf("vehicles = single %d parallel %d, want 1 and 2", d.VehiclesSingle, d.VehiclesParallel)
	}
	if !approx(d.TimeParallelHours, 4) {
		t.Fatalf("parallel time = %v, want 4", d.TimeParallelHours)
	}
	if !approx(d.TimeSingleHours, 6) {
		t.Fatalf("single time = %v, want 6", d.TimeSingleHours)
	}
	if !reflect.DeepEqual(d.PickupOrder, []string{"O4", "O3"}) {
		t.Fatalf("pickup order = %v, want [O4 O3]", d.PickupOrder)
	}
	// parallel - single = -2, which is below the grace margin.
	if d.Chosen != domain.StrategySingleVehicle {
		t.Fatalf("chosen = %q, want %q", d.Chosen, domain.StrategySingleVehicle)
	}
}

func TestEvaluateDestinationPicksParallelWhenSingleIsFaster(t *testing.T) {
	// Single route: 40 + 40 = 80 km = 2h; parallel worst leg 160 km = 4h.
	provider := distance.NewTableProvider([]distance.MockPair{
		{From: "near", To: "D", Km: 40},
		{From: "far", To: "D", Km: 160},
		{From: "far", To: "near", Km: 40},
	})
	ev, err := NewRouteStrategyEvaluator(provider, DefaultStrategyParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := ev.EvaluateDestination(context.Background(), "D", []domain.Transfer{
		{FromStore: "near", ToStore: "D", Quantity: 1},
		{FromStore: "far", ToStore: "D", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Chosen != domain.StrategyParallelBundled {
		t.Fatalf("chosen = %q, want parallel (single=%v parallel=%v)", d.Chosen, d.TimeSingleHours, d.TimeParallelHours)
	}
}

func TestEvaluateTripsAggregateAcrossProducts(t *testing.T) {
	provider := distance.NewTableProvider([]distance.MockPair{
		{From: "A", To: "D", Km: 20},
	})
	ev, err := NewRouteStrategyEvaluator(provider, DefaultStrategyParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := ev.EvaluateDestination(context.Background(), "D", []domain.Transfer{
		{ProductID: "p1", FromStore: "A", ToStore: "D", Quantity: 150},
		{ProductID: "p2", FromStore: "A", ToStore: "D", Quantity: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.VehiclesParallel != 3 {
		t.Fatalf("parallel vehicles = %d, want 3", d.VehiclesParallel)
	}
	// Extra trips from the same origin run concurrently.
	if !approx(d.TimeParallelHours, 0.5) {
		t.Fatalf("parallel time = %v, want 0.5", d.TimeParallelHours)
	}
	// Single origin: the route is just the final leg.
	if !approx(d.SingleRouteKm, 20) || !approx(d.TimeSingleHours, 0.5) {
		t.Fatalf("single route = %v km / %v h, want 20 km / 0.5 h", d.SingleRouteKm, d.TimeSingleHours)
	}
	if len(d.ParallelLegs) != 1 || d.ParallelLegs[0].Quantity != 250 || d.ParallelLegs[0].Trips != 3 {
		t.Fatalf("legs = %+v", d.ParallelLegs)
	}
}

func TestEvaluateKeepsDestinationOrder(t *testing.T) {
	provider := distance.NewTableProvider([]distance.MockPair{
		{From: "A", To: "Z", Km: 10},
		{From: "A", To: "M", Km: 10},
		{From: "B", To: "M", Km: 10},
		{From: "A", To: "B", Km: 5},
		{From: "B", To: "A", Km: 5},
	})
	ev, err := NewRouteStrategyEvaluator(provider, DefaultStrategyParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decisions, err := ev.Evaluate(context.Background(), []domain.Transfer{
		{FromStore: "A", ToStore: "Z", Quantity: 1},
		{FromStore: "A", ToStore: "M", Quantity: 1},
		{FromStore: "B", ToStore: "M", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(decisions) != 2 || decisions[0].ToStore != "Z" || decisions[1].ToStore != "M" {
		t.Fatalf("decisions = %+v", decisions)
	}
	// Equal legs keep first-appearance order: A then B.
	if !reflect.DeepEqual(decisions[1].PickupOrder, []string{"A", "B"}) {
		t.Fatalf("pickup order = %v, want [A B]", decisions[1].PickupOrder)
	}
	if !approx(decisions[1].SingleRouteKm, 15) {
		t.Fatalf("single route km = %v, want 15", decisions[1].SingleRouteKm)
	}
}

func TestNewRouteStrategyEvaluatorValidates(t *testing.T) {
	provider := distance.NewTableProvider(nil)

	if _, err := NewRouteStrategyEvaluator(provider, StrategyParams{TruckCapacity: 0, SpeedKmph: 40}); err == nil {
		t.Fatalf("expected capacity error")
	}
	if _, err := NewRouteStrategyEvaluator(provider, StrategyParams{TruckCapacity: 100, SpeedKmph: 0}); err == nil {
		t.Fatalf("expected speed error")
	}
}
