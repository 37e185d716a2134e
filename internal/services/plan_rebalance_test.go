package services

import (
	"context"
	"errors"
	"store-rebalance-service/internal/adapters/distance"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/metrics"
	"store-rebalance-service/internal/ports"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStores struct {
	stores []domain.StoreLocation
	err    error
}

func (f fakeStores) ListStores(ctx context.Context) ([]domain.StoreLocation, error) {
	return f.stores, f.err
}

type fakePositions struct {
	positions []domain.InventoryPosition
	err       error
}

func (f fakePositions) ListPositions(ctx context.Context) ([]domain.InventoryPosition, error) {
	return f.positions, f.err
}

type fakeTransfers []domain.Transfer

func (f fakeTransfers) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	return f, nil
}

func tableFactory(pairs []distance.MockPair) ProviderFactory {
	return func(stores []domain.StoreLocation) (ports.DistanceProvider, error) {
		return distance.NewTableProvider(pairs), nil
	}
}

var planStores = []domain.StoreLocation{
	{StoreID: "S1", Lat: 23.25, Lon: 77.40},
	{StoreID: "S2", Lat: 23.30, Lon: 77.35},
	{StoreID: "D", Lat: 23.20, Lon: 77.45},
}

var planPairs = []distance.MockPair{
	{From: "S1", To: "D", Km: 5},
	{From: "S2", To: "D", Km: 20},
	{From: "S2", To: "S1", Km: 18},
}

func TestPlanRebalance(t *testing.T) {
	positions := fakePositions{positions: []domain.InventoryPosition{
		pos("S1", "p1", 20, 10),
		pos("S2", "p1", 10, 5),
		pos("D", "p1", 0, 12),
	}}

	plan, err := PlanRebalance(
		context.Background(),
		RebalanceRequest{Strategy: DefaultStrategyParams(), Workers: 1},
		fakeStores{stores: planStores},
		positions,
		tableFactory(planPairs),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.RunID == "" {
		t.Fatalf("expected run id")
	}
	if len(plan.Transfers) != 2 {
		t.Fatalf("transfers = %d, want 2", len(plan.Transfers))
	}
	if plan.Transfers[0].FromStore != "S1" || plan.Transfers[0].Quantity != 10 {
		t.Fatalf("first transfer = %+v", plan.Transfers[0])
	}
	if plan.Transfers[1].FromStore != "S2" || plan.Transfers[1].Quantity != 2 {
		t.Fatalf("second transfer = %+v", plan.Transfers[1])
	}

	if len(plan.Decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(plan.Decisions))
	}
	d := plan.Decisions[0]
	if d.ToStore != "D" || d.OriginCount != 2 || d.VehiclesParallel != 2 {
		t.Fatalf("decision = %+v", d)
	}

	if len(plan.Alerts) != 1 || plan.Alerts[0].Position.StoreID != "D" || plan.Alerts[0].ShortageQty != 12 {
		t.Fatalf("alerts = %+v", plan.Alerts)
	}
}

func TestPlanRebalanceRecordsMetrics(t *testing.T) {
	positions := fakePositions{positions: []domain.InventoryPosition{
		pos("S1", "p1", 20, 10),
		pos("S2", "p1", 10, 5),
		pos("D", "p1", 0, 12),
	}}

	// Collectors are process-wide, so compare deltas.
	transfersBefore := testutil.ToFloat64(metrics.TransfersEmitted)
	unitsBefore := testutil.ToFloat64(metrics.UnitsTransferred)
	decisions := metrics.RouteDecisions.WithLabelValues(string(domain.StrategySingleVehicle))
	decisionsBefore := testutil.ToFloat64(decisions)

	plan, err := PlanRebalance(
		context.Background(),
		RebalanceRequest{Strategy: DefaultStrategyParams(), Workers: 1},
		fakeStores{stores: planStores},
		positions,
		tableFactory(planPairs),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(metrics.TransfersEmitted) - transfersBefore; got != 2 {
		t.Fatalf("transfers emitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.UnitsTransferred) - unitsBefore; got != 12 {
		t.Fatalf("units transferred = %v, want 12", got)
	}
	if plan.Decisions[0].Chosen != domain.StrategySingleVehicle {
		t.Fatalf("chosen = %q, want single vehicle", plan.Decisions[0].Chosen)
	}
	if got := testutil.ToFloat64(decisions) - decisionsBefore; got != 1 {
		t.Fatalf("single-vehicle decisions = %v, want 1", got)
	}
}

func TestPlanRebalanceTransfersOnly(t *testing.T) {
	positions := fakePositions{positions: []domain.InventoryPosition{
		pos("S1", "p1", 20, 10),
		pos("D", "p1", 0, 4),
	}}

	plan, err := PlanRebalance(
		context.Background(),
		RebalanceRequest{Strategy: DefaultStrategyParams(), TransfersOnly: true},
		fakeStores{stores: planStores},
		positions,
		tableFactory(planPairs),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Transfers) != 1 || len(plan.Decisions) != 0 {
		t.Fatalf("transfers = %d decisions = %d, want 1 and 0", len(plan.Transfers), len(plan.Decisions))
	}
}

func TestPlanRebalanceNoTransfers(t *testing.T) {
	positions := fakePositions{positions: []domain.InventoryPosition{
		pos("S1", "p1", 5, 5),
		pos("D", "p1", 3, 3),
	}}

	plan, err := PlanRebalance(
		context.Background(),
		RebalanceRequest{Strategy: DefaultStrategyParams()},
		fakeStores{stores: planStores},
		positions,
		tableFactory(nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Transfers) != 0 || len(plan.Decisions) != 0 || len(plan.Alerts) != 0 {
		t.Fatalf("plan = %+v, want empty", plan)
	}
}

func TestPlanRebalanceErrors(t *testing.T) {
	feedErr := errors.New("feed missing")
	factoryErr := errors.New("no credential")

	cases := []struct {
		name      string
		stores    fakeStores
		positions fakePositions
		factory   ProviderFactory
		wantErr   error
	}{
		{
			name:      "empty store feed",
			stores:    fakeStores{},
			positions: fakePositions{},
			factory:   tableFactory(nil),
		},
		{
			name:      "store feed error",
			stores:    fakeStores{err: feedErr},
			positions: fakePositions{},
			factory:   tableFactory(nil),
			wantErr:   feedErr,
		},
		{
			name:      "position feed error",
			stores:    fakeStores{stores: planStores},
			positions: fakePositions{err: feedErr},
			factory:   tableFactory(nil),
			wantErr:   feedErr,
		},
		{
			name:      "provider factory error",
			stores:    fakeStores{stores: planStores},
			positions: fakePositions{},
			factory: func([]domain.StoreLocation) (ports.DistanceProvider, error) {
				return nil, factoryErr
			},
			wantErr: factoryErr,
		},
		{
			name:   "unknown store in positions",
			stores: fakeStores{stores: planStores},
			positions: fakePositions{positions: []domain.InventoryPosition{
				pos("S1", "p1", 20, 10),
				pos("ghost", "p1", 0, 4),
			}},
			factory: tableFactory(planPairs),
			wantErr: ports.ErrUnknownStore,
		},
		{
			name:   "demand too large for unit counts",
			stores: fakeStores{stores: planStores},
			positions: fakePositions{positions: []domain.InventoryPosition{
				pos("S1", "p1", 20, 10),
				pos("D", "p1", 5, 1e19),
			}},
			factory: tableFactory(planPairs),
			wantErr: domain.ErrInvalidQuantity,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := PlanRebalance(
				context.Background(),
				RebalanceRequest{Strategy: DefaultStrategyParams()},
				c.stores,
				c.positions,
				c.factory,
			)
			if err == nil {
				t.Fatalf("expected error")
			}
			if c.wantErr != nil && !errors.Is(err, c.wantErr) {
				t.Fatalf("err = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestPlanStrategies(t *testing.T) {
	transfers := fakeTransfers{
		{ProductID: "p1", FromStore: "S1", ToStore: "D", Quantity: 10, DistanceKm: 5},
		{ProductID: "p1", FromStore: "S2", ToStore: "D", Quantity: 2, DistanceKm: 20},
	}

	plan, err := PlanStrategies(
		context.Background(),
		DefaultStrategyParams(),
		fakeStores{stores: planStores},
		transfers,
		tableFactory(planPairs),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(plan.Decisions))
	}
	d := plan.Decisions[0]
	// Farthest first: S2 -> S1 (18) then S1 -> D (5).
	if d.PickupOrder[0] != "S2" || !approx(d.SingleRouteKm, 23) {
		t.Fatalf("decision = %+v", d)
	}
}
