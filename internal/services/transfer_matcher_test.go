package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"store-rebalance-service/internal/adapters/distance"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/ports"
	"testing"
)

func pos(store, product string, current int, predicted float64) domain.InventoryPosition {
	return domain.InventoryPosition{
		StoreID:          store,
		ProductID:        product,
		CurrentInventory: current,
		PredictedDemand:  predicted,
	}
}

// lineDistances places stores on a line; distance is the absolute offset.
func lineDistances(x map[string]float64) ports.DistanceProvider {
	return ports.DistanceFunc(func(ctx context.Context, from, to string) (float64, error) {
		a, ok := x[from]
		if !ok {
			return 0, fmt.Errorf("%w %q", ports.ErrUnknownStore, from)
		}
		b, ok := x[to]
		if !ok {
			return 0, fmt.Errorf("%w %q", ports.ErrUnknownStore, to)
		}
		return math.Abs(a - b), nil
	})
}

func TestMatchProductNearestFirst(t *testing.T) {
	provider := distance.NewTableProvider([]distance.MockPair{
		{From: "S1", To: "D", Km: 5},
		{From: "S2", To: "D", Km: 20},
	})

	positions := []domain.InventoryPosition{
		pos("S2", "product_1", 5, 0),
		pos("D", "product_1", 0, 12),
		pos("S1", "product_1", 10, 0),
	}

	got, err := NewTransferMatcher(provider, 1).MatchProduct(context.Background(), "product_1", positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Transfer{
		{ProductID: "product_1", FromStore: "S1", ToStore: "D", Quantity: 10, DistanceKm: 5},
		{ProductID: "product_1", FromStore: "S2", ToStore: "D", Quantity: 2, DistanceKm: 20},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("transfers = %+v, want %+v", got, want)
	}
}

func TestMatchProductFirstTransferIsGlobalMinimum(t *testing.T) {
	provider := distance.NewTableProvider([]distance.MockPair{
		{From: "A", To: "X", Km: 9},
		{From: "A", To: "Y", Km: 4},
		{From: "B", To: "X", Km: 3},
		{From: "B", To: "Y", Km: 8},
	})

	positions := []domain.InventoryPosition{
		pos("A", "p", 20, 10),
		pos("B", "p", 20, 10),
		pos("X", "p", 0, 4),
		pos("Y", "p", 0, 30),
	}

	got, err := NewTransferMatcher(provider, 1).MatchProduct(context.Background(), "p", positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected transfers")
	}
	if got[0].FromStore != "B" || got[0].ToStore != "X" || got[0].DistanceKm != 3 {
		t.Fatalf("first transfer = %+v, want B -> X at 3 km", got[0])
	}
	if got[0].Quantity != 4 {
		t.Fatalf("first quantity = %d, want 4", got[0].Quantity)
	}
}

func TestMatchProductTieKeepsFirstPair(t *testing.T) {
	provider := ports.DistanceFunc(func(ctx context.Context, from, to string) (float64, error) {
		return 7, nil
	})

	positions := []domain.InventoryPosition{
		pos("S1", "p", 5, 0),
		pos("S2", "p", 5, 0),
		pos("D1", "p", 0, 3),
		pos("D2", "p", 0, 3),
	}

	got, err := NewTransferMatcher(provider, 1).MatchProduct(context.Background(), "p", positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Transfer{
		{ProductID: "p", FromStore: "S1", ToStore: "D1", Quantity: 3, DistanceKm: 7},
		{ProductID: "p", FromStore: "S1", ToStore: "D2", Quantity: 2, DistanceKm: 7},
		{ProductID: "p", FromStore: "S2", ToStore: "D2", Quantity: 1, DistanceKm: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("transfers = %+v, want %+v", got, want)
	}
}

func TestMatchProductQuantityInvariants(t *testing.T) {
	x := map[string]float64{}
	positions := []domain.InventoryPosition{}
	for i := 0; i < 12; i++ {
		store := fmt.Sprintf("store_%d", i)
		x[store] = float64(i*i%17) + float64(i)/100
		current := (i * 37) % 50
		predicted := float64((i*53)%60) + 0.4
		positions = append(positions, pos(store, "p", current, predicted))
	}

	remaining := map[string]int{}
	totalSurplus, totalNeed := 0, 0
	for _, p := range positions {
		if q := p.SurplusQuantity(); q > 0 {
			remaining[p.StoreID] = q
			totalSurplus += q
		}
		if n := p.ShortageNeed(); n > 0 {
			remaining[p.StoreID] = n
			totalNeed += n
		}
	}
	if totalSurplus == 0 || totalNeed == 0 {
		t.Fatalf("fixture must have both sides (surplus=%d need=%d)", totalSurplus, totalNeed)
	}

	got, err := NewTransferMatcher(lineDistances(x), 1).MatchProduct(context.Background(), "p", positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved := 0
	for i, tr := range got {
		from, to := remaining[tr.FromStore], remaining[tr.ToStore]
		if tr.Quantity != min(from, to) {
			t.Fatalf("transfer %d quantity = %d, want min(%d, %d)", i, tr.Quantity, from, to)
		}
		if tr.Quantity <= 0 {
			t.Fatalf("transfer %d has non-positive quantity %d", i, tr.Quantity)
		}
		remaining[tr.FromStore] -= tr.Quantity
		remaining[tr.ToStore] -= tr.Quantity
		if remaining[tr.FromStore] != 0 && remaining[tr.ToStore] != 0 {
			t.Fatalf("transfer %d left both sides non-zero", i)
		}
		moved += tr.Quantity
	}

	if moved > min(totalSurplus, totalNeed) {
		t.Fatalf("moved %d units, more than min(%d, %d)", moved, totalSurplus, totalNeed)
	}
	if moved != min(totalSurplus, totalNeed) {
		t.Fatalf("moved %d units, want %d", moved, min(totalSurplus, totalNeed))
	}
}

func TestMatchProductOneSided(t *testing.T) {
	provider := ports.DistanceFunc(func(ctx context.Context, from, to string) (float64, error) {
		t.Fatalf("distance must not be requested")
		return 0, nil
	})

	cases := map[string][]domain.InventoryPosition{
		"only surplus":  {pos("A", "p", 9, 1), pos("B", "p", 4, 2)},
		"only shortage": {pos("A", "p", 0, 9), pos("B", "p", 1, 4)},
		"balanced":      {pos("A", "p", 3, 3)},
		"empty":         {},
	}

	for name, positions := range cases {
		got, err := NewTransferMatcher(provider, 1).MatchProduct(context.Background(), "p", positions)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if len(got) != 0 {
			t.Fatalf("%s: transfers = %+v, want none", name, got)
		}
	}
}

func TestMatchKeepsProductOrderAcrossWorkers(t *testing.T) {
	x := map[string]float64{"A": 0, "B": 3, "C": 10, "D": 12}
	positions := []domain.InventoryPosition{
		pos("A", "product_3", 10, 2),
		pos("B", "product_1", 10, 2),
		pos("C", "product_3", 0, 5),
		pos("D", "product_1", 0, 9),
		pos("A", "product_2", 0, 4),
		pos("C", "product_2", 7, 1),
	}

	sequential, err := NewTransferMatcher(lineDistances(x), 1).Match(context.Background(), positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := NewTransferMatcher(lineDistances(x), 4).Match(context.Background(), positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatalf("parallel = %+v, want %+v", parallel, sequential)
	}

	order := []string{}
	for _, tr := range sequential {
		if len(order) == 0 || order[len(order)-1] != tr.ProductID {
			order = append(order, tr.ProductID)
		}
	}
	if !reflect.DeepEqual(order, []string{"product_3", "product_1", "product_2"}) {
		t.Fatalf("product order = %v", order)
	}
}

func TestMatchUnknownStoreIsFatal(t *testing.T) {
	provider := lineDistances(map[string]float64{"A": 0})
	positions := []domain.InventoryPosition{
		pos("A", "p", 10, 0),
		pos("ghost", "p", 0, 5),
	}

	_, err := NewTransferMatcher(provider, 2).Match(context.Background(), positions)
	if !errors.Is(err, ports.ErrUnknownStore) {
		t.Fatalf("err = %v, want ErrUnknownStore", err)
	}
}
