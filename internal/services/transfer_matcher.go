package services

import (
	"context"
	"fmt"
	"math"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/metrics"
	"store-rebalance-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// surplusEntry and shortageEntry are the working state of one product's
// matching run. They are removed as soon as they reach zero.
type surplusEntry struct {
	storeID  string
	quantity int
}

type shortageEntry struct {
	storeID string
	need    int
}

// TransferMatcher pairs surplus and shortage positions by transport cost.
type TransferMatcher struct {
	distances ports.DistanceProvider
	workers   int
}

func NewTransferMatcher(distances ports.DistanceProvider, workers int) *TransferMatcher {
	if workers < 1 {
		workers = 1
	}
	return &TransferMatcher{distances: distances, workers: workers}
}

// Match produces transfers for every product in positions.
//
// Products are matched independently and results are concatenated in the
// order products first appear in positions, regardless of worker count.
func (m *TransferMatcher) Match(
	ctx context.Context,
	positions []domain.InventoryPosition,
) ([]domain.Transfer, error) {
	products, byProduct := groupByProduct(positions)
	results := make([][]domain.Transfer, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, product := range products {
		g.Go(func() error {
			transfers, err := m.MatchProduct(gctx, product, byProduct[product])
			if err != nil {
				return err
			}
			results[i] = transfers
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match transfers: %w", err)
	}

	out := []domain.Transfer{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// MatchProduct runs the greedy nearest-pair matching for one product.
//
// Each iteration scans every remaining (surplus, shortage) pair and takes the
// one with the smallest distance; ties keep the first pair encountered. This
// is O(|surplus|*|shortage|) per iteration and at most |surplus|+|shortage|
// iterations, since every transfer exhausts at least one side. The result is
// locally optimal, not a minimum-cost assignment.
func (m *TransferMatcher) MatchProduct(
	ctx context.Context,
	productID string,
	positions []domain.InventoryPosition,
) ([]domain.Transfer, error) {
	surplus := make([]*surplusEntry, 0, len(positions))
	shortage := make([]*shortageEntry, 0, len(positions))

	for _, p := range positions {
		if q := p.SurplusQuantity(); q > 0 {
			surplus = append(surplus, &surplusEntry{storeID: p.StoreID, quantity: q})
		}
		if n := p.ShortageNeed(); n > 0 {
			shortage = append(shortage, &shortageEntry{storeID: p.StoreID, need: n})
		}
	}

	transfers := []domain.Transfer{}

	for len(surplus) > 0 && len(shortage) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bestS, bestD := -1, -1
		bestKm := math.Inf(1)

		for si, s := range surplus {
			for di, d := range shortage {
				km, err := m.distances.Distance(ctx, s.storeID, d.storeID)
				if err != nil {
					return nil, fmt.Errorf("match product %q: %w", productID, err)
				}
				// Strict comparison keeps the first pair on ties.
				if km < bestKm {
					bestS, bestD, bestKm = si, di, km
				}
			}
		}

		// Only reachable if every distance is +Inf or NaN.
		if bestS < 0 {
			return nil, fmt.Errorf("match product %q: no comparable distance between remaining stores", productID)
		}

		s, d := surplus[bestS], shortage[bestD]
		qty := min(s.quantity, d.need)

		transfers = append(transfers, domain.Transfer{
			ProductID:  productID,
			FromStore:  s.storeID,
			ToStore:    d.storeID,
			Quantity:   qty,
			DistanceKm: bestKm,
		})
		metrics.TransfersEmitted.Inc()
		metrics.UnitsTransferred.Add(float64(qty))

		s.quantity -= qty
		d.need -= qty

		if s.quantity == 0 {
			surplus = append(surplus[:bestS], surplus[bestS+1:]...)
		}
		if d.need == 0 {
			shortage = append(shortage[:bestD], shortage[bestD+1:]...)
		}
	}

	return transfers, nil
}

// groupByProduct splits positions per product, keeping feed order both for
// the product list and within each product.
func groupByProduct(positions []domain.InventoryPosition) ([]string, map[string][]domain.InventoryPosition) {
	products := []string{}
	byProduct := make(map[string][]domain.InventoryPosition)

	for _, p := range positions {
		if _, seen := byProduct[p.ProductID]; !seen {
			products = append(products, p.ProductID)
		}
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}

	return products, byProduct
}
