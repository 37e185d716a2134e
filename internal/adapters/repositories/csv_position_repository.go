package repositories

import (
	"context"
	"fmt"
	"store-rebalance-service/internal/domain"

	"github.com/rs/zerolog/log"
)

// CSV-backed implementation of the PositionRepository port.
// Columns: store_id, product_id, current_inventory, predicted_7_day_sales
// and an optional status, which is checked but never trusted.
type CSVPositionRepository struct{ Path string }

func NewCSVPositionRepository(path string) *CSVPositionRepository {
	return &CSVPositionRepository{Path: path}
}

func (r *CSVPositionRepository) ListPositions(ctx context.Context) ([]domain.InventoryPosition, error) {
	feed, err := readCSVFeed(r.Path, "store_id", "product_id", "current_inventory", "predicted_7_day_sales")
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	positions := make([]domain.InventoryPosition, 0, len(feed.rows))
	mismatched := 0

	for i := range feed.rows {
		store, err := feed.id(i, "store_id")
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		product, err := feed.id(i, "product_id")
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		current, err := feed.integer(i, "current_inventory")
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		predicted, err := feed.float(i, "predicted_7_day_sales")
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}

		p := domain.InventoryPosition{
			StoreID:          store,
			ProductID:        product,
			CurrentInventory: current,
			PredictedDemand:  predicted,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("list positions: %s line %d: %w", feed.path, i+2, err)
		}

		if feed.has("status") {
			if given, _ := feed.str(i, "status"); given != "" && domain.Status(given) != p.Status() {
				mismatched++
				log.Debug().
					Str("store_id", store).
					Str("product_id", product).
					Str("feed_status", given).
					Str("status", string(p.Status())).
					Msg("feed status disagrees with quantities")
			}
		}

		positions = append(positions, p)
	}

	if mismatched > 0 {
		log.Warn().
			Str("path", r.Path).
			Int("rows", mismatched).
			Msg("recomputed status for rows whose feed status disagreed")
	}

	return positions, nil
}
