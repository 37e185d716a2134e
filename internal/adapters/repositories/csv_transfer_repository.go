package repositories

import (
	"context"
	"fmt"
	"store-rebalance-service/internal/domain"
)

// CSV-backed implementation of the TransferRepository port.
// Columns: product_id, from_store, to_store, quantity, road_km.
type CSVTransferRepository struct{ Path string }

func NewCSVTransferRepository(path string) *CSVTransferRepository {
	return &CSVTransferRepository{Path: path}
}

func (r *CSVTransferRepository) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	feed, err := readCSVFeed(r.Path, "product_id", "from_store", "to_store", "quantity", "road_km")
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	transfers := make([]domain.Transfer, 0, len(feed.rows))
	for i := range feed.rows {
		var t domain.Transfer
		if t.ProductID, err = feed.id(i, "product_id"); err != nil {
			return nil, fmt.Errorf("list transfers: %w", err)
		}
		if t.FromStore, err = feed.id(i, "from_store"); err != nil {
			return nil, fmt.Errorf("list transfers: %w", err)
		}
		if t.ToStore, err = feed.id(i, "to_store"); err != nil {
			return nil, fmt.Errorf("list transfers: %w", err)
		}
		if t.Quantity, err = feed.integer(i, "quantity"); err != nil {
			return nil, fmt.Errorf("list transfers: %w", err)
		}
		if t.DistanceKm, err = feed.float(i, "road_km"); err != nil {
			return nil, fmt.Errorf("list transfers: %w", err)
		}
		if t.Quantity <= 0 {
			return nil, fmt.Errorf("list transfers: %s line %d: quantity must be positive", feed.path, i+2)
		}
		transfers = append(transfers, t)
	}

	return transfers, nil
}
