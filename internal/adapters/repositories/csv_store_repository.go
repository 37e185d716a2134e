package repositories

import (
	"context"
	"fmt"
	"math"
	"store-rebalance-service/internal/domain"
)

// CSV-backed implementation of the StoreRepository port.
// Columns: store_id, lat, lon, city.
type CSVStoreRepository struct{ Path string }

func NewCSVStoreRepository(path string) *CSVStoreRepository {
	return &CSVStoreRepository{Path: path}
}

func (r *CSVStoreRepository) ListStores(ctx context.Context) ([]domain.StoreLocation, error) {
	feed, err := readCSVFeed(r.Path, "store_id", "lat", "lon")
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	stores := make([]domain.StoreLocation, 0, len(feed.rows))
	for i := range feed.rows {
		id, err := feed.id(i, "store_id")
		if err != nil {
			return nil, fmt.Errorf("list stores: %w", err)
		}
		lat, err := feed.float(i, "lat")
		if err != nil {
			return nil, fmt.Errorf("list stores: %w", err)
		}
		lon, err := feed.float(i, "lon")
		if err != nil {
			return nil, fmt.Errorf("list stores: %w", err)
		}
		if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
			return nil, fmt.Errorf("list stores: store %q has out-of-range coordinates (%g, %g)", id, lat, lon)
		}

		city := ""
		if feed.has("city") {
			city, _ = feed.str(i, "city")
		}

		stores = append(stores, domain.StoreLocation{StoreID: id, Lat: lat, Lon: lon, City: city})
	}

	return stores, nil
}
