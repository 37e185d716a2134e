package repositories

import (
	"context"
	"errors"
	"fmt"
	"store-rebalance-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

// Initialize the Postgres schema for input feeds and the road distance store.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStoresQuery := `
	CREATE TABLE IF NOT EXISTS store_locations (
		seq BIGSERIAL,
		store_id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		city TEXT NOT NULL DEFAULT ''
	);
	`

	createPositionsQuery := `
	CREATE TABLE IF NOT EXISTS inventory_positions (
		seq BIGSERIAL,
		store_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		current_inventory INTEGER NOT NULL CHECK (current_inventory >= 0),
		predicted_7_day_sales DOUBLE PRECISION NOT NULL CHECK (predicted_7_day_sales >= 0),
		PRIMARY KEY (store_id, product_id)
	);
	`

	createDistanceStoreQuery := `
	CREATE TABLE IF NOT EXISTS road_distance_cache (
		from_store TEXT NOT NULL,
		to_store TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (from_store, to_store)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_inventory_positions_product
	ON inventory_positions(product_id, seq);
	`

	statements := []string{
		createStoresQuery,
		createPositionsQuery,
		createDistanceStoreQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedStores replaces the store_locations table with stores.
func SeedStores(ctx context.Context, db *sqlx.DB, stores []domain.StoreLocation) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed stores: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `TRUNCATE store_locations RESTART IDENTITY;`); err != nil {
		return fmt.Errorf("seed stores: truncate: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
	INSERT INTO store_locations (store_id, lat, lon, city)
	VALUES ($1, $2, $3, $4);
	`)
	if err != nil {
		return fmt.Errorf("seed stores: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stores {
		if _, err := stmt.ExecContext(ctx, s.StoreID, s.Lat, s.Lon, s.City); err != nil {
			return fmt.Errorf("seed stores: insert store_id=%q: %w", s.StoreID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stores: commit tx: %w", err)
	}
	return nil
}

// SeedPositions replaces the inventory_positions table, keeping feed order.
func SeedPositions(ctx context.Context, db *sqlx.DB, positions []domain.InventoryPosition) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed positions: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `TRUNCATE inventory_positions RESTART IDENTITY;`); err != nil {
		return fmt.Errorf("seed positions: truncate: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
	INSERT INTO inventory_positions (store_id, product_id, current_inventory, predicted_7_day_sales)
	VALUES ($1, $2, $3, $4);
	`)
	if err != nil {
		return fmt.Errorf("seed positions: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, p.StoreID, p.ProductID, p.CurrentInventory, p.PredictedDemand); err != nil {
			return fmt.Errorf("seed positions: insert %s/%s: %w", p.StoreID, p.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed positions: commit tx: %w", err)
	}
	return nil
}
