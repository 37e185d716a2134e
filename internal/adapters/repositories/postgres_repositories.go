package repositories

import (
	"context"
	"errors"
	"fmt"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/obs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// feedErr maps a missing table to ErrMissingFeed so both feed sources fail
// the same way.
func feedErr(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: table %s", ErrMissingFeed, table)
	}
	return fmt.Errorf("query %s table: %w", table, err)
}

type storeRow struct {
	StoreID string  `db:"store_id"`
	Lat     float64 `db:"lat"`
	Lon     float64 `db:"lon"`
	City    string  `db:"city"`
}

// Postgres-backed implementation of the StoreRepository port.
type PostgresStoreRepository struct{ DB *sqlx.DB }

func NewPostgresStoreRepository(db *sqlx.DB) *PostgresStoreRepository {
	return &PostgresStoreRepository{DB: db}
}

// Return every store location, in insertion order.
func (r *PostgresStoreRepository) ListStores(ctx context.Context) (_ []domain.StoreLocation, err error) {
	defer obs.Time(ctx, "repo.ListStores")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres store repository: DB is nil")
	}

	query := `
	SELECT
		store_id,
		lat,
		lon,
		city
	FROM store_locations
	ORDER BY seq;
	`
	var rows []storeRow
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list stores: %w", feedErr("store_locations", err))
	}

	stores := make([]domain.StoreLocation, 0, len(rows))
	for _, row := range rows {
		stores = append(stores, domain.StoreLocation(row))
	}
	return stores, nil
}

type positionRow struct {
	StoreID          string  `db:"store_id"`
	ProductID        string  `db:"product_id"`
	CurrentInventory int     `db:"current_inventory"`
	PredictedDemand  float64 `db:"predicted_7_day_sales"`
}

// Postgres-backed implementation of the PositionRepository port.
// Status is not stored; it is always derived from the quantities.
type PostgresPositionRepository struct{ DB *sqlx.DB }

func NewPostgresPositionRepository(db *sqlx.DB) *PostgresPositionRepository {
	return &PostgresPositionRepository{DB: db}
}

func (r *PostgresPositionRepository) ListPositions(ctx context.Context) (_ []domain.InventoryPosition, err error) {
	defer obs.Time(ctx, "repo.ListPositions")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres position repository: DB is nil")
	}

	query := `
	SELECT
		store_id,
		product_id,
		current_inventory,
		predicted_7_day_sales
	FROM inventory_positions
	ORDER BY seq;
	`
	var rows []positionRow
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list positions: %w", feedErr("inventory_positions", err))
	}

	positions := make([]domain.InventoryPosition, 0, len(rows))
	for _, row := range rows {
		p := domain.InventoryPosition(row)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}
