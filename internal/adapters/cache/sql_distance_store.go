package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/obs"

	"github.com/jmoiron/sqlx"
)

// SQLDistanceStore is a Postgres-backed store of live road distances,
// keyed by the ordered store pair. It survives across runs.
type SQLDistanceStore struct {
	DB *sqlx.DB
}

func NewSQLDistanceStore(db *sqlx.DB) *SQLDistanceStore {
	return &SQLDistanceStore{DB: db}
}

// Fetch the stored distance for one ordered pair.
func (s *SQLDistanceStore) Get(
	ctx context.Context,
	pair domain.StorePair,
) (_ float64, _ bool, err error) {
	defer obs.Time(ctx, "distance.store.Get")(&err)

	if s.DB == nil {
		return 0, false, errors.New("distance store: db is nil")
	}

	if pair.From == "" || pair.To == "" {
		return 0, false, errors.New("get distance store: store ids must not be empty")
	}

	q := `
	SELECT distance_km
	FROM road_distance_cache
	WHERE from_store = $1
		AND to_store = $2;
	`

	var km float64
	if err := s.DB.GetContext(ctx, &km, q, pair.From, pair.To); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get distance store: query road_distance_cache: %w", err)
	}

	return km, true, nil
}

// Store a live distance for one ordered pair.
func (s *SQLDistanceStore) Put(ctx context.Context, pair domain.StorePair, km float64) error {
	if s.DB == nil {
		return errors.New("distance store: db is nil")
	}

	if pair.From == "" || pair.To == "" {
		return errors.New("insert distance store: store ids must not be empty")
	}

	q := `
	INSERT INTO road_distance_cache (from_store, to_store, distance_km)
	VALUES ($1, $2, $3)
	ON CONFLICT (from_store, to_store) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		updated_at = now();
	`
	if _, err := s.DB.ExecContext(ctx, q, pair.From, pair.To, km); err != nil {
		return fmt.Errorf("insert distance store pair=%q: %w", pair.String(), err)
	}

	return nil
}
