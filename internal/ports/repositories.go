package ports

import (
	"context"
	"store-rebalance-service/internal/domain"
)

// Port: a boundary for retrieving store coordinates.
type StoreRepository interface {
	ListStores(ctx context.Context) ([]domain.StoreLocation, error)
}

// Port: a boundary for retrieving current stock vs. predicted demand.
type PositionRepository interface {
	// Positions are returned in feed order.
	ListPositions(ctx context.Context) ([]domain.InventoryPosition, error)
}

// Port: a boundary for reading a previously written transfer feed.
type TransferRepository interface {
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)
}

// Port: a boundary for reading a previously written strategy feed.
type DecisionRepository interface {
	ListDecisions(ctx context.Context) ([]domain.RouteDecision, error)
}

// Port: a boundary for reading a previously written alerts feed.
type AlertRepository interface {
	ListAlerts(ctx context.Context) ([]domain.ShortageAlert, error)
}
