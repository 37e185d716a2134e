package services

import (
	"context"
	"errors"
	"fmt"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/obs"
	"store-rebalance-service/internal/ports"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProviderFactory builds the run's DistanceProvider once store locations are known.
type ProviderFactory func(stores []domain.StoreLocation) (ports.DistanceProvider, error)

type RebalanceRequest struct {
	Strategy StrategyParams
	Workers  int
	// Skip strategy evaluation and only produce transfers and alerts.
	TransfersOnly bool
}

// RebalancePlan is everything one run produces. Nothing is written until
// the whole plan has been computed.
type RebalancePlan struct {
	RunID       string
	GeneratedAt time.Time
	Transfers   []domain.Transfer
	Decisions   []domain.RouteDecision
	Alerts      []domain.ShortageAlert
	Stores      []domain.StoreLocation
}

// PlanRebalance loads the feeds, matches transfers, and evaluates delivery
// strategies for every destination.
func PlanRebalance(
	ctx context.Context,
	req RebalanceRequest,
	storeRepo ports.StoreRepository,
	positionRepo ports.PositionRepository,
	newProvider ProviderFactory,
) (_ *RebalancePlan, err error) {
	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	defer obs.Time(ctx, "rebalance.plan")(&err)

	stores, err := storeRepo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan rebalance: list stores: %w", err)
	}
	if len(stores) == 0 {
		return nil, errors.New("plan rebalance: store location feed is empty")
	}

	positions, err := positionRepo.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan rebalance: list positions: %w", err)
	}
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("plan rebalance: %w", err)
		}
	}

	provider, err := newProvider(stores)
	if err != nil {
		return nil, fmt.Errorf("plan rebalance: build distance provider: %w", err)
	}

	matcher := NewTransferMatcher(provider, req.Workers)
	transfers, err := matcher.Match(ctx, positions)
	if err != nil {
		return nil, fmt.Errorf("plan rebalance: %w", err)
	}

	plan := &RebalancePlan{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Transfers:   transfers,
		Decisions:   []domain.RouteDecision{},
		Alerts:      BuildShortageAlerts(positions),
		Stores:      stores,
	}

	if !req.TransfersOnly {
		evaluator, err := NewRouteStrategyEvaluator(provider, req.Strategy)
		if err != nil {
			return nil, fmt.Errorf("plan rebalance: %w", err)
		}
		plan.Decisions, err = evaluator.Evaluate(ctx, transfers)
		if err != nil {
			return nil, fmt.Errorf("plan rebalance: %w", err)
		}
	}

	log.Info().
		Str("run_id", runID).
		Int("positions", len(positions)).
		Int("transfers", len(plan.Transfers)).
		Int("decisions", len(plan.Decisions)).
		Int("alerts", len(plan.Alerts)).
		Msg("rebalance planned")

	return plan, nil
}

// PlanStrategies evaluates delivery strategies for an existing transfer feed.
func PlanStrategies(
	ctx context.Context,
	params StrategyParams,
	storeRepo ports.StoreRepository,
	transferRepo ports.TransferRepository,
	newProvider ProviderFactory,
) (_ *RebalancePlan, err error) {
	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	defer obs.Time(ctx, "rebalance.strategies")(&err)

	stores, err := storeRepo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan strategies: list stores: %w", err)
	}

	transfers, err := transferRepo.ListTransfers(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan strategies: list transfers: %w", err)
	}

	provider, err := newProvider(stores)
	if err != nil {
		return nil, fmt.Errorf("plan strategies: build distance provider: %w", err)
	}

	evaluator, err := NewRouteStrategyEvaluator(provider, params)
	if err != nil {
		return nil, fmt.Errorf("plan strategies: %w", err)
	}

	decisions, err := evaluator.Evaluate(ctx, transfers)
	if err != nil {
		return nil, fmt.Errorf("plan strategies: %w", err)
	}

	return &RebalancePlan{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Transfers:   transfers,
		Decisions:   decisions,
		Stores:      stores,
	}, nil
}
