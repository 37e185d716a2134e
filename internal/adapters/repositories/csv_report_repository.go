package repositories

import (
	"context"
	"fmt"
	"store-rebalance-service/internal/domain"
)

// CSVDecisionRepository reads the strategy comparison feed back. Only the
// summary columns are stored there, so pickup order and legs come back empty.
type CSVDecisionRepository struct{ Path string }

func NewCSVDecisionRepository(path string) *CSVDecisionRepository {
	return &CSVDecisionRepository{Path: path}
}

func (r *CSVDecisionRepository) ListDecisions(ctx context.Context) ([]domain.RouteDecision, error) {
	feed, err := readCSVFeed(r.Path, "to_store", "num_origins", "veh_A", "veh_B", "time_A_hr", "time_B_hr", "decision")
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}

	decisions := make([]domain.RouteDecision, 0, len(feed.rows))
	for i := range feed.rows {
		var d domain.RouteDecision
		if d.ToStore, err = feed.id(i, "to_store"); err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		if d.OriginCount, err = feed.integer(i, "num_origins"); err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		if d.VehiclesSingle, err = feed.integer(i, "veh_A"); err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		if d.VehiclesParallel, err = feed.integer(i, "veh_B"); err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		if d.TimeSingleHours, err = feed.float(i, "time_A_hr"); err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		if d.TimeParallelHours, err = feed.float(i, "time_B_hr"); err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}

		label, _ := feed.str(i, "decision")
		if d.Chosen, err = domain.ParseStrategy(label); err != nil {
			return nil, fmt.Errorf("list decisions: %s line %d: %w", feed.path, i+2, err)
		}

		decisions = append(decisions, d)
	}

	return decisions, nil
}

// CSVAlertRepository reads the shortage alerts feed back.
type CSVAlertRepository struct{ Path string }

func NewCSVAlertRepository(path string) *CSVAlertRepository {
	return &CSVAlertRepository{Path: path}
}

func (r *CSVAlertRepository) ListAlerts(ctx context.Context) ([]domain.ShortageAlert, error) {
	feed, err := readCSVFeed(r.Path, "store_id", "product_id", "current_inventory", "predicted_7_day_sales", "shortage_qty")
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	alerts := make([]domain.ShortageAlert, 0, len(feed.rows))
	for i := range feed.rows {
		var a domain.ShortageAlert
		if a.Position.StoreID, err = feed.id(i, "store_id"); err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		if a.Position.ProductID, err = feed.id(i, "product_id"); err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		if a.Position.CurrentInventory, err = feed.integer(i, "current_inventory"); err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		if a.Position.PredictedDemand, err = feed.float(i, "predicted_7_day_sales"); err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		if a.ShortageQty, err = feed.integer(i, "shortage_qty"); err != nil {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, nil
}
