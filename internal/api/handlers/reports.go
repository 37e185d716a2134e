package handlers

import (
	"net/http"
	"store-rebalance-service/internal/api/dto"
	"store-rebalance-service/internal/ports"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the strategy comparison and shortage alert feeds.
type ReportHandler struct {
	Decisions ports.DecisionRepository
	Alerts    ports.AlertRepository
}

func (h *ReportHandler) ListDecisions(c *gin.Context) {
	decisions, err := h.Decisions.ListDecisions(c.Request.Context())
	if err != nil {
		writeFeedError(c, "list decisions", err)
		return
	}

	res := dto.ListDecisionsResponse{Decisions: make([]dto.DecisionResponse, 0, len(decisions))}
	for _, d := range decisions {
		res.Decisions = append(res.Decisions, dto.DecisionResponse{
			ToStore:           d.ToStore,
			OriginCount:       d.OriginCount,
			VehiclesSingle:    d.VehiclesSingle,
			VehiclesParallel:  d.VehiclesParallel,
			TimeSingleHours:   d.TimeSingleHours,
			TimeParallelHours: d.TimeParallelHours,
			Decision:          d.Chosen.FeedLabel(),
			Strategy:          string(d.Chosen),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.Alerts.ListAlerts(c.Request.Context())
	if err != nil {
		writeFeedError(c, "list alerts", err)
		return
	}

	res := dto.ListAlertsResponse{Alerts: make([]dto.AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		res.Alerts = append(res.Alerts, dto.AlertResponse{
			StoreID:          a.Position.StoreID,
			ProductID:        a.Position.ProductID,
			CurrentInventory: a.Position.CurrentInventory,
			PredictedDemand:  a.Position.PredictedDemand,
			Status:           string(a.Position.Status()),
			ShortageQty:      a.ShortageQty,
		})
	}

	c.JSON(http.StatusOK, res)
}
