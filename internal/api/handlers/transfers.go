package handlers

import (
	"math"
	"net/http"
	"sort"
	"store-rebalance-service/internal/api/dto"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/ports"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// minutesPerKm is the dashboard's rough drive-time estimate.
const minutesPerKm = 2

// TransferHandler serves route data for the map dashboard.
type TransferHandler struct {
	Transfers ports.TransferRepository
	Stores    ports.StoreRepository
}

func (h *TransferHandler) load(c *gin.Context) ([]domain.Transfer, []domain.StoreLocation, bool) {
	ctx := c.Request.Context()

	transfers, err := h.Transfers.ListTransfers(ctx)
	if err != nil {
		writeFeedError(c, "list transfers", err)
		return nil, nil, false
	}
	stores, err := h.Stores.ListStores(ctx)
	if err != nil {
		writeFeedError(c, "list stores", err)
		return nil, nil, false
	}
	return transfers, stores, true
}

// List returns every transfer, all store locations and the sorted list of
// destination stores.
func (h *TransferHandler) List(c *gin.Context) {
	transfers, stores, ok := h.load(c)
	if !ok {
		return
	}

	seen := make(map[string]bool)
	dests := []string{}
	for _, t := range transfers {
		if !seen[t.ToStore] {
			seen[t.ToStore] = true
			dests = append(dests, t.ToStore)
		}
	}
	sort.Strings(dests)

	c.JSON(http.StatusOK, dto.RouteDataResponse{
		Transfers:    transferResponses(transfers),
		Locations:    locationsByStore(stores),
		Destinations: dests,
	})
}

// ForDestination returns the transfers into one store with route statistics.
func (h *TransferHandler) ForDestination(c *gin.Context) {
	dest := strings.TrimSpace(c.Param("destination"))

	transfers, stores, ok := h.load(c)
	if !ok {
		return
	}

	rows := []domain.Transfer{}
	origins := []string{}
	seen := make(map[string]bool)
	totalKm := decimal.Zero
	totalQty := 0

	for _, t := range transfers {
		if t.ToStore != dest {
			continue
		}
		rows = append(rows, t)
		if !seen[t.FromStore] {
			seen[t.FromStore] = true
			origins = append(origins, t.FromStore)
		}
		totalKm = totalKm.Add(decimal.NewFromFloat(t.DistanceKm))
		totalQty += t.Quantity
	}

	if len(rows) == 0 {
		writeError(c, http.StatusNotFound, "no transfers found for destination "+dest)
		return
	}

	km := totalKm.Round(2).InexactFloat64()
	c.JSON(http.StatusOK, dto.DestinationRouteResponse{
		Destination: dest,
		Origins:     origins,
		Transfers:   transferResponses(rows),
		Locations:   locationsByStore(stores),
		Statistics: dto.RouteStatistics{
			TotalDistance: km,
			TotalQuantity: totalQty,
			EstimatedTime: int(math.RoundToEven(totalKm.InexactFloat64() * minutesPerKm)),
			OriginCount:   len(origins),
		},
	})
}
