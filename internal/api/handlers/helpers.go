package handlers

import (
	"errors"
	"net/http"
	"store-rebalance-service/internal/adapters/repositories"
	"store-rebalance-service/internal/api/dto"
	"store-rebalance-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// writeFeedError reports a feed read failure. A feed that has not been
// produced yet is a 503; anything else is logged and hidden behind a 500.
func writeFeedError(c *gin.Context, op string, err error) {
	if errors.Is(err, repositories.ErrMissingFeed) {
		writeError(c, http.StatusServiceUnavailable, "feed not available yet; run the rebalancer first")
		return
	}
	log.Error().Err(err).Str("op", op).Str("path", c.Request.URL.Path).Msg("read feed failed")
	writeError(c, http.StatusInternalServerError, "internal server error")
}

func locationsByStore(stores []domain.StoreLocation) map[string]dto.LocationResponse {
	out := make(map[string]dto.LocationResponse, len(stores))
	for _, s := range stores {
		out[s.StoreID] = dto.LocationResponse{Lat: s.Lat, Lon: s.Lon, City: s.City}
	}
	return out
}

func transferResponses(transfers []domain.Transfer) []dto.TransferResponse {
	out := make([]dto.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, dto.TransferResponse{
			ProductID: t.ProductID,
			FromStore: t.FromStore,
			ToStore:   t.ToStore,
			Quantity:  t.Quantity,
			RoadKm:    t.DistanceKm,
		})
	}
	return out
}
