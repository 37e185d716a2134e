package handlers

import (
	"net/http"
	"store-rebalance-service/internal/api/dto"
	"store-rebalance-service/internal/ports"

	"github.com/gin-gonic/gin"
)

// StoreHandler exposes the store coordinate feed.
type StoreHandler struct {
	Stores ports.StoreRepository
}

func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.Stores.ListStores(c.Request.Context())
	if err != nil {
		writeFeedError(c, "list stores", err)
		return
	}

	res := dto.ListStoresResponse{Stores: make([]dto.StoreResponse, 0, len(stores))}
	for _, s := range stores {
		res.Stores = append(res.Stores, dto.StoreResponse{
			StoreID:          s.StoreID,
			LocationResponse: dto.LocationResponse{Lat: s.Lat, Lon: s.Lon, City: s.City},
		})
	}

	c.JSON(http.StatusOK, res)
}
