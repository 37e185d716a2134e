package api

import (
	"store-rebalance-service/internal/api/handlers"
	"store-rebalance-service/internal/platform/metrics"
	"store-rebalance-service/internal/ports"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feeds are the read sides of everything a rebalance run produces.
type Feeds struct {
	Stores    ports.StoreRepository
	Transfers ports.TransferRepository
	Decisions ports.DecisionRepository
	Alerts    ports.AlertRepository
}

// NewRouter wires HTTP handlers with their dependencies.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(feeds Feeds, allowedOrigins []string) *gin.Engine {
	metrics.Register()

	router := gin.New()
	router.Use(recovery(), requestID(), loggingMiddleware())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	transferHandler := &handlers.TransferHandler{Transfers: feeds.Transfers, Stores: feeds.Stores}
	storeHandler := &handlers.StoreHandler{Stores: feeds.Stores}
	reportHandler := &handlers.ReportHandler{Decisions: feeds.Decisions, Alerts: feeds.Alerts}

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stores", storeHandler.List)
		v1.GET("/transfers", transferHandler.List)
		v1.GET("/transfers/:destination", transferHandler.ForDestination)
		v1.GET("/decisions", reportHandler.ListDecisions)
		v1.GET("/alerts", reportHandler.ListAlerts)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := []string{}
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			// Credentials cannot be combined with a literal wildcard origin.
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	}
	return cfg
}
