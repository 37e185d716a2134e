package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"store-rebalance-service/internal/adapters/repositories"
	"store-rebalance-service/internal/api"
	"store-rebalance-service/internal/config"
	"store-rebalance-service/internal/platform/db"
	"store-rebalance-service/internal/platform/logger"
	"store-rebalance-service/internal/ports"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// main is the API composition root.
// It serves the feeds written by the rebalance command; it never plans.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	var stores ports.StoreRepository = repositories.NewCSVStoreRepository(cfg.Feeds.StoreLocationsPath)
	if cfg.Feeds.InputSource == "postgres" {
		conn, err := db.Open(cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer conn.Close()
		stores = repositories.NewPostgresStoreRepository(conn)
	}

	// Feeds are re-read per request so a fresh run is served without restart.
	router := api.NewRouter(api.Feeds{
		Stores:    stores,
		Transfers: repositories.NewCSVTransferRepository(cfg.Feeds.TransfersPath),
		Decisions: repositories.NewCSVDecisionRepository(cfg.Feeds.StrategyPath),
		Alerts:    repositories.NewCSVAlertRepository(cfg.Feeds.AlertsPath),
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
