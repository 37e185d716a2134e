package main

import (
	"os"
	"store-rebalance-service/internal/adapters/repositories"
	"store-rebalance-service/internal/config"
	"store-rebalance-service/internal/platform/db"
	"store-rebalance-service/internal/platform/logger"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Postgres connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	app := &cli.App{
		Name:  "dbtool",
		Usage: "Create and seed the rebalancer's Postgres tables",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create feed tables and the road distance store",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					return withDB(c, func(conn *sqlx.DB) error {
						log.Info().Msg("initializing database schema")
						if err := repositories.InitSchema(c.Context, conn); err != nil {
							return err
						}
						log.Info().Msg("schema ready")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "Load the store and prediction CSV feeds into Postgres",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "stores",
						Usage: "Store coordinate feed",
						Value: cfg.Feeds.StoreLocationsPath,
					},
					&cli.StringFlag{
						Name:  "predictions",
						Usage: "Inventory prediction feed",
						Value: cfg.Feeds.PredictionsPath,
					},
				},
				Action: func(c *cli.Context) error {
					return withDB(c, func(conn *sqlx.DB) error { return seed(c, conn) })
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("dbtool failed")
	}
}

func withDB(c *cli.Context, fn func(*sqlx.DB) error) error {
	conn, err := db.Open(c.String("db-url"))
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

func seed(c *cli.Context, conn *sqlx.DB) error {
	ctx := c.Context

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	stores, err := repositories.NewCSVStoreRepository(c.String("stores")).ListStores(ctx)
	if err != nil {
		return err
	}
	positions, err := repositories.NewCSVPositionRepository(c.String("predictions")).ListPositions(ctx)
	if err != nil {
		return err
	}

	if err := repositories.SeedStores(ctx, conn, stores); err != nil {
		return err
	}
	if err := repositories.SeedPositions(ctx, conn, positions); err != nil {
		return err
	}

	log.Info().Int("stores", len(stores)).Int("positions", len(positions)).Msg("seeding complete")
	return nil
}
