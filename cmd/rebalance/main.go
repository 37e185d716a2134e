package main

import (
	"fmt"
	"os"
	"store-rebalance-service/internal/adapters/report"
	"store-rebalance-service/internal/adapters/repositories"
	"store-rebalance-service/internal/config"
	"store-rebalance-service/internal/platform/logger"
	"store-rebalance-service/internal/platform/metrics"
	"store-rebalance-service/internal/services"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// main is the batch composition root: it loads feeds, plans transfers and
// routes, and writes the output feeds.
func main() {
	rt := &runtime{}

	app := &cli.App{
		Name:  "rebalance",
		Usage: "Plan inter-store inventory transfers and delivery strategies",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "Products matched concurrently (overrides WORKERS)",
				EnvVars: []string{"WORKERS"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.IsSet("workers") && c.Int("workers") > 0 {
				cfg.Planning.Workers = c.Int("workers")
			}
			logger.Setup(cfg.Log.Level, cfg.Log.Format)
			metrics.Register()
			rt.cfg = cfg
			return nil
		},
		After: func(c *cli.Context) error {
			rt.close()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Match transfers, compare delivery strategies and write every output feed",
				Flags: []cli.Flag{formatFlag()},
				Action: func(c *cli.Context) error {
					return runPlan(c, rt, false)
				},
			},
			{
				Name:  "transfers",
				Usage: "Match transfers and write the transfer and alert feeds only",
				Flags: []cli.Flag{formatFlag()},
				Action: func(c *cli.Context) error {
					return runPlan(c, rt, true)
				},
			},
			{
				Name:   "strategy",
				Usage:  "Compare delivery strategies for an existing transfer feed",
				Flags:  []cli.Flag{formatFlag()},
				Action: func(c *cli.Context) error { return runStrategy(c, rt) },
			},
			{
				Name:   "alerts",
				Usage:  "Write the shortage alert feed (no distance lookups)",
				Action: func(c *cli.Context) error { return runAlerts(c, rt) },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("rebalance failed")
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Usage: "Print a run summary as json or yaml",
		Action: func(c *cli.Context, v string) error {
			if v != "json" && v != "yaml" {
				return fmt.Errorf("--format must be json or yaml, got %q", v)
			}
			return nil
		},
	}
}

func runPlan(c *cli.Context, rt *runtime, transfersOnly bool) error {
	ctx := c.Context

	// The credential is checked before any feed is read.
	factory, err := rt.providerFactory(ctx)
	if err != nil {
		return err
	}
	stores, err := rt.storeRepo()
	if err != nil {
		return err
	}
	positions, err := rt.positionRepo()
	if err != nil {
		return err
	}

	plan, err := services.PlanRebalance(ctx, services.RebalanceRequest{
		Strategy:      rt.strategyParams(),
		Workers:       rt.cfg.Planning.Workers,
		TransfersOnly: transfersOnly,
	}, stores, positions, factory)
	if err != nil {
		return err
	}

	feeds := rt.cfg.Feeds
	out := []report.Feed{
		report.TransferFeed(feeds.TransfersPath, plan.Transfers),
		report.AlertFeed(feeds.AlertsPath, plan.Alerts),
	}
	if !transfersOnly {
		out = append(out, report.StrategyFeed(feeds.StrategyPath, plan.Decisions))
	}
	if err := report.WriteFeeds(out...); err != nil {
		return err
	}

	writeMetrics(rt)
	return printSummary(c, rt, plan, out)
}

func runStrategy(c *cli.Context, rt *runtime) error {
	ctx := c.Context

	factory, err := rt.providerFactory(ctx)
	if err != nil {
		return err
	}
	stores, err := rt.storeRepo()
	if err != nil {
		return err
	}
	transfers := repositories.NewCSVTransferRepository(rt.cfg.Feeds.TransfersPath)

	plan, err := services.PlanStrategies(ctx, rt.strategyParams(), stores, transfers, factory)
	if err != nil {
		return err
	}

	out := []report.Feed{report.StrategyFeed(rt.cfg.Feeds.StrategyPath, plan.Decisions)}
	if err := report.WriteFeeds(out...); err != nil {
		return err
	}

	writeMetrics(rt)
	return printSummary(c, rt, plan, out)
}

func runAlerts(c *cli.Context, rt *runtime) error {
	positions, err := rt.positionRepo()
	if err != nil {
		return err
	}
	list, err := positions.ListPositions(c.Context)
	if err != nil {
		return err
	}

	alerts := services.BuildShortageAlerts(list)
	if err := report.WriteFeeds(report.AlertFeed(rt.cfg.Feeds.AlertsPath, alerts)); err != nil {
		return err
	}

	log.Info().Int("alerts", len(alerts)).Str("path", rt.cfg.Feeds.AlertsPath).Msg("alerts written")
	writeMetrics(rt)
	return nil
}

// writeMetrics exports the run's counters once the feeds are in place.
// A failure here does not fail the run.
func writeMetrics(rt *runtime) {
	path := rt.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn().Err(err).Msg("metrics not exported")
		return
	}
	log.Debug().Str("path", path).Msg("metrics exported")
}

func printSummary(c *cli.Context, rt *runtime, plan *services.RebalancePlan, written []report.Feed) error {
	paths := make([]string, 0, len(written))
	for _, f := range written {
		paths = append(paths, f.Path)
	}

	summary := report.NewSummary(
		plan.RunID,
		plan.GeneratedAt.Truncate(time.Second),
		plan.Transfers,
		plan.Decisions,
		plan.Alerts,
		rt.lookupOutcomes(),
		paths,
	)

	log.Info().
		Str("run_id", summary.RunID).
		Int("transfers", summary.Transfers).
		Int("units", summary.UnitsMoved).
		Int("destinations", summary.Destinations).
		Int("alerts", summary.Alerts).
		Strs("outputs", paths).
		Msg("outputs written")

	format := c.String("format")
	if format == "" {
		return nil
	}
	if err := summary.Encode(os.Stdout, format); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}
	return nil
}
