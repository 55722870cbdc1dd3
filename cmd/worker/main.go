// The worker binary runs the discovery pipeline on a schedule: one batch at
// startup, then one every pipeline.run_interval until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/probite-fr/probite/internal/bootstrap"
	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: PROBITE_* environment)")
	once := flag.Bool("once", false, "run a single discovery batch and exit")
	flag.Parse()

	if err := run(*configPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, once bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	logger = logger.Named("worker")
	logger.Info("starting",
		logging.String("version", version),
		logging.Duration("run_interval", cfg.Pipeline.RunInterval),
		logging.Bool("once", once))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{
		Source:           "worker",
		RunMigrations:    true,
		MetricsNamespace: "probite",
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Warn("shutdown left dangling resources", logging.Err(cerr))
		}
	}()

	if err := runBatch(ctx, app, logger); err != nil {
		if once {
			return err
		}
		logger.Error("discovery batch failed", logging.Err(err))
	}
	if once {
		return nil
	}

	ticker := time.NewTicker(cfg.Pipeline.RunInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping")
			return nil
		case <-ticker.C:
			if err := runBatch(ctx, app, logger); err != nil {
				logger.Error("discovery batch failed", logging.Err(err))
			}
		}
	}
}

func runBatch(ctx context.Context, app *bootstrap.App, logger logging.Logger) error {
	summary, err := app.Pipeline.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("discovery batch done",
		logging.Int("subjects", summary.SubjectsProcessed),
		logging.Int("affairs_created", summary.AffairsCreated),
		logging.Int("duplicates_skipped", summary.DuplicatesSkipped),
		logging.Int("errors", len(summary.Errors)))
	return nil
}
