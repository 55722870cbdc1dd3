// The apiserver binary serves the operator REST API: discovery batch
// trigger, per-subject duplicate scan, health probes, and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/probite-fr/probite/internal/bootstrap"
	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	httpserver "github.com/probite-fr/probite/internal/interfaces/http"
	"github.com/probite-fr/probite/internal/interfaces/http/handlers"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: PROBITE_* environment)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
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
	logger = logger.Named("apiserver")
	logger.Info("starting", logging.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{
		Source:           "apiserver",
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

	router := httpserver.NewRouter(httpserver.RouterConfig{
		DiscoveryHandler: handlers.NewDiscoveryHandler(app.Pipeline, logger),
		DedupHandler:     handlers.NewDedupHandler(app.Scanner, logger),
		HealthHandler:    handlers.NewHealthHandler(version, healthCheckers(app.DB, app.Redis, app.MinIO)...),
		Logger:           logger,
		Metrics:          app.Metrics,
		MetricsCollector: app.Collector,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return server.Stop(context.Background())
}
