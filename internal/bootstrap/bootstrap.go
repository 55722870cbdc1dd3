// Package bootstrap wires configuration into the full service graph shared
// by the apiserver, the worker, and the CLI: infrastructure clients first,
// then the application services on top of them.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/probite-fr/probite/internal/application/dedup"
	"github.com/probite-fr/probite/internal/application/discovery"
	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/offense"
	"github.com/probite-fr/probite/internal/infrastructure/database/postgres"
	"github.com/probite-fr/probite/internal/infrastructure/database/postgres/repositories"
	"github.com/probite-fr/probite/internal/infrastructure/database/redis"
	"github.com/probite-fr/probite/internal/infrastructure/knowledge"
	"github.com/probite-fr/probite/internal/infrastructure/messaging/kafka"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/prometheus"
	"github.com/probite-fr/probite/internal/infrastructure/storage/minio"
	"github.com/probite-fr/probite/internal/intelligence/extraction"
)

// Options toggles optional parts of the graph per process.
type Options struct {
	// Source labels emitted events ("apiserver", "worker", "cli").
	Source string

	// RunMigrations applies pending SQL migrations before the repositories
	// are built.  Enabled by the worker, off for the API server and CLI so
	// that concurrent deployments do not race on the schema.
	RunMigrations bool

	// MetricsNamespace registers prometheus collectors when non-empty.
	MetricsNamespace string
}

// App is the wired service graph.
type App struct {
	Config *config.Config
	Logger logging.Logger

	DB       *postgres.Connection
	Redis    *redis.Client
	Producer *kafka.Producer
	MinIO    *minio.Client

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.PipelineMetrics

	Affairs  *repositories.AffairRepository
	Subjects *repositories.SubjectRepository

	Pipeline *discovery.Pipeline
	Scanner  *dedup.Scanner
}

// New builds the full graph.  Postgres and Redis are mandatory; Kafka and
// MinIO failures only degrade the pipeline (no events, no evidence
// snapshots) and are logged, not fatal.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	if opts.MetricsNamespace != "" {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            opts.MetricsNamespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: metrics registration failed: %w", err)
		}
		app.Collector = collector
		app.Metrics = prometheus.NewPipelineMetrics(collector)
	}

	if opts.RunMigrations {
		dbURL := postgres.BuildDSN(cfg.Database)
		if err := postgres.RunMigrations(dbURL, "file://"+cfg.Database.MigrationPath); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}

	db, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: postgres connection failed: %w", err)
	}
	app.DB = db

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: redis connection failed: %w", err)
	}
	app.Redis = redisClient

	// Kafka and MinIO are best-effort: the pipeline runs without them.
	producer, err := kafka.NewProducer(cfg.Kafka, opts.Source, logger)
	if err != nil {
		logger.Warn("kafka producer unavailable, events disabled", logging.Err(err))
	} else {
		app.Producer = producer
	}

	minioClient, err := minio.NewClient(cfg.MinIO, logger)
	if err != nil {
		logger.Warn("minio unavailable, evidence snapshots disabled", logging.Err(err))
	} else {
		app.MinIO = minioClient
	}

	app.Affairs = repositories.NewAffairRepository(db.Pool(), logger)
	app.Subjects = repositories.NewSubjectRepository(db.Pool(), logger)

	labelCache := redis.NewCache(redisClient, logger)
	kgClient, err := knowledge.NewClient(cfg.Knowledge, labelCache, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: knowledge client failed: %w", err)
	}
	extractionClient, err := extraction.NewClient(cfg.Extraction, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: extraction client failed: %w", err)
	}

	var archive minio.EvidenceArchive
	if app.MinIO != nil {
		archive = minio.NewEvidenceArchive(app.MinIO, logger)
	}
	var publisher discovery.EventPublisher
	if app.Producer != nil {
		publisher = app.Producer
	}

	scorer := affair.NewScorer(cfg.Scoring)
	locks := redis.NewLockFactory(redisClient, logger)

	structured := discovery.NewStructuredIngester(kgClient, offense.NewClassifier(), cfg.Pipeline, logger)
	textual := discovery.NewTextExtractor(extractionClient, archive, cfg.Pipeline, logger)
	reconciler := discovery.NewReconciler(app.Affairs, locks, scorer, publisher, app.Metrics, cfg.Pipeline, logger)

	app.Pipeline = discovery.NewPipeline(app.Subjects, structured, textual, reconciler, publisher, app.Metrics, logger)
	app.Scanner = dedup.NewScanner(app.Affairs, scorer, logger)

	return app, nil
}

// Close tears the infrastructure down in reverse dependency order.  Safe to
// call on a partially-built App.
func (a *App) Close() error {
	var firstErr error
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.MinIO != nil {
		if err := a.MinIO.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	return firstErr
}
