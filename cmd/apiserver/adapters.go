package main

import (
	"context"

	"github.com/probite-fr/probite/internal/infrastructure/database/postgres"
	"github.com/probite-fr/probite/internal/infrastructure/database/redis"
	"github.com/probite-fr/probite/internal/infrastructure/storage/minio"
	"github.com/probite-fr/probite/internal/interfaces/http/handlers"
)

// Readiness adapters for the health handler.

type postgresHealthAdapter struct {
	conn *postgres.Connection
}

func (a *postgresHealthAdapter) Name() string                    { return "postgres" }
func (a *postgresHealthAdapter) Check(ctx context.Context) error { return a.conn.HealthCheck(ctx) }

type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string                    { return "redis" }
func (a *redisHealthAdapter) Check(ctx context.Context) error { return a.client.Ping(ctx) }

type minioHealthAdapter struct {
	client *minio.Client
}

func (a *minioHealthAdapter) Name() string                    { return "minio" }
func (a *minioHealthAdapter) Check(ctx context.Context) error { return a.client.HealthCheck(ctx) }

// healthCheckers assembles the adapters for whatever infrastructure was
// actually wired.
func healthCheckers(db *postgres.Connection, rc *redis.Client, mc *minio.Client) []handlers.HealthChecker {
	checkers := make([]handlers.HealthChecker, 0, 3)
	if db != nil {
		checkers = append(checkers, &postgresHealthAdapter{conn: db})
	}
	if rc != nil {
		checkers = append(checkers, &redisHealthAdapter{client: rc})
	}
	if mc != nil {
		checkers = append(checkers, &minioHealthAdapter{client: mc})
	}
	return checkers
}
