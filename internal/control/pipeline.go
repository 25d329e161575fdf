// Package control wires the configured queues into running dispatcher
// loops and owns the service lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/worker"
	"github.com/vietddude/requeue/internal/dispatch"
	"github.com/vietddude/requeue/internal/health"
	redisclient "github.com/vietddude/requeue/internal/infra/redis"
	"github.com/vietddude/requeue/internal/infra/storage"
	"github.com/vietddude/requeue/internal/infra/storage/memory"
	"github.com/vietddude/requeue/internal/infra/storage/postgres"
	"github.com/vietddude/requeue/internal/processing"
)

// Pipeline is the main application struct that manages the dispatcher lifecycle.
type Pipeline struct {
	cfg          Config
	dispatchers  map[string]*dispatch.Dispatcher
	pruners      map[string]*worker.Pruner
	healthMon    *health.Monitor
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Port     int
	Queues   []config.QueueConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// NewPipeline creates a new Pipeline instance with all dependencies initialized.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if len(cfg.Queues) == 0 {
		return nil, fmt.Errorf("no queues configured")
	}

	// 1. Broker
	redisClient, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	// 2. Dead letter storage
	var deadRepo storage.DeadLetterRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		deadRepo = postgres.NewDeadLetterRepo(db)
		slog.Info("Using PostgreSQL dead letter storage")
	} else {
		deadRepo = memory.NewDeadLetterRepo()
		slog.Info("Using memory dead letter storage")
	}

	// 3. Per-queue wiring
	dispatchers := make(map[string]*dispatch.Dispatcher)
	pruners := make(map[string]*worker.Pruner)
	statsProviders := make(map[string]health.StatsProvider)
	queueNames := make([]string, 0, len(cfg.Queues))

	for _, queueCfg := range cfg.Queues {
		// Strategy construction failure is a misconfiguration and halts
		// startup for the whole service.
		strategy, err := processing.NewStrategy(queueCfg.Name, queueCfg.Ack)
		if err != nil {
			return nil, fmt.Errorf("queue %q: %w", queueCfg.Name, err)
		}

		handler, err := dispatch.NewHandler(queueCfg.Handler)
		if err != nil {
			return nil, fmt.Errorf("queue %q: %w", queueCfg.Name, err)
		}

		d := dispatch.New(queueCfg, redisClient, handler, strategy, deadRepo)
		dispatchers[queueCfg.Name] = d
		statsProviders[queueCfg.Name] = d
		queueNames = append(queueNames, queueCfg.Name)

		if queueCfg.RetentionPeriod > 0 {
			pruners[queueCfg.Name] = worker.NewPruner(queueCfg, deadRepo)
		}

		slog.Info("Queue configured",
			"queue", queueCfg.Name,
			"ack", queueCfg.Ack.Type,
			"handler", queueCfg.Handler.Type)
	}

	// 4. Health
	healthMon := health.NewMonitor(queueNames, redisClient, deadRepo, statsProviders)
	healthServer := health.NewServer(healthMon, cfg.Port)

	return &Pipeline{
		cfg:          cfg,
		dispatchers:  dispatchers,
		pruners:      pruners,
		healthMon:    healthMon,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          slog.Default(),
	}, nil
}

// Start starts the pipeline and all its components.
func (p *Pipeline) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := p.healthServer.Start(); err != nil {
			p.log.Error("Health server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if p.db != nil {
		p.db.StartMetricsCollector(ctx)
	}

	// Start Dispatchers
	for name, d := range p.dispatchers {
		p.log.Info("Starting dispatcher", "queue", name)
		go func(name string, d *dispatch.Dispatcher) {
			if err := d.Run(ctx); err != nil && ctx.Err() == nil {
				p.log.Error("Dispatcher failed", "queue", name, "error", err)
			}
		}(name, d)
	}

	// Start Pruners
	for name, pr := range p.pruners {
		p.log.Info("Starting pruner", "queue", name)
		go pr.Start(ctx)
	}

	return nil
}

// Stop stops the pipeline.
func (p *Pipeline) Stop(ctx context.Context) error {
	p.log.Info("Stopping pipeline...")

	if err := p.redisClient.Close(); err != nil {
		p.log.Warn("Failed to close Redis", "error", err)
	}

	if p.db != nil {
		if err := p.db.Close(); err != nil {
			p.log.Warn("Failed to close database", "error", err)
		}
	}

	return p.healthServer.Stop(ctx)
}
