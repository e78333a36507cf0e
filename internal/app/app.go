// Package app wires the enabled infrastructure of a Config into an analysis
// service. The CLI, API server and worker build their process around an App.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/chem"
	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/database/postgres"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/database/redis"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/storage/minio"
)

// HealthCheck is one dependency probe for the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// App holds the process-wide components. Fields of disabled sections are nil.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AnalysisMetrics

	DB       *postgres.Connection
	Runs     compound.RunRepository
	Redis    *redis.Client
	Store    *minio.ReportStore
	Producer *kafka.Producer
	Events   *kafka.EventPublisher

	Service analysis.Service

	checks  []HealthCheck
	closers []func() error
}

// New connects every enabled dependency of cfg and builds the service.
// source labels emitted events. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, source string) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &App{Config: cfg, Logger: logger}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	var err error

	if cfg.Metrics.Enabled {
		a.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger.Named("metrics"))
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.Metrics = prometheus.NewAnalysisMetrics(a.Collector)
	}

	if cfg.Database.Enabled {
		if err = a.openDatabase(ctx); err != nil {
			return nil, err
		}
	}

	var engine compound.DescriptorEngine = chem.NewEngine()
	if cfg.Redis.Enabled {
		a.Redis, err = redis.NewClient(ctx, cfg.Redis, logger.Named("redis"))
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, a.Redis.Close)
		a.checks = append(a.checks, HealthCheck{Name: "redis", Check: a.Redis.Ping})

		cache := redis.NewRedisCache(a.Redis, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithOperationTimeout(redis.DescriptorLookupTimeout))
		opts := []redis.DescriptorCacheOption{redis.WithDescriptorTTL(cfg.Redis.DescriptorTTL)}
		if a.Metrics != nil {
			opts = append(opts, redis.WithCacheObserver(a.Metrics))
		}
		engine = redis.NewDescriptorCache(engine, cache, logger, opts...)
	}

	if cfg.MinIO.Enabled {
		api, err := minio.NewObjectAPI(ctx, cfg.MinIO, logger.Named("minio"))
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		a.Store = minio.NewReportStore(api, cfg.MinIO.Bucket, cfg.MinIO.PresignExpiry, logger)
		a.checks = append(a.checks, HealthCheck{Name: "minio", Check: a.Store.HealthCheck})
	}

	if cfg.Kafka.Enabled {
		a.Producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Acks:         "all",
			MaxRetries:   cfg.Kafka.MaxRetries,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, logger.Named("kafka"))
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		a.closers = append(a.closers, a.Producer.Close)
		a.Events = kafka.NewEventPublisher(a.Producer, cfg.Kafka, source)
	}

	analyzer := compound.NewCompoundAnalyzer(chem.NewParser(), engine, logger,
		compound.WithConcurrency(cfg.Analysis.Concurrency))
	a.Service = analysis.NewService(analyzer, logger, a.serviceOptions()...)
	ready = true
	return a, nil
}

func (a *App) openDatabase(ctx context.Context) error {
	conn, err := postgres.NewConnection(ctx, a.Config.Database, a.Logger.Named("postgres"))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	a.DB = conn
	a.closers = append(a.closers, conn.Close)
	a.checks = append(a.checks, HealthCheck{Name: "postgres", Check: conn.HealthCheck})

	if a.Config.Database.AutoMigrate {
		if err := postgres.NewMigrator(conn, a.Logger).Up(); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	a.Runs = repositories.NewPostgresRunRepo(conn, a.Logger)
	return nil
}

// serviceOptions passes only the enabled dependencies, so the service never
// holds a typed nil.
func (a *App) serviceOptions() []analysis.Option {
	cfg := a.Config
	opts := []analysis.Option{
		analysis.WithMaxRows(cfg.Analysis.MaxRows),
		analysis.WithTimeout(cfg.Analysis.Timeout),
	}
	if a.Runs != nil {
		opts = append(opts, analysis.WithRunRepository(a.Runs))
	}
	if a.Store != nil {
		opts = append(opts, analysis.WithExporter(a.Store))
	}
	if a.Events != nil {
		opts = append(opts, analysis.WithPublisher(a.Events, cfg.Kafka.CompletedTopic))
	}
	if a.Metrics != nil {
		opts = append(opts, analysis.WithMetrics(a.Metrics))
	}
	return opts
}

// HealthChecks lists a probe per connected dependency.
func (a *App) HealthChecks() []HealthCheck { return a.checks }

// Locker returns a Redis-backed lock for deduplicating redelivered requests,
// or nil when Redis is disabled.
func (a *App) Locker() analysis.Locker {
	if a.Redis == nil {
		return nil
	}
	return lockerAdapter{redis.NewLocker(a.Redis, a.Config.Redis.KeyPrefix, a.Logger)}
}

// Close releases every opened dependency in reverse order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// lockerAdapter narrows *redis.Lock to analysis.Lock without leaking a typed
// nil when the lock is not acquired.
type lockerAdapter struct {
	locker *redis.Locker
}

func (l lockerAdapter) TryLock(ctx context.Context, name string, ttl time.Duration) (analysis.Lock, bool, error) {
	lock, ok, err := l.locker.TryLock(ctx, name, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return lock, true, nil
}

//Personal.AI order the ending
