// Command worker consumes analysis requests from Kafka, analyzes the uploaded
// table fetched from object storage and exports the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/lipinski-analyzer/internal/app"
	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/lipinski-analyzer/internal/interfaces/http"
	"github.com/turtacn/lipinski-analyzer/internal/interfaces/http/handlers"
)

const (
	defaultHealthPort = 8081
	defaultLockTTL    = 10 * time.Minute
	deadLetterSuffix  = ".dlq"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics (0 disables)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *healthPort, logger); err != nil {
		logger.Error("Worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, healthPort int, logger logging.Logger) error {
	if !cfg.Kafka.Enabled || !cfg.MinIO.Enabled {
		return fmt.Errorf("worker requires kafka.enabled and minio.enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, analysis.SourceWorker)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer a.Close()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:     cfg.Kafka.Brokers,
		GroupID:     cfg.Kafka.GroupID,
		Topics:      []string{cfg.Kafka.RequestedTopic},
		StartOffset: cfg.Kafka.StartOffset,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.Kafka.MaxRetries,
			RetryBackoff:    time.Second,
			MaxRetryBackoff: 30 * time.Second,
			DeadLetterTopic: cfg.Kafka.RequestedTopic + deadLetterSuffix,
		},
	}, a.Producer, logger.Named("consumer"))
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer consumer.Close()

	handler := analysis.NewRequestHandler(a.Service, a.Store, a.Locker(),
		cfg.Server.MaxUploadSize, defaultLockTTL, logger)
	consumer.Subscribe(cfg.Kafka.RequestedTopic, kafka.RequestedHandler(handler.Handle, logger))

	var srv *httpserver.Server
	if healthPort > 0 {
		srv = startProbeServer(a, cfg, healthPort, logger)
	}

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("kafka consumer start: %w", err)
	}
	logger.Info("Worker started",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.RequestedTopic),
		logging.String("group", cfg.Kafka.GroupID),
		logging.Bool("dedupe", cfg.Redis.Enabled))

	<-ctx.Done()
	logger.Info("Received shutdown signal",
		logging.Int64("processed", consumer.Processed()),
		logging.Int64("failed", consumer.Failed()),
		logging.Int64("dead_lettered", consumer.DeadLettered()),
		logging.Int64("events_published", a.Producer.Sent()),
		logging.Int64("events_failed", a.Producer.Failed()))

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Probe server shutdown failed", logging.Err(err))
		}
	}
	return nil
}

// startProbeServer serves health probes and metrics; the worker has no API.
func startProbeServer(a *app.App, cfg *config.Config, port int, logger logging.Logger) *httpserver.Server {
	var checkers []handlers.HealthChecker
	for _, c := range a.HealthChecks() {
		checkers = append(checkers, handlers.CheckFunc(c.Name, c.Check))
	}

	rc := httpserver.RouterConfig{HealthHandler: handlers.NewHealthHandler(version, checkers...)}
	if a.Collector != nil {
		rc.MetricsHandler = a.Collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}

	sc := cfg.Server
	sc.Port = port
	srv := httpserver.NewServer(sc, httpserver.NewRouter(rc), logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("Probe server failed", logging.Err(err))
		}
	}()
	return srv
}

//Personal.AI order the ending
