// Command apiserver serves the Lipinski analysis HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/lipinski-analyzer/internal/app"
	"github.com/turtacn/lipinski-analyzer/internal/application/analysis"
	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/lipinski-analyzer/internal/interfaces/http"
	"github.com/turtacn/lipinski-analyzer/internal/interfaces/http/handlers"
	"github.com/turtacn/lipinski-analyzer/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides server.port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("API server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, analysis.SourceHTTP)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer a.Close()

	srv := httpserver.NewServer(cfg.Server, buildRouter(a, cfg, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info("Starting Lipinski API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.Bool("history", a.Runs != nil),
		logging.Bool("export", a.Store != nil),
		logging.Bool("async", a.Store != nil && a.Events != nil),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildRouter(a *app.App, cfg *config.Config, logger logging.Logger) http.Handler {
	opts := []handlers.AnalysisHandlerOption{
		handlers.WithMaxUploadSize(cfg.Server.MaxUploadSize),
		handlers.WithPreviewRows(cfg.Analysis.PreviewRows),
	}
	if a.Store != nil {
		opts = append(opts, handlers.WithExportLinks(a.Store))
		if a.Events != nil {
			opts = append(opts, handlers.WithAsync(a.Store, a.Events))
		}
	}

	var checkers []handlers.HealthChecker
	for _, c := range a.HealthChecks() {
		checkers = append(checkers, handlers.CheckFunc(c.Name, c.Check))
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.CORSOrigins
	}

	rc := httpserver.RouterConfig{
		AnalysisHandler:   handlers.NewAnalysisHandler(a.Service, logger, opts...),
		HealthHandler:     handlers.NewHealthHandler(version, checkers...),
		CORSMiddleware:    middleware.NewCORSMiddleware(cors),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, middleware.DefaultLoggingConfig()),
	}
	if a.Collector != nil {
		rc.MetricsHandler = a.Collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
		rc.RequestRecorder = a.Metrics
	}
	return httpserver.NewRouter(rc)
}

//Personal.AI order the ending
