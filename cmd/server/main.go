package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asakaida/rolegate/internal/handlers"
	"github.com/asakaida/rolegate/internal/infrastructure/config"
	"github.com/asakaida/rolegate/internal/infrastructure/database"
	"github.com/asakaida/rolegate/internal/infrastructure/logging"
	"github.com/asakaida/rolegate/internal/infrastructure/metrics"
	"github.com/asakaida/rolegate/internal/repositories"
	"github.com/asakaida/rolegate/internal/repositories/postgres"
	"github.com/asakaida/rolegate/internal/repositories/sqlite"
	"github.com/asakaida/rolegate/internal/services/authorization"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultEnv      = "dev"
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		hclog.Default().Error("failed to initialize config", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger("rolegate", cfg.Log)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger hclog.Logger) error {
	// Connect to database
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("error closing database connection", "error", err)
		}
	}()
	logger.Info("connected to database", "target", database.Describe(&cfg.Database))

	// SQLite databases are local to the process, so the server owns their schema.
	// PostgreSQL schemas are managed with cmd/migrate.
	if db.Driver == config.DriverSQLite {
		if err := db.RunMigrations(); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector()
	exporter := metrics.NewPrometheusExporter(registry)

	// Services
	repo := newPermissionRepository(db)
	manager := authorization.NewPermissionManagerWithRecorder(repo, logger, metrics.NewDecisionRecorder(collector, exporter))

	// gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(collector, exporter)))
	handlers.RegisterPermissionServer(grpcServer, handlers.NewPermissionHandler(manager, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(handlers.PermissionServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	grpcAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	// HTTP admin server
	httpServer := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: handlers.NewHTTPHandler(manager, db, collector,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", grpcAddr)
		if err := grpcServer.Serve(listener); err != nil {
			serverErrors <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal or server error
	var runErr error
	select {
	case runErr = <-serverErrors:
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	healthServer.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown failed", "error", err)
	}

	// Channel to notify when graceful stop completes
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	// Wait for graceful stop or timeout
	select {
	case <-stopped:
		logger.Info("server stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	}

	return runErr
}

func newPermissionRepository(db *database.Database) repositories.PermissionRepository {
	if db.Driver == config.DriverSQLite {
		return sqlite.NewSQLitePermissionRepository(db.DB)
	}
	return postgres.NewPostgresPermissionRepository(db.DB)
}
