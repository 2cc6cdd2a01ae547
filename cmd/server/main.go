package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	grpcapi "github.com/Marceldinga/TheYoungShallGrow/internal/api/grpc"
	"github.com/Marceldinga/TheYoungShallGrow/internal/api/grpc/interceptor"
	httpapi "github.com/Marceldinga/TheYoungShallGrow/internal/api/http"
	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/metrics"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository/postgres"
	"github.com/Marceldinga/TheYoungShallGrow/internal/security"
	"github.com/Marceldinga/TheYoungShallGrow/internal/service"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting The Young Shall Grow ledger...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Rotation configuration", "group_size", cfg.Rotation.GroupSize, "period_days", cfg.Rotation.PeriodDays, "bounded_window", cfg.Rotation.BoundedWindow)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.RunMigrations {
		logger.Info("Applying database migrations")
		if err := postgres.MigrateUp(cfg.GetDatabaseConnectionString()); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	fields, err := postgres.ResolveFieldMap(context.Background(), db, cfg.FieldMapping)
	if err != nil {
		logger.Warn("Failed to resolve field mapping, using schema defaults", "error", err)
		fields = postgres.DefaultFieldMap()
	}

	// Initialize Repositories
	store := postgres.NewStore(db, fields)

	// Initialize Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize Services
	aggregationSvc := service.NewAggregationService(store.Repositories, cfg.Lending.ActiveStatuses, m)
	capacitySvc := service.NewCapacityService(aggregationSvc, cfg.Lending.FoundationCreditRate)
	memberSvc := service.NewMemberService(store.Members, cfg.Rotation.GroupSize)
	services := httpapi.Services{
		Aggregation: aggregationSvc,
		Capacity:    capacitySvc,
		Rotation:    service.NewRotationService(store.Repositories, store, cfg.Rotation, m),
		Loans:       service.NewLoanService(store.Repositories, store, capacitySvc, cfg.Lending, m),
		Members:     memberSvc,
		Ledger:      service.NewLedgerService(store.Repositories, cfg.Rotation.ActiveKind, cfg.Rotation.SettledKind),
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	auth := httpapi.NewAuthMiddleware(tokenManager, memberSvc, cfg.IsAdminEmail)
	router := httpapi.NewRouter(httpapi.NewHandler(services), auth, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up gRPC health server
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Unary()))
	healthSvc := grpcapi.NewHealthService(store, grpcapi.DefaultPingInterval)
	healthSvc.Register(grpcServer)
	go healthSvc.Run(ctx)

	go func() {
		logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		logger.Error("HTTP server error", "error", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
