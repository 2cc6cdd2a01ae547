package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/jobs"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/metrics"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository/postgres"
	"github.com/Marceldinga/TheYoungShallGrow/internal/scheduler"
	"github.com/Marceldinga/TheYoungShallGrow/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'close-settled-loans', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ledger batch runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	fields, err := postgres.ResolveFieldMap(context.Background(), db, cfg.FieldMapping)
	if err != nil {
		logger.Warn("Failed to resolve field mapping, using schema defaults", "error", err)
		fields = postgres.DefaultFieldMap()
	}

	// Initialize Repositories
	store := postgres.NewStore(db, fields)
	m := metrics.New(prometheus.NewRegistry())

	// Initialize Services
	aggregationSvc := service.NewAggregationService(store.Repositories, cfg.Lending.ActiveStatuses, m)
	capacitySvc := service.NewCapacityService(aggregationSvc, cfg.Lending.FoundationCreditRate)

	jobServices := &jobs.Services{
		Loans:    service.NewLoanService(store.Repositories, store, capacitySvc, cfg.Lending, m),
		Rotation: service.NewRotationService(store.Repositories, store, cfg.Rotation, m),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg, m)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.RunOnce(*runOnce); err != nil {
			logger.Error("Job execution failed", "job", *runOnce, "error", err)
			fmt.Printf("Available jobs:\n")
			for _, name := range jobs.JobNames() {
				fmt.Printf("  - %s\n", name)
			}
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
