package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository/postgres"
	"github.com/Marceldinga/TheYoungShallGrow/internal/service"

	_ "github.com/lib/pq"
)

type ledger struct {
	db       *sql.DB
	rotation service.RotationService
	capacity service.CapacityService
	loans    service.LoanService
	members  service.MemberService
}

func (l *ledger) Close() error {
	return l.db.Close()
}

// openLedger connects to the store and builds the services the commands drive.
// Metrics are not collected for one-shot commands.
func openLedger(ctx context.Context, cfg *config.Config) (*ledger, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	fields, err := postgres.ResolveFieldMap(ctx, db, cfg.FieldMapping)
	if err != nil {
		logger.Warn("Failed to resolve field mapping, using schema defaults", "error", err)
		fields = postgres.DefaultFieldMap()
	}
	store := postgres.NewStore(db, fields)

	aggregation := service.NewAggregationService(store.Repositories, cfg.Lending.ActiveStatuses, nil)
	capacity := service.NewCapacityService(aggregation, cfg.Lending.FoundationCreditRate)
	return &ledger{
		db:       db,
		rotation: service.NewRotationService(store.Repositories, store, cfg.Rotation, nil),
		capacity: capacity,
		loans:    service.NewLoanService(store.Repositories, store, capacity, cfg.Lending, nil),
		members:  service.NewMemberService(store.Members, cfg.Rotation.GroupSize),
	}, nil
}
