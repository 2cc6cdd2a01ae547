package postgres

import (
	"context"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
)

type interestRunRepository struct {
	db DBTX
}

func NewInterestRunRepository(db DBTX) repository.InterestRunRepository {
	return &interestRunRepository{db: db}
}

func (r *interestRunRepository) Create(ctx context.Context, run *domain.InterestRun) error {
	query := `INSERT INTO interest_runs (run_month, loans_affected, interest_total)
	          VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, run.RunMonth, run.LoansAffected, run.InterestTotal).Scan(&run.ID, &run.CreatedAt)
	return domain.NewStoreError("insert", "interest_runs", err)
}

func (r *interestRunRepository) List(ctx context.Context) ([]domain.InterestRun, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, run_month, loans_affected, interest_total, created_at FROM interest_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.NewStoreError("select", "interest_runs", err)
	}
	defer rows.Close()

	var runs []domain.InterestRun
	for rows.Next() {
		var run domain.InterestRun
		if err := rows.Scan(&run.ID, &run.RunMonth, &run.LoansAffected, &run.InterestTotal, &run.CreatedAt); err != nil {
			return nil, domain.NewStoreError("scan", "interest_runs", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "interest_runs", err)
	}
	return runs, nil
}
