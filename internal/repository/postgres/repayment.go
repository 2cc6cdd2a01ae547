package postgres

import (
	"context"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"

	"github.com/lib/pq"
)

type repaymentRepository struct {
	db     DBTX
	fields FieldMap
}

func NewRepaymentRepository(db DBTX, fields FieldMap) repository.RepaymentRepository {
	return &repaymentRepository{db: db, fields: fields}
}

func (r *repaymentRepository) Create(ctx context.Context, rp *domain.Repayment) error {
	query := `INSERT INTO repayments (loan_id, member_id, amount_paid, paid_at, notes)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	logger.DatabaseCall("insert", "repayments", "loan_id", rp.LoanID, "amount_paid", rp.AmountPaid)
	err := r.db.QueryRowContext(ctx, query, rp.LoanID, rp.MemberID, rp.AmountPaid, rp.PaidAt, rp.Notes).Scan(&rp.ID)
	return domain.NewStoreError("insert", "repayments", err)
}

func (r *repaymentRepository) ListByLoan(ctx context.Context, loanID int64) ([]domain.Repayment, error) {
	query := `SELECT id, loan_id, member_id, amount_paid, paid_at, notes FROM repayments WHERE loan_id = $1 ORDER BY paid_at, id`
	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, domain.NewStoreError("select", "repayments", err)
	}
	defer rows.Close()

	var out []domain.Repayment
	for rows.Next() {
		var rp domain.Repayment
		if err := rows.Scan(&rp.ID, &rp.LoanID, &rp.MemberID, &rp.AmountPaid, &rp.PaidAt, &rp.Notes); err != nil {
			return nil, domain.NewStoreError("scan", "repayments", err)
		}
		out = append(out, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "repayments", err)
	}
	return out, nil
}

func (r *repaymentRepository) SumByLoan(ctx context.Context, loanID int64) (int64, error) {
	if r.fields.RepaymentAmountColumn == "" {
		return 0, domain.NewStoreError("sum", "repayments", errUnmappedColumn)
	}
	query := `SELECT COALESCE(SUM(` + quoteColumn(r.fields.RepaymentAmountColumn) + `), 0) FROM repayments WHERE loan_id = $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, query, loanID).Scan(&total); err != nil {
		return 0, domain.NewStoreError("sum", "repayments", err)
	}
	return total, nil
}

// SumByLoans returns the repaid total per loan id. Loans without repayments are
// absent from the map.
func (r *repaymentRepository) SumByLoans(ctx context.Context, loanIDs []int64) (map[int64]int64, error) {
	totals := make(map[int64]int64)
	if len(loanIDs) == 0 {
		return totals, nil
	}
	if r.fields.RepaymentAmountColumn == "" {
		return nil, domain.NewStoreError("sum", "repayments", errUnmappedColumn)
	}
	query := `SELECT loan_id, COALESCE(SUM(` + quoteColumn(r.fields.RepaymentAmountColumn) + `), 0)
	          FROM repayments WHERE loan_id = ANY($1) GROUP BY loan_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(loanIDs))
	if err != nil {
		return nil, domain.NewStoreError("sum", "repayments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, domain.NewStoreError("scan", "repayments", err)
		}
		totals[id] = total
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("sum", "repayments", err)
	}
	return totals, nil
}

func (r *repaymentRepository) Sum(ctx context.Context, scope domain.Scope) (int64, error) {
	if r.fields.RepaymentAmountColumn == "" {
		return 0, domain.NewStoreError("sum", "repayments", errUnmappedColumn)
	}
	var w whereBuilder
	w.scope(scope, "member_id", "paid_at")
	query := `SELECT COALESCE(SUM(` + quoteColumn(r.fields.RepaymentAmountColumn) + `), 0) FROM repayments` + w.String()
	var total int64
	if err := r.db.QueryRowContext(ctx, query, w.args...).Scan(&total); err != nil {
		return 0, domain.NewStoreError("sum", "repayments", err)
	}
	return total, nil
}
