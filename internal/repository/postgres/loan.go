package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"

	"github.com/lib/pq"
)

var errUnmappedColumn = errors.New("no candidate column exists for this amount")

const loanColumns = `id, borrower_member_id, surety_member_id, principal, interest, total_due, status,
	notes, rejection_reason, created_at, approved_at, issued_at, closed_at, last_interest_at`

type loanRepository struct {
	db     DBTX
	fields FieldMap
}

func NewLoanRepository(db DBTX, fields FieldMap) repository.LoanRepository {
	return &loanRepository{db: db, fields: fields}
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	query := `INSERT INTO loans (borrower_member_id, surety_member_id, principal, interest, total_due, status, notes, created_at, approved_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	logger.DatabaseCall("insert", "loans", "borrower_member_id", l.BorrowerMemberID, "status", l.Status)
	err := r.db.QueryRowContext(ctx, query,
		l.BorrowerMemberID, l.SuretyMemberID, l.Principal, l.Interest, l.TotalDue, l.Status, l.Notes, l.CreatedAt, l.ApprovedAt,
	).Scan(&l.ID)
	return domain.NewStoreError("insert", "loans", err)
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	l, err := scanLoan(r.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr("select", "loans", err)
	}
	return l, nil
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Loan, error) {
	l, err := scanLoan(r.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFoundOr("select", "loans", err)
	}
	return l, nil
}

func (r *loanRepository) List(ctx context.Context, scope domain.Scope, statuses []domain.LoanStatus) ([]domain.Loan, error) {
	var w whereBuilder
	w.scope(scope, "borrower_member_id", "created_at")
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		w.add("status = ANY($%d)", pq.Array(names))
	}
	query := `SELECT ` + loanColumns + ` FROM loans` + w.String() + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, domain.NewStoreError("select", "loans", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan", "loans", err)
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "loans", err)
	}
	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan, expected domain.LoanStatus) (bool, error) {
	query := `UPDATE loans SET status = $1, interest = $2, total_due = $3, rejection_reason = $4,
	          approved_at = $5, issued_at = $6, closed_at = $7, last_interest_at = $8
	          WHERE id = $9 AND status = $10`
	logger.DatabaseCall("update", "loans", "id", l.ID, "from", expected, "to", l.Status)
	res, err := r.db.ExecContext(ctx, query,
		l.Status, l.Interest, l.TotalDue, l.RejectionReason,
		l.ApprovedAt, l.IssuedAt, l.ClosedAt, l.LastInterestAt,
		l.ID, expected,
	)
	if err != nil {
		return false, domain.NewStoreError("update", "loans", err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update", n, err, "table", "loans")
	if err != nil {
		return false, domain.NewStoreError("update", "loans", err)
	}
	return n > 0, nil
}

func (r *loanRepository) HasOpenLoan(ctx context.Context, borrowerID int32) (bool, error) {
	open := make([]string, len(domain.OpenLoanStatuses))
	for i, s := range domain.OpenLoanStatuses {
		open[i] = string(s)
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM loans WHERE borrower_member_id = $1 AND status = ANY($2))`
	if err := r.db.QueryRowContext(ctx, query, borrowerID, pq.Array(open)).Scan(&exists); err != nil {
		return false, domain.NewStoreError("select", "loans", err)
	}
	return exists, nil
}

func (r *loanRepository) CountByStatus(ctx context.Context, scope domain.Scope, statuses []string) (int, error) {
	var w whereBuilder
	w.scope(scope, "borrower_member_id", "created_at")
	w.add("LOWER(status) = ANY($%d)", pq.Array(statuses))
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM loans`+w.String(), w.args...).Scan(&count); err != nil {
		return 0, domain.NewStoreError("count", "loans", err)
	}
	return count, nil
}

func (r *loanRepository) SumTotal(ctx context.Context, scope domain.Scope) (int64, error) {
	if r.fields.LoanTotalColumn == "" {
		return 0, domain.NewStoreError("sum", "loans", errUnmappedColumn)
	}
	var w whereBuilder
	w.scope(scope, "borrower_member_id", "created_at")
	query := `SELECT COALESCE(SUM(` + quoteColumn(r.fields.LoanTotalColumn) + `), 0) FROM loans` + w.String()
	var total int64
	if err := r.db.QueryRowContext(ctx, query, w.args...).Scan(&total); err != nil {
		return 0, domain.NewStoreError("sum", "loans", err)
	}
	return total, nil
}

func scanLoan(row rowScanner) (*domain.Loan, error) {
	var l domain.Loan
	var approvedAt, issuedAt, closedAt, lastInterestAt sql.NullTime
	err := row.Scan(
		&l.ID, &l.BorrowerMemberID, &l.SuretyMemberID, &l.Principal, &l.Interest, &l.TotalDue, &l.Status,
		&l.Notes, &l.RejectionReason, &l.CreatedAt, &approvedAt, &issuedAt, &closedAt, &lastInterestAt,
	)
	if err != nil {
		return nil, err
	}
	l.ApprovedAt = nullTimePtr(approvedAt)
	l.IssuedAt = nullTimePtr(issuedAt)
	l.ClosedAt = nullTimePtr(closedAt)
	l.LastInterestAt = nullTimePtr(lastInterestAt)
	return &l, nil
}
