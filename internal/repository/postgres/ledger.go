package postgres

import (
	"context"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"

	"github.com/lib/pq"
)

type contributionRepository struct {
	db DBTX
}

func NewContributionRepository(db DBTX) repository.ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(ctx context.Context, c *domain.Contribution) error {
	query := `INSERT INTO contributions (member_id, amount, kind, notes)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	logger.DatabaseCall("insert", "contributions", "member_id", c.MemberID, "amount", c.Amount)
	err := r.db.QueryRowContext(ctx, query, c.MemberID, c.Amount, c.Kind, c.Notes).Scan(&c.ID, &c.CreatedAt)
	return domain.NewStoreError("insert", "contributions", err)
}

func (r *contributionRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Contribution, error) {
	var w whereBuilder
	w.scope(scope, "member_id", "created_at")
	query := `SELECT id, member_id, amount, kind, notes, created_at FROM contributions` + w.String() + ` ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, w.args...)
}

func (r *contributionRepository) Sum(ctx context.Context, scope domain.Scope) (int64, error) {
	var w whereBuilder
	w.scope(scope, "member_id", "created_at")
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM contributions`+w.String(), w.args...).Scan(&total)
	if err != nil {
		return 0, domain.NewStoreError("sum", "contributions", err)
	}
	return total, nil
}

func (r *contributionRepository) ListCreatedAfter(ctx context.Context, after time.Time, until *time.Time) ([]domain.Contribution, error) {
	var w whereBuilder
	w.add("created_at > $%d", after)
	if until != nil {
		w.add("created_at <= $%d", *until)
	}
	query := `SELECT id, member_id, amount, kind, notes, created_at FROM contributions` + w.String() + ` ORDER BY created_at, id`
	return r.query(ctx, query, w.args...)
}

func (r *contributionRepository) LockForPayout(ctx context.Context) error {
	logger.DatabaseCall("lock", "contributions")
	if _, err := r.db.ExecContext(ctx, `LOCK TABLE contributions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return domain.NewStoreError("lock", "contributions", err)
	}
	return nil
}

func (r *contributionRepository) MarkSettled(ctx context.Context, ids []int64, settledKind string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE contributions SET kind = $1 WHERE id = ANY($2) AND kind <> $1`
	logger.DatabaseCall("update", query, "rows", len(ids))
	res, err := r.db.ExecContext(ctx, query, settledKind, pq.Array(ids))
	if err != nil {
		return 0, domain.NewStoreError("update", "contributions", err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update", n, err, "table", "contributions")
	if err != nil {
		return 0, domain.NewStoreError("update", "contributions", err)
	}
	return n, nil
}

func (r *contributionRepository) query(ctx context.Context, query string, args ...any) ([]domain.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError("select", "contributions", err)
	}
	defer rows.Close()

	var out []domain.Contribution
	for rows.Next() {
		var c domain.Contribution
		if err := rows.Scan(&c.ID, &c.MemberID, &c.Amount, &c.Kind, &c.Notes, &c.CreatedAt); err != nil {
			return nil, domain.NewStoreError("scan", "contributions", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "contributions", err)
	}
	return out, nil
}

type foundationRepository struct {
	db DBTX
}

func NewFoundationRepository(db DBTX) repository.FoundationRepository {
	return &foundationRepository{db: db}
}

func (r *foundationRepository) Create(ctx context.Context, p *domain.FoundationPayment) error {
	query := `INSERT INTO foundation_payments (member_id, amount_paid, amount_pending, status, date_paid, notes)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("insert", "foundation_payments", "member_id", p.MemberID)
	err := r.db.QueryRowContext(ctx, query, p.MemberID, p.AmountPaid, p.AmountPending, p.Status, p.DatePaid, p.Notes).Scan(&p.ID)
	return domain.NewStoreError("insert", "foundation_payments", err)
}

func (r *foundationRepository) List(ctx context.Context, scope domain.Scope) ([]domain.FoundationPayment, error) {
	var w whereBuilder
	w.scope(scope, "member_id", "date_paid")
	query := `SELECT id, member_id, amount_paid, amount_pending, status, date_paid, notes
	          FROM foundation_payments` + w.String() + ` ORDER BY date_paid DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, domain.NewStoreError("select", "foundation_payments", err)
	}
	defer rows.Close()

	var out []domain.FoundationPayment
	for rows.Next() {
		var p domain.FoundationPayment
		if err := rows.Scan(&p.ID, &p.MemberID, &p.AmountPaid, &p.AmountPending, &p.Status, &p.DatePaid, &p.Notes); err != nil {
			return nil, domain.NewStoreError("scan", "foundation_payments", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "foundation_payments", err)
	}
	return out, nil
}

func (r *foundationRepository) Sums(ctx context.Context, scope domain.Scope) (int64, int64, error) {
	var w whereBuilder
	w.scope(scope, "member_id", "date_paid")
	query := `SELECT COALESCE(SUM(amount_paid), 0), COALESCE(SUM(amount_pending), 0) FROM foundation_payments` + w.String()
	var paid, pending int64
	if err := r.db.QueryRowContext(ctx, query, w.args...).Scan(&paid, &pending); err != nil {
		return 0, 0, domain.NewStoreError("sum", "foundation_payments", err)
	}
	return paid, pending, nil
}

type fineRepository struct {
	db DBTX
}

func NewFineRepository(db DBTX) repository.FineRepository {
	return &fineRepository{db: db}
}

func (r *fineRepository) Create(ctx context.Context, f *domain.Fine) error {
	query := `INSERT INTO fines (member_id, amount, reason, status)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	logger.DatabaseCall("insert", "fines", "member_id", f.MemberID)
	err := r.db.QueryRowContext(ctx, query, f.MemberID, f.Amount, f.Reason, f.Status).Scan(&f.ID, &f.CreatedAt)
	return domain.NewStoreError("insert", "fines", err)
}

func (r *fineRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Fine, error) {
	var w whereBuilder
	w.scope(scope, "member_id", "created_at")
	query := `SELECT id, member_id, amount, reason, status, created_at FROM fines` + w.String() + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, domain.NewStoreError("select", "fines", err)
	}
	defer rows.Close()

	var out []domain.Fine
	for rows.Next() {
		var f domain.Fine
		if err := rows.Scan(&f.ID, &f.MemberID, &f.Amount, &f.Reason, &f.Status, &f.CreatedAt); err != nil {
			return nil, domain.NewStoreError("scan", "fines", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "fines", err)
	}
	return out, nil
}

func (r *fineRepository) SumUnpaid(ctx context.Context, scope domain.Scope) (int64, error) {
	var w whereBuilder
	w.add("status = $%d", domain.FineStatusUnpaid)
	w.scope(scope, "member_id", "created_at")
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM fines`+w.String(), w.args...).Scan(&total); err != nil {
		return 0, domain.NewStoreError("sum", "fines", err)
	}
	return total, nil
}
