package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"

	"github.com/lib/pq"
)

const payoutColumns = `id, member_id, member_name, payout_amount, payout_date, receipt_ref, created_at`

// SQLSTATE codes raised by record_payout_and_rotate_next.
const (
	pqUndefinedFunction = "42883"
	pqZeroPot           = "NJ001"
	pqNoBeneficiary     = "NJ002"
)

type payoutRepository struct {
	db DBTX
}

func NewPayoutRepository(db DBTX) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Latest(ctx context.Context) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts ORDER BY created_at DESC, id DESC LIMIT 1`
	p, err := scanPayout(r.db.QueryRowContext(ctx, query))
	if err != nil {
		err = notFoundOr("select", "payouts", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *payoutRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Payout, error) {
	var w whereBuilder
	w.scope(scope, "member_id", "created_at")
	query := `SELECT ` + payoutColumns + ` FROM payouts` + w.String() + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, domain.NewStoreError("select", "payouts", err)
	}
	defer rows.Close()

	var out []domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan", "payouts", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("select", "payouts", err)
	}
	return out, nil
}

func (r *payoutRepository) CreateReceipt(ctx context.Context, p *domain.Payout) error {
	if _, err := r.db.ExecContext(ctx, `SAVEPOINT payout_receipt`); err != nil {
		return domain.NewStoreError("savepoint", "payouts", err)
	}

	// created_at is the next window's anchor and must come from the same clock
	// as contribution timestamps.
	query := `INSERT INTO payouts (member_id, member_name, payout_amount, payout_date, receipt_ref, created_at)
	          VALUES ($1, $2, $3, $4, $5, clock_timestamp()) RETURNING id, created_at`
	logger.DatabaseCall("insert", "payouts", "member_id", p.MemberID, "amount", p.PayoutAmount)
	err := r.db.QueryRowContext(ctx, query,
		p.MemberID, p.MemberName, p.PayoutAmount, p.PayoutDate, p.ReceiptRef,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if _, rbErr := r.db.ExecContext(ctx, `ROLLBACK TO SAVEPOINT payout_receipt`); rbErr != nil {
			return domain.NewStoreError("rollback savepoint", "payouts", fmt.Errorf("%v (after %w)", rbErr, err))
		}
		return domain.NewStoreError("insert", "payouts", err)
	}

	if _, err := r.db.ExecContext(ctx, `RELEASE SAVEPOINT payout_receipt`); err != nil {
		return domain.NewStoreError("release savepoint", "payouts", err)
	}
	return nil
}

func (r *payoutRepository) ExecuteProcedure(ctx context.Context, args repository.PayoutProcedureArgs) (*domain.PayoutResult, error) {
	query := `SELECT * FROM ` + pq.QuoteIdentifier(args.Name) + `($1, $2, $3, $4, $5, $6)`
	logger.DatabaseCall("call", args.Name, "receipt_ref", args.ReceiptRef)

	var res domain.PayoutResult
	err := r.db.QueryRowContext(ctx, query,
		args.GroupSize, args.PeriodDays, args.SeasonStart, args.SettledKind, args.Bounded, args.ReceiptRef,
	).Scan(
		&res.Payout.ID, &res.Payout.MemberID, &res.Payout.MemberName, &res.Payout.PayoutAmount,
		&res.Payout.PayoutDate, &res.Payout.CreatedAt, &res.PreviousIndex, &res.NextIndex,
		&res.NextPayoutDate, &res.SettledContributions,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch string(pqErr.Code) {
			case pqUndefinedFunction:
				return nil, repository.ErrProcedureMissing
			case pqZeroPot:
				return nil, domain.NewValidationError(domain.RuleZeroPot, "pot is empty, nothing to pay out")
			case pqNoBeneficiary:
				return nil, domain.NewValidationError(domain.RuleNoBeneficiary, pqErr.Message)
			}
		}
		return nil, domain.NewStoreError("call", args.Name, err)
	}

	res.Payout.ReceiptRef = args.ReceiptRef
	res.Beneficiary = domain.Member{ID: res.Payout.MemberID, Name: res.Payout.MemberName}
	res.ReceiptRecorded = true
	res.ViaProcedure = true
	return &res, nil
}

func scanPayout(row rowScanner) (*domain.Payout, error) {
	var p domain.Payout
	if err := row.Scan(&p.ID, &p.MemberID, &p.MemberName, &p.PayoutAmount, &p.PayoutDate, &p.ReceiptRef, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
