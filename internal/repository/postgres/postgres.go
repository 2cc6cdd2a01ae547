package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db     *sql.DB
	fields FieldMap
	repository.Repositories
}

func NewStore(db *sql.DB, fields FieldMap) *Store {
	return &Store{
		db:           db,
		fields:       fields,
		Repositories: newRepositories(db, fields),
	}
}

func newRepositories(q DBTX, fields FieldMap) repository.Repositories {
	return repository.Repositories{
		Members:       NewMemberRepository(q),
		Contributions: NewContributionRepository(q),
		Foundation:    NewFoundationRepository(q),
		Fines:         NewFineRepository(q),
		Loans:         NewLoanRepository(q, fields),
		Repayments:    NewRepaymentRepository(q, fields),
		Payouts:       NewPayoutRepository(q),
		Rotation:      NewRotationRepository(q),
		InterestRuns:  NewInterestRunRepository(q),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin", "transaction", err)
	}

	if err := fn(ctx, newRepositories(tx, s.fields)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit", "transaction", err)
	}
	return nil
}

// whereBuilder collects positional conditions. Each condition carries one %d verb
// for its placeholder index, or none when it takes no argument.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) scope(s domain.Scope, memberCol, timeCol string) {
	if s.MemberID != nil {
		w.add(memberCol+" = $%d", *s.MemberID)
	}
	if s.Since != nil && timeCol != "" {
		w.add(timeCol+" >= $%d", *s.Since)
	}
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func notFoundOr(op, table string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return domain.NewStoreError(op, table, err)
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
