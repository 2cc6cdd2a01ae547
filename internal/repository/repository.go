package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
)

// ErrProcedureMissing is returned when the configured payout procedure does not exist
// in the database.
var ErrProcedureMissing = errors.New("payout procedure is not installed")

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetByRotationPosition(ctx context.Context, position int32) (*domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
	SetActive(ctx context.Context, id int32, active bool) error
}

type ContributionRepository interface {
	Create(ctx context.Context, c *domain.Contribution) error
	List(ctx context.Context, scope domain.Scope) ([]domain.Contribution, error)
	Sum(ctx context.Context, scope domain.Scope) (int64, error)

	// ListCreatedAfter returns contributions with created_at strictly after the
	// given time and, when until is set, at or before it.
	ListCreatedAfter(ctx context.Context, after time.Time, until *time.Time) ([]domain.Contribution, error)
	MarkSettled(ctx context.Context, ids []int64, settledKind string) (int64, error)

	// LockForPayout blocks new contributions until the surrounding transaction
	// ends. Only valid inside a transaction.
	LockForPayout(ctx context.Context) error
}

type FoundationRepository interface {
	Create(ctx context.Context, p *domain.FoundationPayment) error
	List(ctx context.Context, scope domain.Scope) ([]domain.FoundationPayment, error)
	Sums(ctx context.Context, scope domain.Scope) (paid int64, pending int64, err error)
}

type FineRepository interface {
	Create(ctx context.Context, f *domain.Fine) error
	List(ctx context.Context, scope domain.Scope) ([]domain.Fine, error)
	SumUnpaid(ctx context.Context, scope domain.Scope) (int64, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Loan, error)
	List(ctx context.Context, scope domain.Scope, statuses []domain.LoanStatus) ([]domain.Loan, error)

	// Update writes the mutable fields of the loan only if its stored status is still
	// expected. It reports false when no row matched.
	Update(ctx context.Context, loan *domain.Loan, expected domain.LoanStatus) (bool, error)

	HasOpenLoan(ctx context.Context, borrowerID int32) (bool, error)
	CountByStatus(ctx context.Context, scope domain.Scope, statuses []string) (int, error)
	SumTotal(ctx context.Context, scope domain.Scope) (int64, error)
}

type RepaymentRepository interface {
	Create(ctx context.Context, r *domain.Repayment) error
	ListByLoan(ctx context.Context, loanID int64) ([]domain.Repayment, error)
	SumByLoan(ctx context.Context, loanID int64) (int64, error)
	SumByLoans(ctx context.Context, loanIDs []int64) (map[int64]int64, error)
	Sum(ctx context.Context, scope domain.Scope) (int64, error)
}

// PayoutProcedureArgs are passed to the server-side payout procedure.
type PayoutProcedureArgs struct {
	Name        string
	GroupSize   int32
	PeriodDays  int
	SeasonStart time.Time
	SettledKind string
	Bounded     bool
	ReceiptRef  string
}

type PayoutRepository interface {
	// Latest returns nil without error when nothing has been paid out yet.
	Latest(ctx context.Context) (*domain.Payout, error)
	List(ctx context.Context, scope domain.Scope) ([]domain.Payout, error)

	// CreateReceipt inserts the payout row inside a savepoint. On failure only the
	// savepoint is rolled back and the enclosing transaction stays usable. Must be
	// called within a transaction.
	CreateReceipt(ctx context.Context, p *domain.Payout) error

	ExecuteProcedure(ctx context.Context, args PayoutProcedureArgs) (*domain.PayoutResult, error)
}

type RotationRepository interface {
	Get(ctx context.Context) (*domain.RotationState, error)
	GetForUpdate(ctx context.Context) (*domain.RotationState, error)

	// Advance moves the pointer if the stored version still equals expectedVersion,
	// otherwise it returns domain.ErrRotationConflict.
	Advance(ctx context.Context, nextIndex int32, nextDate time.Time, expectedVersion int64) (*domain.RotationState, error)
}

type InterestRunRepository interface {
	Create(ctx context.Context, run *domain.InterestRun) error
	List(ctx context.Context) ([]domain.InterestRun, error)
}

// Repositories groups every ledger table accessor bound to one connection or transaction.
type Repositories struct {
	Members       MemberRepository
	Contributions ContributionRepository
	Foundation    FoundationRepository
	Fines         FineRepository
	Loans         LoanRepository
	Repayments    RepaymentRepository
	Payouts       PayoutRepository
	Rotation      RotationRepository
	InterestRuns  InterestRunRepository
}

// Transactor runs fn inside a single store transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Pinger reports store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
