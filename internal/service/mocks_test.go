package service

import (
	"context"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockMemberRepo) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) GetByRotationPosition(ctx context.Context, position int32) (*domain.Member, error) {
	args := m.Called(ctx, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) List(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) SetActive(ctx context.Context, id int32, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// MockContributionRepo
type MockContributionRepo struct {
	mock.Mock
}

func (m *MockContributionRepo) Create(ctx context.Context, c *domain.Contribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockContributionRepo) List(ctx context.Context, scope domain.Scope) ([]domain.Contribution, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Contribution), args.Error(1)
}
func (m *MockContributionRepo) Sum(ctx context.Context, scope domain.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockContributionRepo) ListCreatedAfter(ctx context.Context, after time.Time, until *time.Time) ([]domain.Contribution, error) {
	args := m.Called(ctx, after, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contribution), args.Error(1)
}
func (m *MockContributionRepo) MarkSettled(ctx context.Context, ids []int64, settledKind string) (int64, error) {
	args := m.Called(ctx, ids, settledKind)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockContributionRepo) LockForPayout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockFoundationRepo
type MockFoundationRepo struct {
	mock.Mock
}

func (m *MockFoundationRepo) Create(ctx context.Context, p *domain.FoundationPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockFoundationRepo) List(ctx context.Context, scope domain.Scope) ([]domain.FoundationPayment, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.FoundationPayment), args.Error(1)
}
func (m *MockFoundationRepo) Sums(ctx context.Context, scope domain.Scope) (int64, int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockFineRepo
type MockFineRepo struct {
	mock.Mock
}

func (m *MockFineRepo) Create(ctx context.Context, f *domain.Fine) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockFineRepo) List(ctx context.Context, scope domain.Scope) ([]domain.Fine, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Fine), args.Error(1)
}
func (m *MockFineRepo) SumUnpaid(ctx context.Context, scope domain.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) List(ctx context.Context, scope domain.Scope, statuses []domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, scope, statuses)
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.Loan, expected domain.LoanStatus) (bool, error) {
	args := m.Called(ctx, loan, expected)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) HasOpenLoan(ctx context.Context, borrowerID int32) (bool, error) {
	args := m.Called(ctx, borrowerID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) CountByStatus(ctx context.Context, scope domain.Scope, statuses []string) (int, error) {
	args := m.Called(ctx, scope, statuses)
	return args.Int(0), args.Error(1)
}
func (m *MockLoanRepo) SumTotal(ctx context.Context, scope domain.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

// MockRepaymentRepo
type MockRepaymentRepo struct {
	mock.Mock
}

func (m *MockRepaymentRepo) Create(ctx context.Context, r *domain.Repayment) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockRepaymentRepo) ListByLoan(ctx context.Context, loanID int64) ([]domain.Repayment, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).([]domain.Repayment), args.Error(1)
}
func (m *MockRepaymentRepo) SumByLoan(ctx context.Context, loanID int64) (int64, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRepaymentRepo) SumByLoans(ctx context.Context, loanIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, loanIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}
func (m *MockRepaymentRepo) Sum(ctx context.Context, scope domain.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

// MockPayoutRepo
type MockPayoutRepo struct {
	mock.Mock
}

func (m *MockPayoutRepo) Latest(ctx context.Context) (*domain.Payout, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) List(ctx context.Context, scope domain.Scope) ([]domain.Payout, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) CreateReceipt(ctx context.Context, p *domain.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPayoutRepo) ExecuteProcedure(ctx context.Context, a repository.PayoutProcedureArgs) (*domain.PayoutResult, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutResult), args.Error(1)
}

// MockRotationRepo
type MockRotationRepo struct {
	mock.Mock
}

func (m *MockRotationRepo) Get(ctx context.Context) (*domain.RotationState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationState), args.Error(1)
}
func (m *MockRotationRepo) GetForUpdate(ctx context.Context) (*domain.RotationState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationState), args.Error(1)
}
func (m *MockRotationRepo) Advance(ctx context.Context, nextIndex int32, nextDate time.Time, expectedVersion int64) (*domain.RotationState, error) {
	args := m.Called(ctx, nextIndex, nextDate, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationState), args.Error(1)
}

// MockInterestRunRepo
type MockInterestRunRepo struct {
	mock.Mock
}

func (m *MockInterestRunRepo) Create(ctx context.Context, run *domain.InterestRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}
func (m *MockInterestRunRepo) List(ctx context.Context) ([]domain.InterestRun, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InterestRun), args.Error(1)
}

type mockRepos struct {
	members       *MockMemberRepo
	contributions *MockContributionRepo
	foundation    *MockFoundationRepo
	fines         *MockFineRepo
	loans         *MockLoanRepo
	repayments    *MockRepaymentRepo
	payouts       *MockPayoutRepo
	rotation      *MockRotationRepo
	interestRuns  *MockInterestRunRepo
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		members:       new(MockMemberRepo),
		contributions: new(MockContributionRepo),
		foundation:    new(MockFoundationRepo),
		fines:         new(MockFineRepo),
		loans:         new(MockLoanRepo),
		repayments:    new(MockRepaymentRepo),
		payouts:       new(MockPayoutRepo),
		rotation:      new(MockRotationRepo),
		interestRuns:  new(MockInterestRunRepo),
	}
}

func (m *mockRepos) Repositories() repository.Repositories {
	return repository.Repositories{
		Members:       m.members,
		Contributions: m.contributions,
		Foundation:    m.foundation,
		Fines:         m.fines,
		Loans:         m.loans,
		Repayments:    m.repayments,
		Payouts:       m.payouts,
		Rotation:      m.rotation,
		InterestRuns:  m.interestRuns,
	}
}

// fakeTx runs fn against the same mocks. committed is false when fn failed.
type fakeTx struct {
	repos     repository.Repositories
	calls     int
	committed bool
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	f.calls++
	if err := fn(ctx, f.repos); err != nil {
		f.committed = false
		return err
	}
	f.committed = true
	return nil
}
