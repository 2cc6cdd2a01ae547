package http

import (
	"context"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockAggregationService
type MockAggregationService struct {
	mock.Mock
}

func (m *MockAggregationService) MemberTotals(ctx context.Context, scope domain.Scope) domain.Totals {
	args := m.Called(ctx, scope)
	return args.Get(0).(domain.Totals)
}

// MockCapacityService
type MockCapacityService struct {
	mock.Mock
}

func (m *MockCapacityService) Capacity(ctx context.Context, memberID int32) domain.Capacity {
	args := m.Called(ctx, memberID)
	return args.Get(0).(domain.Capacity)
}

// MockRotationService
type MockRotationService struct {
	mock.Mock
}

func (m *MockRotationService) CurrentWindow(ctx context.Context) domain.RotationWindow {
	args := m.Called(ctx)
	return args.Get(0).(domain.RotationWindow)
}
func (m *MockRotationService) RotationStatus(ctx context.Context) domain.RotationStatus {
	args := m.Called(ctx)
	return args.Get(0).(domain.RotationStatus)
}
func (m *MockRotationService) ExecutePayout(ctx context.Context) (*domain.PayoutResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutResult), args.Error(1)
}

// MockLoanService
type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) loan(args mock.Arguments) (*domain.Loan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) CheckEligibility(ctx context.Context, borrowerID, suretyID int32, amount int64) (*domain.EligibilityDecision, error) {
	args := m.Called(ctx, borrowerID, suretyID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EligibilityDecision), args.Error(1)
}
func (m *MockLoanService) RequestLoan(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, req))
}
func (m *MockLoanService) CreateLoanAsAdmin(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, req))
}
func (m *MockLoanService) Approve(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID))
}
func (m *MockLoanService) Reject(ctx context.Context, loanID int64, reason string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, reason))
}
func (m *MockLoanService) Issue(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID))
}
func (m *MockLoanService) Close(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID))
}
func (m *MockLoanService) RecordRepayment(ctx context.Context, loanID int64, amount int64, notes string) (*domain.LoanBalance, error) {
	args := m.Called(ctx, loanID, amount, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanBalance), args.Error(1)
}
func (m *MockLoanService) Balance(ctx context.Context, loanID int64) (*domain.LoanBalance, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanBalance), args.Error(1)
}
func (m *MockLoanService) ListLoans(ctx context.Context, scope domain.Scope) ([]domain.LoanBalance, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.LoanBalance), args.Error(1)
}
func (m *MockLoanService) ListRepayments(ctx context.Context, loanID int64) ([]domain.Repayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repayment), args.Error(1)
}
func (m *MockLoanService) ListInterestRuns(ctx context.Context) ([]domain.InterestRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InterestRun), args.Error(1)
}
func (m *MockLoanService) AccrueMonthlyInterest(ctx context.Context) (*domain.InterestRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterestRun), args.Error(1)
}
func (m *MockLoanService) CloseSettledLoans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockMemberService
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) AddMember(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockMemberService) Deactivate(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockMemberService) Get(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberService) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberService) List(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Member), args.Error(1)
}

// MockLedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AddContribution(ctx context.Context, c *domain.Contribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockLedgerService) AddFoundationPayment(ctx context.Context, p *domain.FoundationPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockLedgerService) AddFine(ctx context.Context, f *domain.Fine) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockLedgerService) ListContributions(ctx context.Context, scope domain.Scope) ([]domain.Contribution, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Contribution), args.Error(1)
}
func (m *MockLedgerService) ListFoundationPayments(ctx context.Context, scope domain.Scope) ([]domain.FoundationPayment, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.FoundationPayment), args.Error(1)
}
func (m *MockLedgerService) ListFines(ctx context.Context, scope domain.Scope) ([]domain.Fine, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Fine), args.Error(1)
}
func (m *MockLedgerService) ListPayouts(ctx context.Context, scope domain.Scope) ([]domain.Payout, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Payout), args.Error(1)
}
func (m *MockLedgerService) LastPayout(ctx context.Context) (*domain.Payout, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
