package service

import (
	"context"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
)

type AggregationService interface {
	// MemberTotals never fails; unreadable tables contribute zero and are listed in Degraded.
	MemberTotals(ctx context.Context, scope domain.Scope) domain.Totals
}

type CapacityService interface {
	Capacity(ctx context.Context, memberID int32) domain.Capacity
}

type RotationService interface {
	CurrentWindow(ctx context.Context) domain.RotationWindow
	RotationStatus(ctx context.Context) domain.RotationStatus
	ExecutePayout(ctx context.Context) (*domain.PayoutResult, error)
}

type LoanService interface {
	CheckEligibility(ctx context.Context, borrowerID, suretyID int32, amount int64) (*domain.EligibilityDecision, error)
	RequestLoan(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error)
	CreateLoanAsAdmin(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error)
	Approve(ctx context.Context, loanID int64) (*domain.Loan, error)
	Reject(ctx context.Context, loanID int64, reason string) (*domain.Loan, error)
	Issue(ctx context.Context, loanID int64) (*domain.Loan, error)
	Close(ctx context.Context, loanID int64) (*domain.Loan, error)
	RecordRepayment(ctx context.Context, loanID int64, amount int64, notes string) (*domain.LoanBalance, error)
	Balance(ctx context.Context, loanID int64) (*domain.LoanBalance, error)
	ListLoans(ctx context.Context, scope domain.Scope) ([]domain.LoanBalance, error)
	ListRepayments(ctx context.Context, loanID int64) ([]domain.Repayment, error)
	AccrueMonthlyInterest(ctx context.Context) (*domain.InterestRun, error)
	ListInterestRuns(ctx context.Context) ([]domain.InterestRun, error)
	CloseSettledLoans(ctx context.Context) (int, error)
}

type MemberService interface {
	AddMember(ctx context.Context, member *domain.Member) error
	Deactivate(ctx context.Context, id int32) error
	Get(ctx context.Context, id int32) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
}

type LedgerService interface {
	AddContribution(ctx context.Context, c *domain.Contribution) error
	AddFoundationPayment(ctx context.Context, p *domain.FoundationPayment) error
	AddFine(ctx context.Context, f *domain.Fine) error
	ListContributions(ctx context.Context, scope domain.Scope) ([]domain.Contribution, error)
	ListFoundationPayments(ctx context.Context, scope domain.Scope) ([]domain.FoundationPayment, error)
	ListFines(ctx context.Context, scope domain.Scope) ([]domain.Fine, error)
	ListPayouts(ctx context.Context, scope domain.Scope) ([]domain.Payout, error)
	LastPayout(ctx context.Context) (*domain.Payout, error)
}
