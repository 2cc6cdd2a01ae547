package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/metrics"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
	"github.com/Marceldinga/TheYoungShallGrow/internal/utils"
)

type loanService struct {
	repos    repository.Repositories
	tx       repository.Transactor
	capacity CapacityService
	cfg      config.LendingConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewLoanService(
	repos repository.Repositories,
	tx repository.Transactor,
	capacity CapacityService,
	cfg config.LendingConfig,
	m *metrics.Metrics,
) LoanService {
	return &loanService{
		repos:    repos,
		tx:       tx,
		capacity: capacity,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// loadMember resolves a member referenced by a loan. requireActive rejects
// deactivated members.
func (s *loanService) loadMember(ctx context.Context, role string, id int32, requireActive bool) (*domain.Member, error) {
	m, err := s.repos.Members.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError(domain.RuleUnknownMember, fmt.Sprintf("%s %d does not exist", role, id))
	}
	if err != nil {
		return nil, err
	}
	if requireActive && !m.Active {
		return nil, domain.NewValidationError(domain.RuleInactiveMember, fmt.Sprintf("%s %d is not an active member", role, id))
	}
	return m, nil
}

func (s *loanService) decide(ctx context.Context, borrowerID, suretyID int32, amount int64) domain.EligibilityDecision {
	return domain.Decide(amount, s.capacity.Capacity(ctx, borrowerID), s.capacity.Capacity(ctx, suretyID))
}

func (s *loanService) CheckEligibility(ctx context.Context, borrowerID, suretyID int32, amount int64) (*domain.EligibilityDecision, error) {
	req, err := domain.NewLoanRequest(borrowerID).WithSurety(suretyID).WithAmount(amount).Build()
	if err != nil {
		return nil, err
	}
	if _, err := s.loadMember(ctx, "borrower", req.BorrowerID, false); err != nil {
		return nil, err
	}
	if _, err := s.loadMember(ctx, "surety", req.SuretyID, false); err != nil {
		return nil, err
	}

	decision := s.decide(ctx, req.BorrowerID, req.SuretyID, req.Amount)
	return &decision, nil
}

func (s *loanService) RequestLoan(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error) {
	logger.EnterMethod("loanService.RequestLoan", "borrower", req.BorrowerID, "surety", req.SuretyID, "amount", req.Amount)

	loan, err := s.requestLoan(ctx, req)
	if err != nil {
		var v *domain.ValidationError
		if errors.As(err, &v) {
			s.metrics.LoanRequest(v.Rule)
		}
		logger.ExitMethodWithError("loanService.RequestLoan", err, "borrower", req.BorrowerID)
		return nil, err
	}

	s.metrics.LoanRequest("accepted")
	logger.ExitMethod("loanService.RequestLoan", "loan_id", loan.ID)
	return loan, nil
}

func (s *loanService) requestLoan(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error) {
	// Re-run structural validation on the value the caller built.
	req, err := domain.NewLoanRequest(req.BorrowerID).
		WithSurety(req.SuretyID).
		WithAmount(req.Amount).
		WithNotes(req.Notes).
		Build()
	if err != nil {
		return nil, err
	}

	if _, err := s.loadMember(ctx, "borrower", req.BorrowerID, true); err != nil {
		return nil, err
	}
	if _, err := s.loadMember(ctx, "surety", req.SuretyID, true); err != nil {
		return nil, err
	}

	if s.cfg.SingleOpenLoan {
		open, err := s.repos.Loans.HasOpenLoan(ctx, req.BorrowerID)
		if err != nil {
			return nil, err
		}
		if open {
			return nil, domain.NewValidationError(domain.RuleOpenLoanExists, "borrower already has an open loan")
		}
	}

	decision := s.decide(ctx, req.BorrowerID, req.SuretyID, req.Amount)
	if err := decision.Err(); err != nil {
		return nil, err
	}

	loan := req.ToLoan(s.now().UTC())
	if err := s.repos.Loans.Create(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// CreateLoanAsAdmin records a loan without the capacity gate. Structural rules and
// member existence still apply.
func (s *loanService) CreateLoanAsAdmin(ctx context.Context, req domain.LoanRequest) (*domain.Loan, error) {
	logger.EnterMethod("loanService.CreateLoanAsAdmin", "borrower", req.BorrowerID, "status", req.Status)

	status := req.Status
	if status == "" {
		status = domain.LoanStatusRequested
	}
	req, err := domain.NewLoanRequest(req.BorrowerID).
		WithSurety(req.SuretyID).
		WithAmount(req.Amount).
		WithNotes(req.Notes).
		WithStatus(status).
		Build()
	if err != nil {
		logger.ExitMethodWithError("loanService.CreateLoanAsAdmin", err)
		return nil, err
	}

	if _, err := s.loadMember(ctx, "borrower", req.BorrowerID, false); err != nil {
		logger.ExitMethodWithError("loanService.CreateLoanAsAdmin", err)
		return nil, err
	}
	if _, err := s.loadMember(ctx, "surety", req.SuretyID, false); err != nil {
		logger.ExitMethodWithError("loanService.CreateLoanAsAdmin", err)
		return nil, err
	}

	loan := req.ToLoan(s.now().UTC())
	if err := s.repos.Loans.Create(ctx, loan); err != nil {
		logger.ExitMethodWithError("loanService.CreateLoanAsAdmin", err)
		return nil, err
	}

	logger.ExitMethod("loanService.CreateLoanAsAdmin", "loan_id", loan.ID, "status", loan.Status)
	return loan, nil
}

// transition applies a lifecycle action with a guarded update. A concurrent change
// of status surfaces as a StateError carrying the status found on reload.
func (s *loanService) transition(ctx context.Context, loans repository.LoanRepository, loan *domain.Loan, action domain.LoanAction, mutate func(l *domain.Loan, now time.Time)) error {
	from, to, err := loan.Transition(action)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	loan.Status = to
	if mutate != nil {
		mutate(loan, now)
	}

	ok, err := loans.Update(ctx, loan, from)
	if err != nil {
		return err
	}
	if !ok {
		current := "unknown"
		if fresh, err := loans.GetByID(ctx, loan.ID); err == nil {
			current = string(fresh.Status)
		}
		return &domain.StateError{Entity: "loan", ID: loan.ID, Current: current, Action: string(action)}
	}

	s.metrics.LoanTransition(string(to))
	logger.Info("Loan status changed", "loan_id", loan.ID, "from", from, "to", to)
	return nil
}

func (s *loanService) act(ctx context.Context, loanID int64, action domain.LoanAction, mutate func(l *domain.Loan, now time.Time)) (*domain.Loan, error) {
	loan, err := s.repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, s.repos.Loans, loan, action, mutate); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) Approve(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return s.act(ctx, loanID, domain.LoanActionApprove, func(l *domain.Loan, now time.Time) {
		l.ApprovedAt = &now
	})
}

func (s *loanService) Reject(ctx context.Context, loanID int64, reason string) (*domain.Loan, error) {
	if reason == "" {
		reason = "rejected by admin"
	}
	return s.act(ctx, loanID, domain.LoanActionReject, func(l *domain.Loan, now time.Time) {
		l.RejectionReason = reason
		l.ClosedAt = &now
	})
}

// Issue finalises the loan's accounting fields according to the interest model.
func (s *loanService) Issue(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return s.act(ctx, loanID, domain.LoanActionIssue, func(l *domain.Loan, now time.Time) {
		l.IssuedAt = &now
		switch s.cfg.InterestModel {
		case config.InterestModelFlat:
			l.Interest = utils.FlatInterest(l.Principal, s.cfg.FlatRate())
		case config.InterestModelMonthly:
			l.Interest = 0
			l.LastInterestAt = &now
		default:
			l.Interest = 0
		}
		l.TotalDue = l.Principal + l.Interest
	})
}

func (s *loanService) Close(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return s.act(ctx, loanID, domain.LoanActionClose, func(l *domain.Loan, now time.Time) {
		l.ClosedAt = &now
	})
}

func (s *loanService) RecordRepayment(ctx context.Context, loanID int64, amount int64, notes string) (*domain.LoanBalance, error) {
	logger.EnterMethod("loanService.RecordRepayment", "loan_id", loanID, "amount", amount)

	if amount <= 0 {
		err := domain.NewValidationError(domain.RuleInvalidAmount, "repayment amount must be greater than zero")
		logger.ExitMethodWithError("loanService.RecordRepayment", err, "loan_id", loanID)
		return nil, err
	}

	var balance domain.LoanBalance
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loan, err := repos.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Status != domain.LoanStatusActive {
			return &domain.StateError{Entity: "loan", ID: loan.ID, Current: string(loan.Status), Action: string(domain.LoanActionRepay)}
		}

		repayment := &domain.Repayment{
			LoanID:     loan.ID,
			MemberID:   loan.BorrowerMemberID,
			AmountPaid: amount,
			PaidAt:     s.now().UTC(),
			Notes:      notes,
		}
		if err := repos.Repayments.Create(ctx, repayment); err != nil {
			return err
		}

		repaid, err := repos.Repayments.SumByLoan(ctx, loan.ID)
		if err != nil {
			return err
		}

		balance = domain.NewLoanBalance(*loan, repaid)
		if balance.Settled() {
			if err := s.transition(ctx, repos.Loans, loan, domain.LoanActionSettle, func(l *domain.Loan, now time.Time) {
				l.ClosedAt = &now
			}); err != nil {
				return err
			}
			balance.Loan = *loan
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("loanService.RecordRepayment", err, "loan_id", loanID)
		return nil, err
	}

	if balance.Overpaid {
		logger.Warn("Loan overpaid", "loan_id", loanID, "remaining_balance", balance.RemainingBalance)
	}
	logger.ExitMethod("loanService.RecordRepayment", "loan_id", loanID, "remaining_balance", balance.RemainingBalance, "status", balance.Loan.Status)
	return &balance, nil
}

func (s *loanService) Balance(ctx context.Context, loanID int64) (*domain.LoanBalance, error) {
	loan, err := s.repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	repaid, err := s.repos.Repayments.SumByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	balance := domain.NewLoanBalance(*loan, repaid)
	return &balance, nil
}

func (s *loanService) ListLoans(ctx context.Context, scope domain.Scope) ([]domain.LoanBalance, error) {
	loans, err := s.repos.Loans.List(ctx, scope, nil)
	if err != nil {
		return nil, err
	}
	return s.withBalances(ctx, s.repos, loans)
}

// ListRepayments returns ErrNotFound for an unknown loan rather than an empty list.
func (s *loanService) ListRepayments(ctx context.Context, loanID int64) ([]domain.Repayment, error) {
	if _, err := s.repos.Loans.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.repos.Repayments.ListByLoan(ctx, loanID)
}

func (s *loanService) withBalances(ctx context.Context, repos repository.Repositories, loans []domain.Loan) ([]domain.LoanBalance, error) {
	ids := make([]int64, len(loans))
	for i, l := range loans {
		ids[i] = l.ID
	}
	repaid, err := repos.Repayments.SumByLoans(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LoanBalance, len(loans))
	for i, l := range loans {
		out[i] = domain.NewLoanBalance(l, repaid[l.ID])
	}
	return out, nil
}

// AccrueMonthlyInterest adds the interest of every whole month elapsed since each
// active loan's last accrual. last_interest_at moves forward by exactly the months
// charged, so a second run within the same month changes nothing.
func (s *loanService) AccrueMonthlyInterest(ctx context.Context) (*domain.InterestRun, error) {
	logger.EnterMethod("loanService.AccrueMonthlyInterest", "model", s.cfg.InterestModel)

	if s.cfg.InterestModel != config.InterestModelMonthly {
		err := domain.NewValidationError(domain.RuleInterestModel,
			fmt.Sprintf("monthly accrual requires the monthly interest model, configured model is %q", s.cfg.InterestModel))
		logger.ExitMethodWithError("loanService.AccrueMonthlyInterest", err)
		return nil, err
	}

	now := s.now().UTC()
	run := &domain.InterestRun{RunMonth: now.Format("2006-01")}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		loans, err := repos.Loans.List(ctx, domain.AllMembers(), []domain.LoanStatus{domain.LoanStatusActive})
		if err != nil {
			return err
		}

		for i := range loans {
			loan := &loans[i]
			since := accrualAnchor(loan)
			months := domain.WholeMonthsBetween(since, now)
			if months == 0 {
				continue
			}

			added := utils.MonthlyInterest(loan.Principal, s.cfg.MonthlyInterestRate, months)
			next := since.AddDate(0, months, 0)
			loan.Interest += added
			loan.TotalDue += added
			loan.LastInterestAt = &next

			ok, err := repos.Loans.Update(ctx, loan, domain.LoanStatusActive)
			if err != nil {
				return err
			}
			if !ok {
				logger.Warn("Loan left active during accrual, skipped", "loan_id", loan.ID)
				continue
			}
			run.LoansAffected++
			run.InterestTotal += added
		}

		return repos.InterestRuns.Create(ctx, run)
	})
	if err != nil {
		logger.ExitMethodWithError("loanService.AccrueMonthlyInterest", err)
		return nil, err
	}

	s.metrics.InterestAccrued(run.InterestTotal, run.LoansAffected)
	logger.ExitMethod("loanService.AccrueMonthlyInterest", "loans", run.LoansAffected, "interest", run.InterestTotal)
	return run, nil
}

func (s *loanService) ListInterestRuns(ctx context.Context) ([]domain.InterestRun, error) {
	return s.repos.InterestRuns.List(ctx)
}

func accrualAnchor(l *domain.Loan) time.Time {
	switch {
	case l.LastInterestAt != nil:
		return *l.LastInterestAt
	case l.IssuedAt != nil:
		return *l.IssuedAt
	default:
		return l.CreatedAt
	}
}

// CloseSettledLoans marks every active loan whose repayments cover total_due as paid.
func (s *loanService) CloseSettledLoans(ctx context.Context) (int, error) {
	logger.EnterMethod("loanService.CloseSettledLoans")

	loans, err := s.repos.Loans.List(ctx, domain.AllMembers(), []domain.LoanStatus{domain.LoanStatusActive})
	if err != nil {
		logger.ExitMethodWithError("loanService.CloseSettledLoans", err)
		return 0, err
	}
	balances, err := s.withBalances(ctx, s.repos, loans)
	if err != nil {
		logger.ExitMethodWithError("loanService.CloseSettledLoans", err)
		return 0, err
	}

	closed := 0
	for _, b := range balances {
		if !b.Settled() {
			continue
		}
		loan := b.Loan
		err := s.transition(ctx, s.repos.Loans, &loan, domain.LoanActionSettle, func(l *domain.Loan, now time.Time) {
			l.ClosedAt = &now
		})
		if domain.IsState(err) {
			logger.Warn("Loan changed before it could be settled", "loan_id", loan.ID, "error", err)
			continue
		}
		if err != nil {
			logger.ExitMethodWithError("loanService.CloseSettledLoans", err, "closed", closed)
			return closed, err
		}
		closed++
	}

	logger.ExitMethod("loanService.CloseSettledLoans", "closed", closed)
	return closed, nil
}
