package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
)

type ledgerService struct {
	repos       repository.Repositories
	activeKind  string
	settledKind string
	now         func() time.Time
}

// NewLedgerService records new contributions under activeKind. settledKind is
// reserved for payouts and callers may not use it.
func NewLedgerService(repos repository.Repositories, activeKind, settledKind string) LedgerService {
	return &ledgerService{repos: repos, activeKind: activeKind, settledKind: settledKind, now: time.Now}
}

func (s *ledgerService) requireMember(ctx context.Context, id int32) error {
	if id <= 0 {
		return domain.NewValidationError(domain.RuleInvalidInput, "member is required")
	}
	_, err := s.repos.Members.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError(domain.RuleUnknownMember, fmt.Sprintf("member %d does not exist", id))
	}
	return err
}

func (s *ledgerService) AddContribution(ctx context.Context, c *domain.Contribution) error {
	if c.Amount <= 0 {
		return domain.NewValidationError(domain.RuleInvalidAmount, "contribution amount must be greater than zero")
	}
	if err := s.requireMember(ctx, c.MemberID); err != nil {
		return err
	}
	if c.Kind == "" {
		c.Kind = s.activeKind
	}
	if s.settledKind != "" && c.Kind == s.settledKind {
		return domain.NewValidationError(domain.RuleInvalidInput,
			fmt.Sprintf("contribution kind %q is reserved for settled contributions", c.Kind))
	}
	if err := s.repos.Contributions.Create(ctx, c); err != nil {
		return err
	}
	logger.Info("Contribution recorded", "member_id", c.MemberID, "amount", c.Amount, "kind", c.Kind)
	return nil
}

func (s *ledgerService) AddFoundationPayment(ctx context.Context, p *domain.FoundationPayment) error {
	var reasons []string
	if p.AmountPaid < 0 || p.AmountPending < 0 {
		reasons = append(reasons, "foundation amounts cannot be negative")
	}
	if p.AmountPaid == 0 && p.AmountPending == 0 {
		reasons = append(reasons, "either the paid or the pending amount must be set")
	}
	if p.Status == "" {
		p.Status = foundationStatusFor(p.AmountPaid, p.AmountPending)
	}
	if !p.Status.Valid() {
		reasons = append(reasons, fmt.Sprintf("unknown foundation status %q", p.Status))
	}
	if len(reasons) > 0 {
		return domain.NewValidationError(domain.RuleInvalidAmount, reasons...)
	}
	if err := s.requireMember(ctx, p.MemberID); err != nil {
		return err
	}
	if p.DatePaid.IsZero() {
		p.DatePaid = s.now().UTC()
	}
	return s.repos.Foundation.Create(ctx, p)
}

func foundationStatusFor(paid, pending int64) domain.FoundationStatus {
	switch {
	case pending == 0:
		return domain.FoundationStatusPaid
	case paid == 0:
		return domain.FoundationStatusPending
	default:
		return domain.FoundationStatusPartial
	}
}

func (s *ledgerService) AddFine(ctx context.Context, f *domain.Fine) error {
	if f.Amount <= 0 {
		return domain.NewValidationError(domain.RuleInvalidAmount, "fine amount must be greater than zero")
	}
	if f.Status == "" {
		f.Status = domain.FineStatusUnpaid
	}
	if f.Status != domain.FineStatusUnpaid && f.Status != domain.FineStatusPaid {
		return domain.NewValidationError(domain.RuleInvalidInput, fmt.Sprintf("unknown fine status %q", f.Status))
	}
	if err := s.requireMember(ctx, f.MemberID); err != nil {
		return err
	}
	return s.repos.Fines.Create(ctx, f)
}

func (s *ledgerService) ListContributions(ctx context.Context, scope domain.Scope) ([]domain.Contribution, error) {
	return s.repos.Contributions.List(ctx, scope)
}

func (s *ledgerService) ListFoundationPayments(ctx context.Context, scope domain.Scope) ([]domain.FoundationPayment, error) {
	return s.repos.Foundation.List(ctx, scope)
}

func (s *ledgerService) ListFines(ctx context.Context, scope domain.Scope) ([]domain.Fine, error) {
	return s.repos.Fines.List(ctx, scope)
}

func (s *ledgerService) ListPayouts(ctx context.Context, scope domain.Scope) ([]domain.Payout, error) {
	return s.repos.Payouts.List(ctx, scope)
}

func (s *ledgerService) LastPayout(ctx context.Context) (*domain.Payout, error) {
	return s.repos.Payouts.Latest(ctx)
}
