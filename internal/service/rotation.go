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

	"github.com/google/uuid"
)

type rotationService struct {
	repos   repository.Repositories
	tx      repository.Transactor
	cfg     config.RotationConfig
	metrics *metrics.Metrics
	now     func() time.Time
	newRef  func() string
}

func NewRotationService(
	repos repository.Repositories,
	tx repository.Transactor,
	cfg config.RotationConfig,
	m *metrics.Metrics,
) RotationService {
	return &rotationService{
		repos:   repos,
		tx:      tx,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
		newRef:  uuid.NewString,
	}
}

func (s *rotationService) windowAfter(last *domain.Payout) domain.RotationWindow {
	var lastAt *time.Time
	if last != nil {
		at := last.CreatedAt
		lastAt = &at
	}
	w := domain.RotationWindowFor(lastAt, s.cfg.SeasonStart(), s.cfg.Period())
	w.Bounded = s.cfg.BoundedWindow
	w.LastPayout = last
	return w
}

func (s *rotationService) upperBound(w domain.RotationWindow) *time.Time {
	if !w.Bounded {
		return nil
	}
	end := w.End
	return &end
}

func (s *rotationService) CurrentWindow(ctx context.Context) domain.RotationWindow {
	var degraded []string

	last, err := s.repos.Payouts.Latest(ctx)
	if err != nil {
		logger.Degraded("payouts", err)
		s.metrics.ReadDegraded("payouts")
		degraded = append(degraded, "payouts")
		last = nil
	}

	w := s.windowAfter(last)
	rows, err := s.repos.Contributions.ListCreatedAfter(ctx, w.Start, s.upperBound(w))
	if err != nil {
		logger.Degraded("contributions", err)
		s.metrics.ReadDegraded("contributions")
		degraded = append(degraded, "contributions")
	} else {
		w.Pot = domain.PotFrom(rows, w, s.cfg.SettledKind)
	}

	w.Degraded = degraded
	return w
}

func (s *rotationService) RotationStatus(ctx context.Context) domain.RotationStatus {
	status := domain.RotationStatus{
		Window:    s.CurrentWindow(ctx),
		GroupSize: s.cfg.GroupSize,
	}

	state, err := s.repos.Rotation.Get(ctx)
	if err != nil {
		logger.Degraded("rotation_state", err)
		s.metrics.ReadDegraded("rotation_state")
		status.Window.Degraded = append(status.Window.Degraded, "rotation_state")
		return status
	}
	status.State = state

	beneficiary, err := s.repos.Members.GetByRotationPosition(ctx, state.NextPayoutIndex)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Degraded("members", err)
			s.metrics.ReadDegraded("members")
			status.Window.Degraded = append(status.Window.Degraded, "members")
		}
		return status
	}
	status.Beneficiary = beneficiary
	return status
}

// ExecutePayout pays the current pot to the member at the rotation index and advances
// the index. Either everything commits or nothing does, except the payout receipt,
// whose failure is reported in PayoutResult.Warning.
func (s *rotationService) ExecutePayout(ctx context.Context) (*domain.PayoutResult, error) {
	logger.EnterMethod("rotationService.ExecutePayout", "procedure", s.cfg.PayoutProcedure)

	if s.cfg.PayoutProcedure != "" {
		res, err := s.repos.Payouts.ExecuteProcedure(ctx, repository.PayoutProcedureArgs{
			Name:        s.cfg.PayoutProcedure,
			GroupSize:   s.cfg.GroupSize,
			PeriodDays:  s.cfg.PeriodDays,
			SeasonStart: s.cfg.SeasonStart(),
			SettledKind: s.cfg.SettledKind,
			Bounded:     s.cfg.BoundedWindow,
			ReceiptRef:  s.newRef(),
		})
		switch {
		case err == nil:
			s.metrics.PayoutExecuted(res.Payout.PayoutAmount, true)
			logger.ExitMethod("rotationService.ExecutePayout", "member_id", res.Payout.MemberID,
				"amount", res.Payout.PayoutAmount, "next_index", res.NextIndex, "via_procedure", true)
			return res, nil
		case errors.Is(err, repository.ErrProcedureMissing):
			logger.Warn("Payout procedure is not installed, using in-process transaction", "procedure", s.cfg.PayoutProcedure)
		default:
			logger.ExitMethodWithError("rotationService.ExecutePayout", err, "via_procedure", true)
			return nil, err
		}
	}

	var result *domain.PayoutResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		res, err := s.payoutInTx(ctx, repos)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rotationService.ExecutePayout", err)
		return nil, err
	}

	s.metrics.PayoutExecuted(result.Payout.PayoutAmount, false)
	if result.Warning != "" {
		s.metrics.PayoutReceiptFailed()
	}
	logger.ExitMethod("rotationService.ExecutePayout", "member_id", result.Payout.MemberID,
		"amount", result.Payout.PayoutAmount, "next_index", result.NextIndex, "receipt_recorded", result.ReceiptRecorded)
	return result, nil
}

func (s *rotationService) payoutInTx(ctx context.Context, repos repository.Repositories) (*domain.PayoutResult, error) {
	state, err := repos.Rotation.GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock rotation state: %w", err)
	}
	if err := repos.Contributions.LockForPayout(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock contributions: %w", err)
	}

	beneficiary, err := repos.Members.GetByRotationPosition(ctx, state.NextPayoutIndex)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError(domain.RuleNoBeneficiary,
			fmt.Sprintf("no member holds rotation position %d", state.NextPayoutIndex))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve beneficiary: %w", err)
	}
	if !beneficiary.Active {
		logger.Warn("Paying out to an inactive member", "member_id", beneficiary.ID, "position", state.NextPayoutIndex)
	}

	last, err := repos.Payouts.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last payout: %w", err)
	}
	w := s.windowAfter(last)
	rows, err := repos.Contributions.ListCreatedAfter(ctx, w.Start, s.upperBound(w))
	if err != nil {
		return nil, fmt.Errorf("failed to read pot contributions: %w", err)
	}

	paid := domain.PotContributions(rows, w, s.cfg.SettledKind)
	ids := make([]int64, 0, len(paid))
	var pot int64
	for _, c := range paid {
		pot += c.Amount
		ids = append(ids, c.ID)
	}
	if pot <= 0 {
		return nil, domain.NewValidationError(domain.RuleZeroPot, "pot is empty, nothing to pay out")
	}

	now := s.now().UTC()
	res := &domain.PayoutResult{
		Payout: domain.Payout{
			MemberID:     beneficiary.ID,
			MemberName:   beneficiary.DisplayName(),
			PayoutAmount: pot,
			PayoutDate:   now,
			ReceiptRef:   s.newRef(),
			CreatedAt:    now,
		},
		Beneficiary:   *beneficiary,
		PreviousIndex: state.NextPayoutIndex,
	}

	if err := repos.Payouts.CreateReceipt(ctx, &res.Payout); err != nil {
		logger.SecondaryWriteFailed("payout receipt", err, "member_id", beneficiary.ID, "amount", pot)
		res.Warning = fmt.Sprintf("payout receipt was not recorded: %v", err)
	} else {
		res.ReceiptRecorded = true
	}

	settled, err := repos.Contributions.MarkSettled(ctx, ids, s.cfg.SettledKind)
	if err != nil {
		return nil, fmt.Errorf("failed to settle pot contributions: %w", err)
	}
	res.SettledContributions = settled

	res.NextIndex = domain.NextRotationIndex(state.NextPayoutIndex, s.cfg.GroupSize)
	res.NextPayoutDate = now.Add(s.cfg.Period())
	if _, err := repos.Rotation.Advance(ctx, res.NextIndex, res.NextPayoutDate, state.Version); err != nil {
		return nil, err
	}

	return res, nil
}
