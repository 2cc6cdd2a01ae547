package service

import (
	"context"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/metrics"
	"github.com/Marceldinga/TheYoungShallGrow/internal/repository"
)

type aggregationService struct {
	repos          repository.Repositories
	activeStatuses []string
	metrics        *metrics.Metrics
}

func NewAggregationService(repos repository.Repositories, activeStatuses []string, m *metrics.Metrics) AggregationService {
	return &aggregationService{
		repos:          repos,
		activeStatuses: activeStatuses,
		metrics:        m,
	}
}

func (s *aggregationService) MemberTotals(ctx context.Context, scope domain.Scope) domain.Totals {
	logger.EnterMethod("aggregationService.MemberTotals", "all", scope.IsAll())

	t := domain.Totals{MemberID: scope.MemberID}
	degrade := func(table string, err error) {
		logger.Degraded(table, err, "all", scope.IsAll())
		s.metrics.ReadDegraded(table)
		for _, d := range t.Degraded {
			if d == table {
				return
			}
		}
		t.Degraded = append(t.Degraded, table)
	}

	if v, err := s.repos.Contributions.Sum(ctx, scope); err != nil {
		degrade("contributions", err)
	} else {
		t.TotalContributions = v
	}

	if paid, pending, err := s.repos.Foundation.Sums(ctx, scope); err != nil {
		degrade("foundation_payments", err)
	} else {
		t.FoundationPaid = paid
		t.FoundationPending = pending
	}

	if v, err := s.repos.Repayments.Sum(ctx, scope); err != nil {
		degrade("repayments", err)
	} else {
		t.TotalRepaid = v
	}

	if v, err := s.repos.Fines.SumUnpaid(ctx, scope); err != nil {
		degrade("fines", err)
	} else {
		t.UnpaidFines = v
	}

	if n, err := s.repos.Loans.CountByStatus(ctx, scope, s.activeStatuses); err != nil {
		degrade("loans", err)
	} else {
		t.ActiveLoanCount = n
	}

	if v, err := s.repos.Loans.SumTotal(ctx, scope); err != nil {
		degrade("loans", err)
	} else {
		t.LoanTotal = v
	}

	logger.ExitMethod("aggregationService.MemberTotals", "contributions", t.TotalContributions, "degraded", len(t.Degraded))
	return t
}

type capacityService struct {
	aggregation AggregationService
	creditRate  float64
}

func NewCapacityService(aggregation AggregationService, creditRate float64) CapacityService {
	if creditRate <= 0 {
		creditRate = domain.DefaultFoundationCreditRate
	}
	return &capacityService{aggregation: aggregation, creditRate: creditRate}
}

// Capacity is computed over the member's whole history.
func (s *capacityService) Capacity(ctx context.Context, memberID int32) domain.Capacity {
	totals := s.aggregation.MemberTotals(ctx, domain.ForMember(memberID))
	return domain.CapacityFromTotals(memberID, totals, s.creditRate)
}
