package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var activeStatuses = []string{"active", "open", "approved", "issued"}

func TestAggregationService_MemberTotals(t *testing.T) {
	ctx := context.Background()
	scope := domain.ForMember(3)

	t.Run("All tables readable", func(t *testing.T) {
		m := newMockRepos()
		svc := NewAggregationService(m.Repositories(), activeStatuses, nil)
		m.contributions.On("Sum", mock.Anything, scope).Return(int64(1000), nil)
		m.foundation.On("Sums", mock.Anything, scope).Return(int64(500), int64(200), nil)
		m.repayments.On("Sum", mock.Anything, scope).Return(int64(300), nil)
		m.fines.On("SumUnpaid", mock.Anything, scope).Return(int64(25), nil)
		m.loans.On("CountByStatus", mock.Anything, scope, activeStatuses).Return(2, nil)
		m.loans.On("SumTotal", mock.Anything, scope).Return(int64(1500), nil)

		totals := svc.MemberTotals(ctx, scope)
		assert.Equal(t, int64(1000), totals.TotalContributions)
		assert.Equal(t, int64(500), totals.FoundationPaid)
		assert.Equal(t, int64(200), totals.FoundationPending)
		assert.Equal(t, int64(300), totals.TotalRepaid)
		assert.Equal(t, int64(25), totals.UnpaidFines)
		assert.Equal(t, 2, totals.ActiveLoanCount)
		assert.Equal(t, int64(1500), totals.LoanTotal)
		assert.Equal(t, int64(800), totals.FoundationPaidPlusRepaid())
		assert.False(t, totals.IsDegraded())
	})

	t.Run("Unreadable tables contribute zero", func(t *testing.T) {
		m := newMockRepos()
		svc := NewAggregationService(m.Repositories(), activeStatuses, nil)
		m.contributions.On("Sum", mock.Anything, scope).Return(int64(1000), nil)
		m.foundation.On("Sums", mock.Anything, scope).Return(int64(0), int64(0), errors.New("relation does not exist"))
		m.repayments.On("Sum", mock.Anything, scope).Return(int64(300), nil)
		m.fines.On("SumUnpaid", mock.Anything, scope).Return(int64(0), nil)
		m.loans.On("CountByStatus", mock.Anything, scope, activeStatuses).Return(0, errors.New("timeout"))
		m.loans.On("SumTotal", mock.Anything, scope).Return(int64(0), domain.NewStoreError("sum", "loans", errors.New("no column")))

		totals := svc.MemberTotals(ctx, scope)
		assert.Equal(t, int64(1000), totals.TotalContributions)
		assert.Zero(t, totals.FoundationPaid)
		assert.Equal(t, []string{"foundation_payments", "loans"}, totals.Degraded)
		assert.True(t, totals.IsDegraded())
	})
}

func TestCapacityService_Capacity(t *testing.T) {
	m := newMockRepos()
	agg := NewAggregationService(m.Repositories(), activeStatuses, nil)
	svc := NewCapacityService(agg, 0)
	scope := domain.ForMember(1)
	m.contributions.On("Sum", mock.Anything, scope).Return(int64(1000), nil)
	m.foundation.On("Sums", mock.Anything, scope).Return(int64(500), int64(200), nil)
	m.repayments.On("Sum", mock.Anything, scope).Return(int64(0), nil)
	m.fines.On("SumUnpaid", mock.Anything, scope).Return(int64(0), nil)
	m.loans.On("CountByStatus", mock.Anything, scope, activeStatuses).Return(0, nil)
	m.loans.On("SumTotal", mock.Anything, scope).Return(int64(0), nil)

	c := svc.Capacity(context.Background(), 1)
	assert.InDelta(t, 1490.0, c.Value, 1e-9)
	assert.Equal(t, int32(1), c.MemberID)
	assert.Empty(t, c.Degraded)
}
