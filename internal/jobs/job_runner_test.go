package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/metrics"
	"github.com/Marceldinga/TheYoungShallGrow/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLoanService only implements what the jobs call; the embedded interface
// panics on anything else.
type MockLoanService struct {
	service.LoanService
	mock.Mock
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

type MockRotationService struct {
	service.RotationService
	mock.Mock
}

func (m *MockRotationService) RotationStatus(ctx context.Context) domain.RotationStatus {
	args := m.Called(ctx)
	return args.Get(0).(domain.RotationStatus)
}

func newRunner(t *testing.T, model string) (*JobRunner, *MockLoanService, *MockRotationService, *prometheus.Registry) {
	t.Helper()
	loans := new(MockLoanService)
	rotation := new(MockRotationService)
	reg := prometheus.NewRegistry()
	cfg := &config.Config{Lending: config.LendingConfig{InterestModel: model}}
	jr := NewJobRunner(&Services{Loans: loans, Rotation: rotation}, cfg, metrics.New(reg))
	jr.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return jr, loans, rotation, reg
}

func TestAccrueMonthlyInterest(t *testing.T) {
	t.Run("Skipped for flat model", func(t *testing.T) {
		jr, loans, _, _ := newRunner(t, config.InterestModelFlat)
		require.NoError(t, jr.RunOnce(JobAccrueMonthlyInterest))
		loans.AssertNotCalled(t, "AccrueMonthlyInterest", mock.Anything)
	})

	t.Run("Monthly model", func(t *testing.T) {
		jr, loans, _, _ := newRunner(t, config.InterestModelMonthly)
		loans.On("AccrueMonthlyInterest", mock.Anything).
			Return(&domain.InterestRun{RunMonth: "2025-03", LoansAffected: 2, InterestTotal: 40}, nil)

		require.NoError(t, jr.RunOnce(JobAccrueMonthlyInterest))
		loans.AssertExpectations(t)
	})

	t.Run("Store failure", func(t *testing.T) {
		jr, loans, _, reg := newRunner(t, config.InterestModelMonthly)
		loans.On("AccrueMonthlyInterest", mock.Anything).Return(nil, errors.New("db down"))

		assert.Error(t, jr.RunOnce(JobAccrueMonthlyInterest))
		count, err := testutil.GatherAndCount(reg, "njangi_job_runs_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestCloseSettledLoans_RecoversPanic(t *testing.T) {
	jr, loans, _, _ := newRunner(t, config.InterestModelFlat)
	loans.On("CloseSettledLoans", mock.Anything).Run(func(mock.Arguments) { panic("boom") })

	err := jr.RunOnce(JobCloseSettledLoans)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestCheckPayoutDue(t *testing.T) {
	past := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	jr, _, rotation, _ := newRunner(t, config.InterestModelFlat)
	rotation.On("RotationStatus", mock.Anything).Return(domain.RotationStatus{
		Window:      domain.RotationWindow{Pot: 1200},
		State:       &domain.RotationState{NextPayoutIndex: 2, NextPayoutDate: &past},
		Beneficiary: &domain.Member{ID: 2, Name: "Ada"},
	})

	require.NoError(t, jr.RunOnce(JobCheckPayoutDue))
	rotation.AssertExpectations(t)
}

func TestRunOnce_UnknownJob(t *testing.T) {
	jr, _, _, _ := newRunner(t, config.InterestModelFlat)
	assert.Error(t, jr.RunOnce("send-reminders"))
}

func TestRunAll(t *testing.T) {
	jr, loans, rotation, _ := newRunner(t, config.InterestModelFlat)
	loans.On("CloseSettledLoans", mock.Anything).Return(1, nil)
	rotation.On("RotationStatus", mock.Anything).Return(domain.RotationStatus{})

	require.NoError(t, jr.RunOnce(JobAll))
	loans.AssertExpectations(t)
	rotation.AssertExpectations(t)
}
