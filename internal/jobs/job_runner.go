package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/Marceldinga/TheYoungShallGrow/internal/metrics"
	"github.com/Marceldinga/TheYoungShallGrow/internal/service"
)

// Job names accepted by RunOnce.
const (
	JobAccrueMonthlyInterest = "accrue-monthly-interest"
	JobCloseSettledLoans     = "close-settled-loans"
	JobCheckPayoutDue        = "check-payout-due"
	JobAll                   = "all"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	metrics  *metrics.Metrics
	now      func() time.Time
	timeout  time.Duration
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Loans    service.LoanService
	Rotation service.RotationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		metrics:  m,
		now:      time.Now,
		timeout:  5 * time.Minute,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.metrics.JobRun(jobName, time.Since(start).Seconds(), err)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// JobNames lists the jobs RunOnce knows about
func JobNames() []string {
	return []string{JobAccrueMonthlyInterest, JobCloseSettledLoans, JobCheckPayoutDue, JobAll}
}

// RunOnce runs the named job synchronously and returns its error
func (jr *JobRunner) RunOnce(name string) error {
	switch name {
	case JobAccrueMonthlyInterest:
		return jr.AccrueMonthlyInterest()
	case JobCloseSettledLoans:
		return jr.CloseSettledLoans()
	case JobCheckPayoutDue:
		return jr.CheckPayoutDue()
	case JobAll:
		return jr.RunAll()
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

// RunAll runs every job in order, accrual first so the sweep sees fresh totals
func (jr *JobRunner) RunAll() error {
	var firstErr error
	for _, run := range []func() error{jr.AccrueMonthlyInterest, jr.CloseSettledLoans, jr.CheckPayoutDue} {
		if err := run(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
