package scheduler

import (
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/jobs"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler.
// An empty spec leaves the job to be triggered by an admin.
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	s.register(jobs.JobAccrueMonthlyInterest, cfg.AccrueMonthlyInterest, s.jobs.AccrueMonthlyInterest)
	s.register(jobs.JobCloseSettledLoans, cfg.CloseSettledLoans, s.jobs.CloseSettledLoans)
	s.register(jobs.JobCheckPayoutDue, cfg.PayoutDueCheck, s.jobs.CheckPayoutDue)

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
}

func (s *Scheduler) register(name, spec string, run func() error) {
	if spec == "" {
		logger.Info("Job has no schedule, run it manually", "job", name)
		return
	}
	// Failures are logged and counted by the job runner.
	_, err := s.cron.AddFunc(spec, func() { _ = run() })
	if err != nil {
		logger.Error("Failed to register job", "job", name, "spec", spec, "error", err)
		return
	}
	logger.Debug("Registered job", "job", name, "spec", spec)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// JobCount returns the number of scheduled jobs
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}
