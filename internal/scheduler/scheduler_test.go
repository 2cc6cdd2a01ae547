package scheduler

import (
	"testing"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/jobs"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newScheduler(sc config.SchedulerConfig) *Scheduler {
	cfg := &config.Config{Scheduler: sc}
	return NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg, nil))
}

func TestScheduler_RegistersConfiguredJobs(t *testing.T) {
	s := newScheduler(config.SchedulerConfig{
		CloseSettledLoans: "0 0 1 * * *",
		PayoutDueCheck:    "0 0 8 * * *",
	})
	assert.Equal(t, 2, s.JobCount())

	s = newScheduler(config.SchedulerConfig{
		AccrueMonthlyInterest: "0 0 2 1 * *",
		CloseSettledLoans:     "0 0 1 * * *",
		PayoutDueCheck:        "0 0 8 * * *",
	})
	assert.Equal(t, 3, s.JobCount())
}

func TestScheduler_SkipsInvalidSpec(t *testing.T) {
	s := newScheduler(config.SchedulerConfig{
		CloseSettledLoans: "every day",
		PayoutDueCheck:    "0 0 8 * * *",
	})
	assert.Equal(t, 1, s.JobCount())
}

func TestScheduler_StartStop(t *testing.T) {
	s := newScheduler(config.SchedulerConfig{PayoutDueCheck: "0 0 8 * * *"})
	s.Start()
	s.Stop()
	assert.Equal(t, 1, s.JobCount())
}
