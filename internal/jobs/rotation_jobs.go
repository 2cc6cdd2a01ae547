package jobs

import (
	"context"

	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
)

// CheckPayoutDue warns when the scheduled payout date has passed and there is a pot
// waiting. It never pays out by itself.
func (jr *JobRunner) CheckPayoutDue() error {
	return jr.runWithRecovery(JobCheckPayoutDue, func(ctx context.Context) error {
		status := jr.services.Rotation.RotationStatus(ctx)
		if status.State == nil {
			logger.Warn("Rotation state unavailable, cannot check payout due date", "degraded", status.Window.Degraded)
			return nil
		}
		if status.State.NextPayoutDate == nil {
			logger.Info("No payout date scheduled yet")
			return nil
		}

		now := jr.now().UTC()
		due := *status.State.NextPayoutDate
		if now.Before(due) {
			logger.Info("Payout not yet due", "next_payout_date", due)
			return nil
		}
		if status.Window.Pot <= 0 {
			logger.Info("Payout date passed with an empty pot", "next_payout_date", due)
			return nil
		}

		args := []any{
			"next_payout_date", due,
			"pot", status.Window.Pot,
			"next_payout_index", status.State.NextPayoutIndex,
		}
		if status.Beneficiary != nil {
			args = append(args, "beneficiary_id", status.Beneficiary.ID, "beneficiary", status.Beneficiary.DisplayName())
		}
		logger.Warn("Payout is overdue", args...)
		return nil
	})
}
