package jobs

import (
	"context"
	"errors"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
)

// AccrueMonthlyInterest adds a month of interest to every active loan. It is a no-op
// unless the monthly interest model is configured.
func (jr *JobRunner) AccrueMonthlyInterest() error {
	return jr.runWithRecovery(JobAccrueMonthlyInterest, func(ctx context.Context) error {
		if jr.config.Lending.InterestModel != config.InterestModelMonthly {
			logger.Info("Monthly interest model is not enabled, skipping accrual", "interest_model", jr.config.Lending.InterestModel)
			return nil
		}

		run, err := jr.services.Loans.AccrueMonthlyInterest(ctx)
		if err != nil {
			var validation *domain.ValidationError
			if errors.As(err, &validation) {
				logger.Warn("Interest accrual rejected", "rule", validation.Rule, "reasons", validation.Reasons)
				return nil
			}
			return err
		}

		logger.Info("Accrued monthly interest",
			"run_month", run.RunMonth,
			"loans_affected", run.LoansAffected,
			"interest_total", run.InterestTotal)
		return nil
	})
}

// CloseSettledLoans moves active loans whose repayments cover the amount due to paid.
func (jr *JobRunner) CloseSettledLoans() error {
	return jr.runWithRecovery(JobCloseSettledLoans, func(ctx context.Context) error {
		settled, err := jr.services.Loans.CloseSettledLoans(ctx)
		if err != nil {
			return err
		}
		logger.Info("Settled-loan sweep finished", "loans_settled", settled)
		return nil
	})
}
