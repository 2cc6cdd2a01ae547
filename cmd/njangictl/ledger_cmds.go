package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Marceldinga/TheYoungShallGrow/internal/domain"
	"github.com/Marceldinga/TheYoungShallGrow/internal/utils"
	"github.com/spf13/cobra"
)

func potCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pot",
		Short: "Show the current rotation window, pot and next beneficiary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			status := l.rotation.RotationStatus(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "window:      %s .. %s\n", status.Window.Start.Format("2006-01-02 15:04"), status.Window.End.Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "pot:         %s\n", utils.FormatAmount(status.Window.Pot))
			if status.State != nil {
				fmt.Fprintf(out, "next index:  %d of %d\n", status.State.NextPayoutIndex, status.GroupSize)
				if status.State.NextPayoutDate != nil {
					fmt.Fprintf(out, "next payout: %s\n", status.State.NextPayoutDate.Format("2006-01-02"))
				}
			}
			if status.Beneficiary != nil {
				fmt.Fprintf(out, "beneficiary: %s (#%d)\n", status.Beneficiary.DisplayName(), status.Beneficiary.ID)
			}
			if len(status.Window.Degraded) > 0 {
				fmt.Fprintf(out, "degraded:    %s\n", strings.Join(status.Window.Degraded, ", "))
			}
			return nil
		},
	}
}

func capacityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <member-id>",
		Short: "Show a member's borrowing capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			member, err := l.members.Get(cmd.Context(), int32(id))
			if err != nil {
				return err
			}
			c := l.capacity.Capacity(cmd.Context(), member.ID)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "member:             %s (#%d)\n", member.DisplayName(), member.ID)
			fmt.Fprintf(out, "contributions:      %s\n", utils.FormatAmount(c.TotalContributions))
			fmt.Fprintf(out, "foundation paid:    %s\n", utils.FormatAmount(c.FoundationPaid))
			fmt.Fprintf(out, "foundation pending: %s\n", utils.FormatAmount(c.FoundationPending))
			fmt.Fprintf(out, "capacity:           %.2f\n", c.Value)
			if len(c.Degraded) > 0 {
				fmt.Fprintf(out, "degraded:           %s\n", strings.Join(c.Degraded, ", "))
			}
			return nil
		},
	}
}

func payoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "payout",
		Short: "Pay the current pot to the next member in the rotation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			res, err := l.rotation.ExecutePayout(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "paid %s to %s (#%d)\n", utils.FormatAmount(res.Payout.PayoutAmount), res.Payout.MemberName, res.Payout.MemberID)
			fmt.Fprintf(out, "settled %d contribution(s); next index %d on %s\n",
				res.SettledContributions, res.NextIndex, res.NextPayoutDate.Format("2006-01-02"))
			if res.Warning != "" {
				fmt.Fprintf(out, "warning: %s\n", res.Warning)
			}
			return nil
		},
	}
}

func accrueInterestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accrue-interest",
		Short: "Add monthly interest to every active loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			run, err := l.loans.AccrueMonthlyInterest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s interest on %d loan(s)\n",
				run.RunMonth, utils.FormatAmount(run.InterestTotal), run.LoansAffected)
			return nil
		},
	}
}

func interestRunsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interest-runs",
		Short: "List past monthly interest runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			runs, err := l.loans.ListInterestRuns(cmd.Context())
			if err != nil {
				return err
			}
			printInterestRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
}

func printInterestRuns(out io.Writer, runs []domain.InterestRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "no interest runs recorded")
		return
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %d loan(s)  %s  (run %s)\n",
			run.RunMonth, run.LoansAffected, utils.FormatAmount(run.InterestTotal), run.CreatedAt.Format("2006-01-02 15:04"))
	}
}
