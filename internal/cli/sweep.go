package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/institute-scheduler/internal/jobs"
)

func init() {
	rootCmd.AddCommand(sweepRemindersCmd)
	rootCmd.AddCommand(retryLoyaltyCmd)
}

// ─── sweep-reminders ────────────────────────────────────────────────────────

var sweepRemindersCmd = &cobra.Command{
	Use:   "sweep-reminders",
	Short: "Send every reminder that is due now",
	Long: `Runs one reminder sweep. Safe to run while the API is up: the sweep
takes the same lock and each reminder is claimed before it is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := jobs.SweepReminders(cmd.Context(), a)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reminders sent: %d\n", n)
		return nil
	},
}

// ─── retry-loyalty ──────────────────────────────────────────────────────────

var retryLoyaltyCmd = &cobra.Command{
	Use:   "retry-loyalty",
	Short: "Apply loyalty to completed appointments that missed it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := jobs.RetryLoyalty(cmd.Context(), a)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "accruals applied: %d\n", n)
		return nil
	},
}
