package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			today := e.Clock.Today()
			report, err := service.RunDoctor(e.DB, today, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SQLite integrity: %s\n", report.IntegrityCheck)
			fmt.Fprintf(cmd.OutOrStdout(), "Invalid entries: %d\n", report.InvalidEntries)
			fmt.Fprintf(cmd.OutOrStdout(), "Duplicate entry rows: %d\n", report.DuplicateEntryRows)
			fmt.Fprintf(cmd.OutOrStdout(), "Future-dated goals: %d\n", report.FutureGoalRows)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed duplicate rows: %d\n", report.RemovedDuplicateRows)
				report, err = service.RunDoctor(e.DB, today, false)
				if err != nil {
					return err
				}
			}
			if report.IntegrityCheck != "ok" || report.InvalidEntries > 0 || report.DuplicateEntryRows > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove duplicate entry rows")
}
