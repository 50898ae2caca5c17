package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show a day's intake and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			status, err := service.DaySummary(e.DB, e.Clock, todayDate)
			if err != nil {
				return err
			}
			if todayJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", status.Date)
			fmt.Fprintf(out, "Intake: %d kcal (%d entries)\n", status.Calories, status.EntryCount)
			fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", status.ProteinG, status.CarbsG, status.FatG)
			label := "Goal"
			if !status.GoalStored {
				label = "Goal (calculated)"
			}
			g := status.Goals
			fmt.Fprintf(out, "%s: %d kcal | P %dg | C %dg | F %dg\n", label, g.Calories, g.ProteinG, g.CarbsG, g.FatG)
			fmt.Fprintf(out, "Remaining: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", status.RemainingCalories, status.RemainingProteinG, status.RemainingCarbsG, status.RemainingFatG)
			for _, en := range status.Entries {
				fmt.Fprintf(out, "  %s\t%s\t%s\t%d kcal\n", en.ConsumedAt.In(e.Clock.Location).Format("15:04"), en.MealType, en.Name, en.Calories)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output JSON")
}
