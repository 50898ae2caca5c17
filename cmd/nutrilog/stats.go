package nutrilog

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/saadjs/nutrilog/internal/stats"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats [week|month]",
	Short: "Show calories per day, streaks and goal compliance",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		period, err := stats.ParsePeriod(arg)
		if err != nil {
			return err
		}
		return withEnv(func(e *env) error {
			res, err := service.PeriodStats(e.DB, e.Clock, period)
			if err != nil {
				return err
			}
			if statsJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printStats(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

func printStats(w io.Writer, res stats.Result) {
	direction := "at most"
	if res.Goal.Gaining {
		direction = "at least"
	}
	fmt.Fprintf(w, "Period: %s (%s to %s)\n", res.Period, res.FromDate, res.ToDate)
	fmt.Fprintf(w, "Goal: %s %d kcal\n", direction, res.Goal.Calories)

	peak := res.Goal.Calories
	for _, d := range res.Days {
		if d.Calories > peak {
			peak = d.Calories
		}
	}
	for _, d := range res.Days {
		mark := " "
		if d.MetGoal {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%5d %s %s\n", d.DateKey, d.Label, d.Calories, mark, bar(d.Calories, peak, 30))
	}
	fmt.Fprintf(w, "Average: %d kcal/day (days with data)\n", res.AverageCalories)
	fmt.Fprintf(w, "Current streak: %d days\n", res.CurrentStreak)
	fmt.Fprintf(w, "Best streak: %d days\n", res.BestStreak)
	fmt.Fprintf(w, "Compliance: %d/%d days (%d%%)\n", res.DaysGoalMet, res.DaysWithData, res.ComplianceRate)
}

func bar(value, peak, width int) string {
	if peak <= 0 || value <= 0 {
		return ""
	}
	n := value * width / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(statsCmd)
}
