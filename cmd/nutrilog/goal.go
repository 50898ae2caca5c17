package nutrilog

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage daily calorie and macro goals",
}

var (
	goalCalories  int
	goalProtein   int
	goalCarbs     int
	goalFat       int
	goalEffective string
	goalJSON      bool
)

var goalCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show goals in force today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			g, err := service.CurrentGoals(e.DB, e.Clock.Today())
			if err != nil {
				return err
			}
			if g == nil {
				calc, err := service.ResolveGoals(e.DB, e.Clock)
				if err != nil {
					return err
				}
				if goalJSON {
					return printJSON(cmd.OutOrStdout(), calc)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "No goals saved; profile calculates %d kcal, P %dg C %dg F %dg\n", calc.Calories, calc.ProteinG, calc.CarbsG, calc.FatG)
				return nil
			}
			if goalJSON {
				return printJSON(cmd.OutOrStdout(), g)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Effective: %s (%s)\n", g.EffectiveDate, g.Source)
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %d\n", g.Calories)
			fmt.Fprintf(cmd.OutOrStdout(), "Protein: %dg\nCarbs: %dg\nFat: %dg\n", g.ProteinG, g.CarbsG, g.FatG)
			return nil
		})
	},
}

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set manual goals from a date (default today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			g, err := service.SetGoals(e.DB, e.Clock, service.SetGoalsInput{
				Calories:      goalCalories,
				ProteinG:      goalProtein,
				CarbsG:        goalCarbs,
				FatG:          goalFat,
				EffectiveDate: goalEffective,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goals set from %s: %d kcal, P %dg C %dg F %dg\n", g.EffectiveDate, g.Calories, g.ProteinG, g.CarbsG, g.FatG)
			return nil
		})
	},
}

var goalRecalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Replace today's goals with ones calculated from the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			res, g, err := service.RecalculateGoals(e.DB, e.Clock)
			if err != nil {
				return err
			}
			if goalJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"calculation": res, "goals": g})
			}
			printCalculation(cmd.OutOrStdout(), res)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved as goals from %s\n", g.EffectiveDate)
			return nil
		})
	},
}

var goalHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List goal versions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.GoalHistory(sqldb)
			if err != nil {
				return err
			}
			if goalJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "EFFECTIVE\tSOURCE\tKCAL\tP\tC\tF")
			for _, g := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%d\t%d\t%d\n", g.EffectiveDate, g.Source, g.Calories, g.ProteinG, g.CarbsG, g.FatG)
			}
			return nil
		})
	},
}

func init() {
	goalSetCmd.Flags().IntVar(&goalCalories, "calories", 0, "Daily calories")
	goalSetCmd.Flags().IntVar(&goalProtein, "protein", 0, "Daily protein grams")
	goalSetCmd.Flags().IntVar(&goalCarbs, "carbs", 0, "Daily carbs grams")
	goalSetCmd.Flags().IntVar(&goalFat, "fat", 0, "Daily fat grams")
	goalSetCmd.Flags().StringVar(&goalEffective, "date", "", "Effective date YYYY-MM-DD (default today)")
	_ = goalSetCmd.MarkFlagRequired("calories")

	goalCurrentCmd.Flags().BoolVar(&goalJSON, "json", false, "Output JSON")
	goalRecalcCmd.Flags().BoolVar(&goalJSON, "json", false, "Output JSON")
	goalHistoryCmd.Flags().BoolVar(&goalJSON, "json", false, "Output JSON")

	goalCmd.AddCommand(goalCurrentCmd)
	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalRecalcCmd)
	goalCmd.AddCommand(goalHistoryCmd)
	rootCmd.AddCommand(goalCmd)
}
