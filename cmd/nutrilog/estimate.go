package nutrilog

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var (
	estimateImage string
	estimateLog   bool
	estimateName  string
	estimateMeal  string
	estimateDate  string
	estimateTime  string
	estimateJSON  bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [description]",
	Short: "Estimate a meal's nutrition from a description and/or photo",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := strings.Join(args, " ")
		return withEnv(func(e *env) error {
			cache, closeCache := newEstimateCache(cmd.Context(), e.Config, e.DB)
			defer closeCache()

			res, err := service.EstimateMeal(cmd.Context(), newEstimator(e.Config), cache, service.EstimateRequest{
				Description: desc,
				ImagePath:   estimateImage,
			})
			if err != nil {
				return err
			}
			if !estimateLog {
				if estimateJSON {
					return printJSON(cmd.OutOrStdout(), res)
				}
				f := res.Food
				fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\n", f.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.0f\n", f.Calories)
				fmt.Fprintf(cmd.OutOrStdout(), "Macros: P %.1fg | C %.1fg | F %.1fg\n", f.ProteinG, f.CarbsG, f.FatG)
				fmt.Fprintf(cmd.OutOrStdout(), "Confidence: %.0f%% (%s, cache=%t)\n", res.Confidence*100, res.Model, res.FromCache)
				return nil
			}

			consumedAt, err := parseDateTimeOrNow(e.Clock.Location, estimateDate, estimateTime)
			if err != nil {
				return err
			}
			entry, err := service.LogEstimate(e.DB, service.LogEstimateInput{
				Estimate:   res,
				Name:       estimateName,
				MealType:   estimateMeal,
				ConsumedAt: consumedAt,
			})
			if err != nil {
				return err
			}
			if estimateJSON {
				return printJSON(cmd.OutOrStdout(), entry)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %d kcal (entry %s)\n", entry.Name, entry.Calories, entry.ID)
			return nil
		})
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateImage, "image", "", "Path to a meal photo")
	estimateCmd.Flags().BoolVar(&estimateLog, "log", false, "Log the estimate as an entry")
	estimateCmd.Flags().StringVar(&estimateName, "name", "", "Entry name (default from the estimate)")
	estimateCmd.Flags().StringVar(&estimateMeal, "meal", "", "Meal type (with --log)")
	estimateCmd.Flags().StringVar(&estimateDate, "date", "", "Date YYYY-MM-DD (with --log)")
	estimateCmd.Flags().StringVar(&estimateTime, "time", "", "Time HH:MM (with --log)")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(estimateCmd)
}
