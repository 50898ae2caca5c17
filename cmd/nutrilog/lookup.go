package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var (
	lookupJSON     bool
	lookupLog      bool
	lookupServings float64
	lookupMeal     string
	lookupDate     string
	lookupTime     string
	lookupPurgeAll bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up packaged food nutrition",
}

var lookupBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a barcode on Open Food Facts (cached for 30 days)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			client := service.NewOpenFoodFactsClient(e.Config.Barcode.BaseURL)
			if lookupLog {
				consumedAt, err := parseDateTimeOrNow(e.Clock.Location, lookupDate, lookupTime)
				if err != nil {
					return err
				}
				entry, err := service.LogBarcode(cmd.Context(), e.DB, client, service.LogBarcodeInput{
					Barcode:    args[0],
					Servings:   lookupServings,
					MealType:   lookupMeal,
					ConsumedAt: consumedAt,
				})
				if err != nil {
					return err
				}
				if lookupJSON {
					return printJSON(cmd.OutOrStdout(), entry)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %d kcal (entry %s)\n", entry.Name, entry.Calories, entry.ID)
				return nil
			}

			res, err := service.LookupBarcode(cmd.Context(), e.DB, client, args[0])
			if err != nil {
				return err
			}
			if lookupJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			f := res.Food
			fmt.Fprintf(cmd.OutOrStdout(), "Provider: %s\n", res.Provider)
			fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\n", res.Barcode)
			fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\n", f.Name)
			if f.Brand != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Brand: %s\n", f.Brand)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving: %.1f %s\n", f.ServingAmount, f.ServingUnit)
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.1f\n", f.Calories)
			fmt.Fprintf(cmd.OutOrStdout(), "Macros: P %.1fg | C %.1fg | F %.1fg\n", f.ProteinG, f.CarbsG, f.FatG)
			fmt.Fprintf(cmd.OutOrStdout(), "Source: cache=%t\n", res.FromCache)
			return nil
		})
	},
}

var lookupPurgeCmd = &cobra.Command{
	Use:   "purge-cache [code]",
	Short: "Drop cached barcode lookups",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := ""
		if len(args) == 1 {
			code = args[0]
		} else if !lookupPurgeAll {
			return fmt.Errorf("pass a barcode or --all")
		}
		return withEnv(func(e *env) error {
			n, err := service.PurgeBarcodeCache(e.DB, code)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached lookups\n", n)
			return nil
		})
	},
}

func init() {
	lookupBarcodeCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output JSON")
	lookupBarcodeCmd.Flags().BoolVar(&lookupLog, "log", false, "Log the product as an entry")
	lookupBarcodeCmd.Flags().Float64Var(&lookupServings, "servings", 1, "Servings eaten (with --log)")
	lookupBarcodeCmd.Flags().StringVar(&lookupMeal, "meal", "", "Meal type (with --log)")
	lookupBarcodeCmd.Flags().StringVar(&lookupDate, "date", "", "Date YYYY-MM-DD (with --log)")
	lookupBarcodeCmd.Flags().StringVar(&lookupTime, "time", "", "Time HH:MM (with --log)")
	lookupPurgeCmd.Flags().BoolVar(&lookupPurgeAll, "all", false, "Purge every cached lookup")

	lookupCmd.AddCommand(lookupBarcodeCmd, lookupPurgeCmd)
	rootCmd.AddCommand(lookupCmd)
}
