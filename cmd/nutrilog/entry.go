package nutrilog

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage logged food entries",
}

var (
	entryName     string
	entryCalories int
	entryProtein  float64
	entryCarbs    float64
	entryFat      float64
	entryMeal     string
	entryDate     string
	entryTime     string
	entryNotes    string

	listDate     string
	listFromDate string
	listToDate   string
	listMeal     string
	listLimit    int
	listJSON     bool

	clearYes bool
)

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			consumedAt, err := parseDateTimeOrNow(e.Clock.Location, entryDate, entryTime)
			if err != nil {
				return err
			}
			entry, err := service.CreateEntry(e.DB, service.CreateEntryInput{
				Name:       entryName,
				Calories:   entryCalories,
				ProteinG:   entryProtein,
				CarbsG:     entryCarbs,
				FatG:       entryFat,
				MealType:   entryMeal,
				ConsumedAt: consumedAt,
				Notes:      entryNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (%s, %d kcal)\n", entry.ID, entry.MealType, entry.Calories)
			return nil
		})
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListEntriesFilter{
			Date:     listDate,
			FromDate: listFromDate,
			ToDate:   listToDate,
			MealType: listMeal,
			Limit:    listLimit,
		}
		return withEnv(func(e *env) error {
			entries, err := service.ListEntries(e.DB, e.Clock, filter)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tMEAL\tNAME\tKCAL\tP\tC\tF\tSOURCE")
			for _, en := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%s\n",
					en.ID, en.ConsumedAt.In(e.Clock.Location).Format("2006-01-02 15:04"), en.MealType, en.Name,
					en.Calories, en.ProteinG, en.CarbsG, en.FatG, en.Source)
			}
			return nil
		})
	},
}

var entryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			en, err := service.GetEntry(e.DB, args[0])
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd.OutOrStdout(), en)
			}
			printEntry(cmd.OutOrStdout(), e, en)
			return nil
		})
	},
}

var entryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an entry; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			cur, err := service.GetEntry(e.DB, args[0])
			if err != nil {
				return err
			}
			in := service.UpdateEntryInput{
				ID:         cur.ID,
				Name:       cur.Name,
				Calories:   cur.Calories,
				ProteinG:   cur.ProteinG,
				CarbsG:     cur.CarbsG,
				FatG:       cur.FatG,
				MealType:   string(cur.MealType),
				ConsumedAt: cur.ConsumedAt,
				Notes:      cur.Notes,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = entryName
			}
			if flags.Changed("calories") {
				in.Calories = entryCalories
			}
			if flags.Changed("protein") {
				in.ProteinG = entryProtein
			}
			if flags.Changed("carbs") {
				in.CarbsG = entryCarbs
			}
			if flags.Changed("fat") {
				in.FatG = entryFat
			}
			if flags.Changed("meal") {
				in.MealType = entryMeal
			}
			if flags.Changed("notes") {
				in.Notes = entryNotes
			}
			if flags.Changed("date") || flags.Changed("time") {
				date, clock := entryDate, entryTime
				local := cur.ConsumedAt.In(e.Clock.Location)
				if date == "" {
					date = local.Format("2006-01-02")
				}
				if clock == "" {
					clock = local.Format("15:04")
				}
				in.ConsumedAt, err = parseDateTimeOrNow(e.Clock.Location, date, clock)
				if err != nil {
					return err
				}
			}
			updated, err := service.UpdateEntry(e.DB, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %s\n", updated.ID)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			if err := service.DeleteEntry(e.DB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", args[0])
			return nil
		})
	},
}

var entryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every logged entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to delete all entries without --yes")
		}
		return withEnv(func(e *env) error {
			n, err := service.ClearEntries(e.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", n)
			return nil
		})
	},
}

func printEntry(w io.Writer, e *env, en model.Entry) {
	fmt.Fprintf(w, "ID: %s\n", en.ID)
	fmt.Fprintf(w, "Date: %s\n", en.ConsumedAt.In(e.Clock.Location).Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Meal: %s\n", en.MealType)
	fmt.Fprintf(w, "Name: %s\n", en.Name)
	fmt.Fprintf(w, "Calories: %d\n", en.Calories)
	fmt.Fprintf(w, "Protein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\n", en.ProteinG, en.CarbsG, en.FatG)
	source := en.Source
	if en.SourceRef != "" {
		source += " (" + en.SourceRef + ")"
	}
	fmt.Fprintf(w, "Source: %s\n", source)
	if strings.TrimSpace(en.Notes) != "" {
		fmt.Fprintf(w, "Notes: %s\n", en.Notes)
	}
}

func addEntryFields(c *cobra.Command) {
	c.Flags().StringVar(&entryName, "name", "", "Food name")
	c.Flags().IntVar(&entryCalories, "calories", 0, "Calories")
	c.Flags().Float64Var(&entryProtein, "protein", 0, "Protein grams")
	c.Flags().Float64Var(&entryCarbs, "carbs", 0, "Carbs grams")
	c.Flags().Float64Var(&entryFat, "fat", 0, "Fat grams")
	c.Flags().StringVar(&entryMeal, "meal", "", "breakfast|lunch|dinner|snack (default from time of day)")
	c.Flags().StringVar(&entryDate, "date", "", "Date YYYY-MM-DD (default today)")
	c.Flags().StringVar(&entryTime, "time", "", "Time HH:MM (default now)")
	c.Flags().StringVar(&entryNotes, "notes", "", "Optional notes")
}

func init() {
	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryShowCmd, entryEditCmd, entryDeleteCmd, entryClearCmd)

	addEntryFields(entryAddCmd)
	_ = entryAddCmd.MarkFlagRequired("name")
	_ = entryAddCmd.MarkFlagRequired("calories")
	addEntryFields(entryEditCmd)

	entryListCmd.Flags().StringVar(&listDate, "date", "", "Filter by date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listFromDate, "from", "", "Filter from date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listToDate, "to", "", "Filter to date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listMeal, "meal", "", "Filter by meal type")
	entryListCmd.Flags().IntVar(&listLimit, "limit", 100, "Max rows")
	entryListCmd.Flags().BoolVar(&listJSON, "json", false, "Output JSON")
	entryShowCmd.Flags().BoolVar(&listJSON, "json", false, "Output JSON")

	entryClearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting all entries")

	rootCmd.AddCommand(entryCmd)
}
