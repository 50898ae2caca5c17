package nutrilog

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/nutrition"
	"github.com/saadjs/nutrilog/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the body profile used to calculate goals",
}

var (
	profileGender      string
	profileAge         int
	profileHeight      float64
	profileWeight      float64
	profileTarget      float64
	profileActivity    string
	profileWeightGoal  string
	profileAggressive  string
	profileEatingType  string
	profileRecalculate bool
	profileJSON        bool
)

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile and what it calculates to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProfile(sqldb)
			if err != nil {
				return err
			}
			res := nutrition.Calculate(p)
			if profileJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"profile": p, "calculation": res})
			}
			printProfile(cmd.OutOrStdout(), p)
			printCalculation(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields; goals follow unless they were set by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := service.ProfilePatch{}
		flags := cmd.Flags()
		if flags.Changed("gender") {
			g := model.Gender(profileGender)
			patch.Gender = &g
		}
		if flags.Changed("age") {
			patch.Age = &profileAge
		}
		if flags.Changed("height") {
			patch.HeightCm = &profileHeight
		}
		if flags.Changed("weight") {
			patch.WeightKg = &profileWeight
		}
		if flags.Changed("target-weight") {
			patch.TargetWeightKg = &profileTarget
		}
		if flags.Changed("activity") {
			a := model.ActivityLevel(profileActivity)
			patch.ActivityLevel = &a
		}
		if flags.Changed("goal") {
			g := model.WeightGoal(profileWeightGoal)
			patch.WeightGoal = &g
		}
		if flags.Changed("pace") {
			a := model.Aggressiveness(profileAggressive)
			patch.GoalAggressiveness = &a
		}
		if flags.Changed("eating") {
			e := model.EatingType(profileEatingType)
			patch.EatingType = &e
		}
		done := true
		patch.OnboardingCompleted = &done

		return withEnv(func(e *env) error {
			up, err := service.UpdateProfile(e.DB, e.Clock, patch, profileRecalculate)
			if err != nil {
				return err
			}
			if profileJSON {
				return printJSON(cmd.OutOrStdout(), up)
			}
			printProfile(cmd.OutOrStdout(), up.Profile)
			if up.Goals != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Goals recalculated from %s: %d kcal, P %dg C %dg F %dg\n",
					up.Goals.EffectiveDate, up.Goals.Calories, up.Goals.ProteinG, up.Goals.CarbsG, up.Goals.FatG)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Goals unchanged (manual goals in force; use --recalculate to replace them)")
			}
			return nil
		})
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default profile (entries and goals are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.ResetProfile(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile reset to defaults")
			printProfile(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

func printProfile(w io.Writer, p model.UserProfile) {
	fmt.Fprintf(w, "Gender: %s\n", p.Gender)
	fmt.Fprintf(w, "Age: %d\n", p.Age)
	fmt.Fprintf(w, "Height: %.1f cm\n", p.HeightCm)
	fmt.Fprintf(w, "Weight: %.1f kg (target %.1f kg)\n", p.WeightKg, p.TargetWeightKg)
	fmt.Fprintf(w, "Activity: %s\n", p.ActivityLevel)
	fmt.Fprintf(w, "Goal: %s (%s)\n", p.WeightGoal, p.GoalAggressiveness)
	fmt.Fprintf(w, "Eating: %s\n", p.EatingType)
}

func printCalculation(w io.Writer, r nutrition.Result) {
	fmt.Fprintf(w, "BMR: %d kcal\n", r.BMR)
	fmt.Fprintf(w, "TDEE: %d kcal\n", r.TDEE)
	fmt.Fprintf(w, "Calculated goal: %d kcal, P %dg C %dg F %dg\n", r.CalorieGoal, r.ProteinGoal, r.CarbsGoal, r.FatGoal)
}

func init() {
	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output JSON")

	profileSetCmd.Flags().StringVar(&profileGender, "gender", "", "male|female|other")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	profileSetCmd.Flags().Float64Var(&profileTarget, "target-weight", 0, "Target weight in kg")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "", "sedentary|lightly_active|moderately_active|very_active|extremely_active")
	profileSetCmd.Flags().StringVar(&profileWeightGoal, "goal", "", "lose|maintain|gain")
	profileSetCmd.Flags().StringVar(&profileAggressive, "pace", "", "slow|moderate|fast")
	profileSetCmd.Flags().StringVar(&profileEatingType, "eating", "", "light|normal|heavy")
	profileSetCmd.Flags().BoolVar(&profileRecalculate, "recalculate", false, "Replace goals with calculated ones even if set by hand")
	profileSetCmd.Flags().BoolVar(&profileJSON, "json", false, "Output JSON")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileResetCmd)
	rootCmd.AddCommand(profileCmd)
}
