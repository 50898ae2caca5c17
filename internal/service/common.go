package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/saadjs/nutrilog/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return invalidf("%s must be >= 0", name)
	}
	return nil
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidf("%s must be >= 0", name)
	}
	return nil
}

func validateMacros(calories int, protein, carbs, fat float64) error {
	if err := validateNonNegativeInt("calories", calories); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("protein", protein); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("carbs", carbs); err != nil {
		return err
	}
	return validateNonNegativeFloat("fat", fat)
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func ParseMealType(value string) (model.MealType, error) {
	switch m := model.MealType(normalizeName(value)); m {
	case model.MealBreakfast, model.MealLunch, model.MealDinner, model.MealSnack:
		return m, nil
	case "snacks":
		return model.MealSnack, nil
	default:
		return "", invalidf("meal type %q (use breakfast, lunch, dinner, snack)", value)
	}
}

func ParseGender(value string) (model.Gender, error) {
	switch g := model.Gender(normalizeName(value)); g {
	case model.GenderMale, model.GenderFemale, model.GenderOther:
		return g, nil
	default:
		return "", invalidf("gender %q (use male, female, other)", value)
	}
}

func ParseActivityLevel(value string) (model.ActivityLevel, error) {
	switch a := model.ActivityLevel(strings.ReplaceAll(normalizeName(value), "-", "_")); a {
	case model.ActivitySedentary, model.ActivityLightlyActive, model.ActivityModeratelyActive, model.ActivityVeryActive, model.ActivityExtremelyActive:
		return a, nil
	default:
		return "", invalidf("activity level %q (use sedentary, lightly_active, moderately_active, very_active, extremely_active)", value)
	}
}

func ParseWeightGoal(value string) (model.WeightGoal, error) {
	switch g := model.WeightGoal(normalizeName(value)); g {
	case model.WeightGoalLose, model.WeightGoalMaintain, model.WeightGoalGain:
		return g, nil
	default:
		return "", invalidf("weight goal %q (use lose, maintain, gain)", value)
	}
}

func ParseAggressiveness(value string) (model.Aggressiveness, error) {
	switch a := model.Aggressiveness(normalizeName(value)); a {
	case model.AggressivenessSlow, model.AggressivenessModerate, model.AggressivenessFast:
		return a, nil
	default:
		return "", invalidf("goal aggressiveness %q (use slow, moderate, fast)", value)
	}
}

func ParseEatingType(value string) (model.EatingType, error) {
	switch e := model.EatingType(normalizeName(value)); e {
	case model.EatingLight, model.EatingNormal, model.EatingHeavy:
		return e, nil
	default:
		return "", invalidf("eating type %q (use light, normal, heavy)", value)
	}
}
