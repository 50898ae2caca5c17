// Package nutrition derives daily calorie and macro goals from a user profile.
//
// Every function here is pure. Inputs are assumed to be validated by the caller;
// out-of-range values yield numbers, never errors.
package nutrition

import (
	"math"

	"github.com/saadjs/nutrilog/internal/model"
)

// MinLoseCalories is the floor applied to weight-loss calorie goals.
const MinLoseCalories = 1200

const (
	fatShare       = 0.275
	kcalPerGramFat = 9
	kcalPerGramPC  = 4
)

var activityMultipliers = map[model.ActivityLevel]float64{
	model.ActivitySedentary:        1.2,
	model.ActivityLightlyActive:    1.375,
	model.ActivityModeratelyActive: 1.55,
	model.ActivityVeryActive:       1.725,
	model.ActivityExtremelyActive:  1.9,
}

var calorieAdjustments = map[model.Aggressiveness]int{
	model.AggressivenessSlow:     250,
	model.AggressivenessModerate: 500,
	model.AggressivenessFast:     1000,
}

var proteinBase = map[model.EatingType]float64{
	model.EatingLight:  1.4,
	model.EatingNormal: 1.6,
	model.EatingHeavy:  1.8,
}

type Result struct {
	BMR         int `json:"bmr"`
	TDEE        int `json:"tdee"`
	CalorieGoal int `json:"calorie_goal"`
	ProteinGoal int `json:"protein_goal"`
	CarbsGoal   int `json:"carbs_goal"`
	FatGoal     int `json:"fat_goal"`
}

// Goals converts a calculation into storable daily goals.
func (r Result) Goals() model.DailyGoals {
	return model.DailyGoals{
		Calories: r.CalorieGoal,
		ProteinG: r.ProteinGoal,
		CarbsG:   r.CarbsGoal,
		FatG:     r.FatGoal,
		Source:   model.GoalSourceCalculated,
	}
}

// Calculate runs the full pipeline: BMR, TDEE, calorie goal, then the macro split.
func Calculate(p model.UserProfile) Result {
	bmr := BMR(p.Gender, p.WeightKg, p.HeightCm, p.Age)
	tdee := TDEE(bmr, p.ActivityLevel)
	calories := CalorieGoal(tdee, p.WeightGoal, p.GoalAggressiveness)
	protein := ProteinGoal(p.WeightKg, p.EatingType, p.WeightGoal)
	fat := FatGoal(calories)
	return Result{
		BMR:         bmr,
		TDEE:        tdee,
		CalorieGoal: calories,
		ProteinGoal: protein,
		CarbsGoal:   CarbsGoal(calories, protein, fat),
		FatGoal:     fat,
	}
}

// BMR uses Mifflin-St Jeor. Anything other than female gets the male constant.
func BMR(gender model.Gender, weightKg, heightCm float64, age int) int {
	v := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == model.GenderFemale {
		v -= 161
	} else {
		v += 5
	}
	return round(v)
}

// ActivityMultiplier returns the TDEE factor for a level, 1.2 for unknown levels.
func ActivityMultiplier(level model.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[model.ActivitySedentary]
}

func TDEE(bmr int, level model.ActivityLevel) int {
	return round(float64(bmr) * ActivityMultiplier(level))
}

// CalorieAdjustment is the daily surplus or deficit for an aggressiveness tier.
func CalorieAdjustment(a model.Aggressiveness) int {
	if adj, ok := calorieAdjustments[a]; ok {
		return adj
	}
	return calorieAdjustments[model.AggressivenessModerate]
}

// CalorieGoal never returns less than MinLoseCalories for a lose goal.
func CalorieGoal(tdee int, goal model.WeightGoal, a model.Aggressiveness) int {
	switch goal {
	case model.WeightGoalLose:
		target := tdee - CalorieAdjustment(a)
		if target < MinLoseCalories {
			return MinLoseCalories
		}
		return target
	case model.WeightGoalGain:
		return tdee + CalorieAdjustment(a)
	default:
		return tdee
	}
}

// ProteinMultiplier is grams of protein per kg of body weight.
func ProteinMultiplier(eating model.EatingType, goal model.WeightGoal) float64 {
	m, ok := proteinBase[eating]
	if !ok {
		m = proteinBase[model.EatingNormal]
	}
	switch goal {
	case model.WeightGoalLose:
		m += 0.2
	case model.WeightGoalGain:
		m += 0.4
	}
	return m
}

func ProteinGoal(weightKg float64, eating model.EatingType, goal model.WeightGoal) int {
	return round(weightKg * ProteinMultiplier(eating, goal))
}

func FatGoal(calories int) int {
	return round(float64(calories) * fatShare / kcalPerGramFat)
}

// CarbsGoal fills the calories left after protein and fat. It is clamped at zero
// so extreme profiles never produce negative grams.
func CarbsGoal(calories, protein, fat int) int {
	rest := float64(calories - protein*kcalPerGramPC - fat*kcalPerGramFat)
	carbs := round(rest / kcalPerGramPC)
	if carbs < 0 {
		return 0
	}
	return carbs
}

func round(v float64) int {
	return int(math.Round(v))
}
