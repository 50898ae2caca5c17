package nutrition

import (
	"testing"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(gender model.Gender, kg, cm float64, age int, level model.ActivityLevel, goal model.WeightGoal, a model.Aggressiveness, eating model.EatingType) model.UserProfile {
	return model.UserProfile{
		Gender:             gender,
		Age:                age,
		HeightCm:           cm,
		WeightKg:           kg,
		TargetWeightKg:     kg,
		ActivityLevel:      level,
		WeightGoal:         goal,
		GoalAggressiveness: a,
		EatingType:         eating,
	}
}

func TestCalculateLoseModerate(t *testing.T) {
	t.Parallel()
	got := Calculate(profile(model.GenderMale, 80, 180, 30, model.ActivityModeratelyActive, model.WeightGoalLose, model.AggressivenessModerate, model.EatingNormal))

	assert.Equal(t, Result{
		BMR:         1780,
		TDEE:        2759,
		CalorieGoal: 2259,
		ProteinGoal: 144,
		CarbsGoal:   266,
		FatGoal:     69,
	}, got)
}

func TestCalculateFemaleMaintain(t *testing.T) {
	t.Parallel()
	got := Calculate(profile(model.GenderFemale, 60, 165, 25, model.ActivitySedentary, model.WeightGoalMaintain, model.AggressivenessFast, model.EatingLight))

	assert.Equal(t, 1345, got.BMR)
	assert.Equal(t, 1614, got.TDEE)
	assert.Equal(t, 1614, got.CalorieGoal)
	assert.Equal(t, 84, got.ProteinGoal)
	assert.Equal(t, 49, got.FatGoal)
	assert.Equal(t, 209, got.CarbsGoal)
}

func TestCalculateGainHeavyEater(t *testing.T) {
	t.Parallel()
	got := Calculate(profile(model.GenderMale, 70, 175, 20, model.ActivityVeryActive, model.WeightGoalGain, model.AggressivenessFast, model.EatingHeavy))

	assert.Equal(t, 1699, got.BMR)
	assert.Equal(t, 2931, got.TDEE)
	assert.Equal(t, 3931, got.CalorieGoal)
	assert.Equal(t, 154, got.ProteinGoal)
}

func TestBMRTreatsOtherAsNonFemale(t *testing.T) {
	t.Parallel()
	male := BMR(model.GenderMale, 70, 170, 40)
	other := BMR(model.GenderOther, 70, 170, 40)
	female := BMR(model.GenderFemale, 70, 170, 40)

	assert.Equal(t, male, other)
	assert.Equal(t, male-166, female)
}

func TestLoseGoalRespectsFloor(t *testing.T) {
	t.Parallel()
	got := Calculate(profile(model.GenderFemale, 45, 150, 60, model.ActivitySedentary, model.WeightGoalLose, model.AggressivenessFast, model.EatingLight))

	assert.Equal(t, 927, got.BMR)
	assert.Equal(t, 1112, got.TDEE)
	assert.Equal(t, MinLoseCalories, got.CalorieGoal)
}

func TestCarbsGoalClampedAtZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, CarbsGoal(1200, 300, 40))

	got := Calculate(profile(model.GenderFemale, 110, 100, 90, model.ActivitySedentary, model.WeightGoalLose, model.AggressivenessFast, model.EatingHeavy))
	require.Equal(t, MinLoseCalories, got.CalorieGoal)
	assert.Equal(t, 220, got.ProteinGoal)
	assert.Equal(t, 0, got.CarbsGoal)
}

func TestUnknownEnumsFallBack(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.2, ActivityMultiplier("couch"))
	assert.Equal(t, 500, CalorieAdjustment("reckless"))
	assert.InDelta(t, 1.6, ProteinMultiplier("grazer", model.WeightGoalMaintain), 1e-9)
}

func TestCalculatorProperties(t *testing.T) {
	t.Parallel()
	genders := []model.Gender{model.GenderMale, model.GenderFemale, model.GenderOther}
	levels := []model.ActivityLevel{
		model.ActivitySedentary,
		model.ActivityLightlyActive,
		model.ActivityModeratelyActive,
		model.ActivityVeryActive,
		model.ActivityExtremelyActive,
	}
	goals := []model.WeightGoal{model.WeightGoalLose, model.WeightGoalMaintain, model.WeightGoalGain}
	paces := []model.Aggressiveness{model.AggressivenessSlow, model.AggressivenessModerate, model.AggressivenessFast}
	eaters := []model.EatingType{model.EatingLight, model.EatingNormal, model.EatingHeavy}
	bodies := []struct {
		kg  float64
		cm  float64
		age int
	}{
		{48, 152, 70},
		{62.5, 168, 34},
		{95, 188, 22},
	}

	for _, g := range genders {
		for _, l := range levels {
			for _, wg := range goals {
				for _, p := range paces {
					for _, e := range eaters {
						for _, b := range bodies {
							in := profile(g, b.kg, b.cm, b.age, l, wg, p, e)
							got := Calculate(in)

							require.Equal(t, got, Calculate(in), "calculation must be deterministic")
							switch wg {
							case model.WeightGoalLose:
								assert.GreaterOrEqual(t, got.CalorieGoal, MinLoseCalories)
							case model.WeightGoalMaintain:
								assert.Equal(t, got.TDEE, got.CalorieGoal)
							case model.WeightGoalGain:
								assert.Greater(t, got.CalorieGoal, got.TDEE)
							}
							if got.CarbsGoal > 0 {
								macroKcal := got.ProteinGoal*4 + got.FatGoal*9 + got.CarbsGoal*4
								assert.InDelta(t, got.CalorieGoal, macroKcal, 2)
							}
						}
					}
				}
			}
		}
	}
}

func TestResultGoals(t *testing.T) {
	t.Parallel()
	goals := Result{CalorieGoal: 2000, ProteinGoal: 120, CarbsGoal: 230, FatGoal: 61}.Goals()

	assert.Equal(t, 2000, goals.Calories)
	assert.Equal(t, 120, goals.ProteinG)
	assert.Equal(t, 230, goals.CarbsG)
	assert.Equal(t, 61, goals.FatG)
	assert.Equal(t, model.GoalSourceCalculated, goals.Source)
}
