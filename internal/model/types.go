package model

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtremelyActive  ActivityLevel = "extremely_active"
)

type WeightGoal string

const (
	WeightGoalLose     WeightGoal = "lose"
	WeightGoalMaintain WeightGoal = "maintain"
	WeightGoalGain     WeightGoal = "gain"
)

type Aggressiveness string

const (
	AggressivenessSlow     Aggressiveness = "slow"
	AggressivenessModerate Aggressiveness = "moderate"
	AggressivenessFast     Aggressiveness = "fast"
)

type EatingType string

const (
	EatingLight  EatingType = "light"
	EatingNormal EatingType = "normal"
	EatingHeavy  EatingType = "heavy"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

const (
	SourceManual  = "manual"
	SourceBarcode = "barcode"
	SourceAI      = "ai"
)

const (
	GoalSourceCalculated = "calculated"
	GoalSourceManual     = "manual"
)

// UserProfile is the single per-installation profile the goal calculator runs on.
type UserProfile struct {
	Gender              Gender         `json:"gender"`
	Age                 int            `json:"age"`
	HeightCm            float64        `json:"height_cm"`
	WeightKg            float64        `json:"weight_kg"`
	TargetWeightKg      float64        `json:"target_weight_kg"`
	ActivityLevel       ActivityLevel  `json:"activity_level"`
	WeightGoal          WeightGoal     `json:"weight_goal"`
	GoalAggressiveness  Aggressiveness `json:"goal_aggressiveness"`
	EatingType          EatingType     `json:"eating_type"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// DefaultProfile is what a fresh installation starts with.
func DefaultProfile() UserProfile {
	return UserProfile{
		Gender:             GenderMale,
		Age:                30,
		HeightCm:           170,
		WeightKg:           70,
		TargetWeightKg:     70,
		ActivityLevel:      ActivityModeratelyActive,
		WeightGoal:         WeightGoalMaintain,
		GoalAggressiveness: AggressivenessModerate,
		EatingType:         EatingNormal,
	}
}

type DailyGoals struct {
	ID            int64     `json:"id"`
	Calories      int       `json:"calories"`
	ProteinG      int       `json:"protein_g"`
	CarbsG        int       `json:"carbs_g"`
	FatG          int       `json:"fat_g"`
	Source        string    `json:"source"`
	EffectiveDate string    `json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// Entry is one logged food record.
type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Calories   int       `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	ConsumedAt time.Time `json:"consumed_at"`
	MealType   MealType  `json:"meal_type"`
	Source     string    `json:"source"`
	SourceRef  string    `json:"source_ref,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FoodFacts is nutrition data returned by a barcode or AI lookup, per serving.
type FoodFacts struct {
	Name          string  `json:"name"`
	Brand         string  `json:"brand,omitempty"`
	ServingAmount float64 `json:"serving_amount,omitempty"`
	ServingUnit   string  `json:"serving_unit,omitempty"`
	Calories      float64 `json:"calories"`
	ProteinG      float64 `json:"protein_g"`
	CarbsG        float64 `json:"carbs_g"`
	FatG          float64 `json:"fat_g"`
}
