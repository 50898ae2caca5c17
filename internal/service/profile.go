package service

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/nutrition"
	"github.com/saadjs/nutrilog/internal/stats"
)

// ProfilePatch is a partial update; nil fields are left unchanged.
type ProfilePatch struct {
	Gender              *model.Gender         `json:"gender,omitempty"`
	Age                 *int                  `json:"age,omitempty"`
	HeightCm            *float64              `json:"height_cm,omitempty"`
	WeightKg            *float64              `json:"weight_kg,omitempty"`
	TargetWeightKg      *float64              `json:"target_weight_kg,omitempty"`
	ActivityLevel       *model.ActivityLevel  `json:"activity_level,omitempty"`
	WeightGoal          *model.WeightGoal     `json:"weight_goal,omitempty"`
	GoalAggressiveness  *model.Aggressiveness `json:"goal_aggressiveness,omitempty"`
	EatingType          *model.EatingType     `json:"eating_type,omitempty"`
	OnboardingCompleted *bool                 `json:"onboarding_completed,omitempty"`
}

// touchesCalculation reports whether the patch changes any calculator input.
func (p ProfilePatch) touchesCalculation() bool {
	return p.Gender != nil || p.Age != nil || p.HeightCm != nil || p.WeightKg != nil ||
		p.ActivityLevel != nil || p.WeightGoal != nil || p.GoalAggressiveness != nil || p.EatingType != nil
}

func (p ProfilePatch) apply(to *model.UserProfile) {
	if p.Gender != nil {
		to.Gender = *p.Gender
	}
	if p.Age != nil {
		to.Age = *p.Age
	}
	if p.HeightCm != nil {
		to.HeightCm = *p.HeightCm
	}
	if p.WeightKg != nil {
		to.WeightKg = *p.WeightKg
	}
	if p.TargetWeightKg != nil {
		to.TargetWeightKg = *p.TargetWeightKg
	}
	if p.ActivityLevel != nil {
		to.ActivityLevel = *p.ActivityLevel
	}
	if p.WeightGoal != nil {
		to.WeightGoal = *p.WeightGoal
	}
	if p.GoalAggressiveness != nil {
		to.GoalAggressiveness = *p.GoalAggressiveness
	}
	if p.EatingType != nil {
		to.EatingType = *p.EatingType
	}
	if p.OnboardingCompleted != nil {
		to.OnboardingCompleted = *p.OnboardingCompleted
	}
}

type ProfileUpdate struct {
	Profile     model.UserProfile `json:"profile"`
	Calculation *nutrition.Result `json:"calculation,omitempty"`
	Goals       *model.DailyGoals `json:"goals,omitempty"`
}

func ValidateProfile(p model.UserProfile) error {
	if _, err := ParseGender(string(p.Gender)); err != nil {
		return err
	}
	if p.Age <= 0 || p.Age > 120 {
		return invalidf("age must be between 1 and 120")
	}
	if p.HeightCm <= 0 {
		return invalidf("height must be > 0")
	}
	if p.WeightKg <= 0 {
		return invalidf("weight must be > 0")
	}
	if p.TargetWeightKg <= 0 {
		return invalidf("target weight must be > 0")
	}
	if _, err := ParseActivityLevel(string(p.ActivityLevel)); err != nil {
		return err
	}
	if _, err := ParseWeightGoal(string(p.WeightGoal)); err != nil {
		return err
	}
	if _, err := ParseAggressiveness(string(p.GoalAggressiveness)); err != nil {
		return err
	}
	_, err := ParseEatingType(string(p.EatingType))
	return err
}

// normalizeProfile canonicalizes enum spellings ("Lightly-Active") before validation.
func normalizeProfile(p *model.UserProfile) error {
	var err error
	if p.Gender, err = ParseGender(string(p.Gender)); err != nil {
		return err
	}
	if p.ActivityLevel, err = ParseActivityLevel(string(p.ActivityLevel)); err != nil {
		return err
	}
	if p.WeightGoal, err = ParseWeightGoal(string(p.WeightGoal)); err != nil {
		return err
	}
	if p.GoalAggressiveness, err = ParseAggressiveness(string(p.GoalAggressiveness)); err != nil {
		return err
	}
	if p.EatingType, err = ParseEatingType(string(p.EatingType)); err != nil {
		return err
	}
	return ValidateProfile(*p)
}

// GetProfile returns the installation profile, creating the default one on
// first access.
func GetProfile(db *sql.DB) (model.UserProfile, error) {
	p, err := loadProfile(db)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return model.UserProfile{}, err
	}
	def := model.DefaultProfile()
	if err := saveProfile(db, def); err != nil {
		return model.UserProfile{}, err
	}
	return loadProfile(db)
}

// UpdateProfile applies patch. Goals are recalculated when force is set, or when
// a calculator input changed and the current goals were not set by hand. The
// profile and the recalculated goals are written in one transaction.
func UpdateProfile(db *sql.DB, clock stats.Clock, patch ProfilePatch, force bool) (ProfileUpdate, error) {
	p, err := GetProfile(db)
	if err != nil {
		return ProfileUpdate{}, err
	}
	patch.apply(&p)
	if err := normalizeProfile(&p); err != nil {
		return ProfileUpdate{}, err
	}

	tx, err := db.Begin()
	if err != nil {
		return ProfileUpdate{}, fmt.Errorf("begin profile tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveProfile(tx, p); err != nil {
		return ProfileUpdate{}, err
	}
	out := ProfileUpdate{}
	out.Profile, err = loadProfile(tx)
	if err != nil {
		return ProfileUpdate{}, fmt.Errorf("reload profile: %w", err)
	}

	recalc := force
	if !recalc && patch.touchesCalculation() {
		current, err := CurrentGoals(tx, clock.Today())
		if err != nil {
			return ProfileUpdate{}, err
		}
		recalc = current == nil || current.Source != model.GoalSourceManual
	}
	if recalc {
		res, goals, err := recalculate(tx, clock, out.Profile)
		if err != nil {
			return ProfileUpdate{}, err
		}
		out.Calculation = &res
		out.Goals = &goals
	}
	if err := tx.Commit(); err != nil {
		return ProfileUpdate{}, fmt.Errorf("commit profile tx: %w", err)
	}
	return out, nil
}

// ResetProfile restores the default profile. Goals and entries are kept.
func ResetProfile(db *sql.DB) (model.UserProfile, error) {
	if err := saveProfile(db, model.DefaultProfile()); err != nil {
		return model.UserProfile{}, err
	}
	return loadProfile(db)
}

// RecalculateGoals runs the calculator on the stored profile and saves the
// result as today's calculated goals.
func RecalculateGoals(db *sql.DB, clock stats.Clock) (nutrition.Result, model.DailyGoals, error) {
	p, err := GetProfile(db)
	if err != nil {
		return nutrition.Result{}, model.DailyGoals{}, err
	}
	return recalculate(db, clock, p)
}

func recalculate(db querier, clock stats.Clock, p model.UserProfile) (nutrition.Result, model.DailyGoals, error) {
	res := nutrition.Calculate(p)
	goals := res.Goals()
	goals.EffectiveDate = clock.Today()
	saved, err := SetGoals(db, clock, SetGoalsInput{
		Calories:      goals.Calories,
		ProteinG:      goals.ProteinG,
		CarbsG:        goals.CarbsG,
		FatG:          goals.FatG,
		Source:        model.GoalSourceCalculated,
		EffectiveDate: goals.EffectiveDate,
	})
	if err != nil {
		return nutrition.Result{}, model.DailyGoals{}, err
	}
	return res, saved, nil
}

func loadProfile(db querier) (model.UserProfile, error) {
	var p model.UserProfile
	err := db.QueryRow(`
SELECT gender, age, height_cm, weight_kg, target_weight_kg, activity_level, weight_goal, goal_aggressiveness, eating_type, onboarding_completed, updated_at
FROM profile
WHERE id = 1
`).Scan(&p.Gender, &p.Age, &p.HeightCm, &p.WeightKg, &p.TargetWeightKg, &p.ActivityLevel, &p.WeightGoal, &p.GoalAggressiveness, &p.EatingType, &p.OnboardingCompleted, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func saveProfile(db querier, p model.UserProfile) error {
	_, err := db.Exec(`
INSERT INTO profile(id, gender, age, height_cm, weight_kg, target_weight_kg, activity_level, weight_goal, goal_aggressiveness, eating_type, onboarding_completed, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  gender=excluded.gender,
  age=excluded.age,
  height_cm=excluded.height_cm,
  weight_kg=excluded.weight_kg,
  target_weight_kg=excluded.target_weight_kg,
  activity_level=excluded.activity_level,
  weight_goal=excluded.weight_goal,
  goal_aggressiveness=excluded.goal_aggressiveness,
  eating_type=excluded.eating_type,
  onboarding_completed=excluded.onboarding_completed,
  updated_at=excluded.updated_at
`, p.Gender, p.Age, p.HeightCm, p.WeightKg, p.TargetWeightKg, p.ActivityLevel, p.WeightGoal, p.GoalAggressiveness, p.EatingType, p.OnboardingCompleted)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
