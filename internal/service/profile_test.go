package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/service"
)

func ptr[T any](v T) *T { return &v }

func TestGetProfileCreatesDefault(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	p, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	want := model.DefaultProfile()
	if p.Gender != want.Gender || p.Age != want.Age || p.ActivityLevel != want.ActivityLevel {
		t.Fatalf("expected default profile %+v, got %+v", want, p)
	}
	if p.OnboardingCompleted {
		t.Fatalf("expected onboarding to be incomplete")
	}

	again, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile again: %v", err)
	}
	if again.WeightKg != p.WeightKg {
		t.Fatalf("expected stable profile, got %+v then %+v", p, again)
	}
}

func TestUpdateProfileRecalculatesCalculatedGoals(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 4, 1)

	up, err := service.UpdateProfile(db, clock, service.ProfilePatch{
		WeightKg:           ptr(80.0),
		HeightCm:           ptr(180.0),
		WeightGoal:         ptr(model.WeightGoalLose),
		GoalAggressiveness: ptr(model.AggressivenessModerate),
	}, false)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if up.Calculation == nil || up.Goals == nil {
		t.Fatalf("expected calculation and goals, got %+v", up)
	}
	if up.Calculation.BMR != 1780 {
		t.Fatalf("expected BMR 1780, got %d", up.Calculation.BMR)
	}
	if up.Goals.Calories != 2259 || up.Goals.Source != model.GoalSourceCalculated || up.Goals.EffectiveDate != "2026-04-01" {
		t.Fatalf("unexpected recalculated goals: %+v", up.Goals)
	}

	current, err := service.CurrentGoals(db, "2026-04-01")
	if err != nil {
		t.Fatalf("current goals: %v", err)
	}
	if current == nil || current.Calories != 2259 {
		t.Fatalf("expected stored goal of 2259, got %+v", current)
	}
}

func TestUpdateProfileKeepsManualGoals(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 4, 1)

	if _, err := service.SetGoals(db, clock, service.SetGoalsInput{Calories: 1900, ProteinG: 140, CarbsG: 190, FatG: 60}); err != nil {
		t.Fatalf("set goals: %v", err)
	}

	up, err := service.UpdateProfile(db, clock, service.ProfilePatch{WeightKg: ptr(90.0)}, false)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if up.Goals != nil || up.Profile.WeightKg != 90 {
		t.Fatalf("expected weight 90 with goals untouched, got %+v", up)
	}

	current, err := service.CurrentGoals(db, "2026-04-01")
	if err != nil {
		t.Fatalf("current goals: %v", err)
	}
	if current == nil || current.Calories != 1900 {
		t.Fatalf("expected manual goal of 1900 to survive, got %+v", current)
	}

	up, err = service.UpdateProfile(db, clock, service.ProfilePatch{}, true)
	if err != nil {
		t.Fatalf("forced update: %v", err)
	}
	if up.Goals == nil || up.Goals.Source != model.GoalSourceCalculated {
		t.Fatalf("expected forced recalculation, got %+v", up.Goals)
	}
}

func TestUpdateProfileRollsBackWhenGoalsCannotBeSaved(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 4, 1)

	before, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if _, err := db.Exec(`CREATE TRIGGER goals_locked BEFORE INSERT ON goals BEGIN SELECT RAISE(ABORT, 'goals locked'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := service.UpdateProfile(db, clock, service.ProfilePatch{WeightKg: ptr(95.0)}, false); err == nil {
		t.Fatalf("expected update to fail when goals cannot be written")
	}

	after, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile after failure: %v", err)
	}
	if after.WeightKg != before.WeightKg {
		t.Fatalf("expected profile weight %.1f to be kept, got %.1f", before.WeightKg, after.WeightKg)
	}
	g, err := service.CurrentGoals(db, "2026-04-01")
	if err != nil {
		t.Fatalf("current goals: %v", err)
	}
	if g != nil {
		t.Fatalf("expected no goals after failed update, got %+v", g)
	}
}

func TestUpdateProfileOnboardingOnlyDoesNotRecalculate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	up, err := service.UpdateProfile(db, utcClock(2026, 4, 1), service.ProfilePatch{OnboardingCompleted: ptr(true)}, false)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if !up.Profile.OnboardingCompleted || up.Calculation != nil {
		t.Fatalf("expected onboarding only, got %+v", up)
	}
}

func TestUpdateProfileValidates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 4, 1)

	if _, err := service.UpdateProfile(db, clock, service.ProfilePatch{Age: ptr(0)}, false); !errors.Is(err, service.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for age 0, got %v", err)
	}
	if _, err := service.UpdateProfile(db, clock, service.ProfilePatch{ActivityLevel: ptr(model.ActivityLevel("couch"))}, false); !errors.Is(err, service.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown activity, got %v", err)
	}

	p, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Age != 30 {
		t.Fatalf("expected age 30 to be kept, got %d", p.Age)
	}
}

func TestResetProfileKeepsGoals(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 4, 1)

	if _, err := service.UpdateProfile(db, clock, service.ProfilePatch{Age: ptr(45), OnboardingCompleted: ptr(true)}, false); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	p, err := service.ResetProfile(db)
	if err != nil {
		t.Fatalf("reset profile: %v", err)
	}
	if p.Age != 30 || p.OnboardingCompleted {
		t.Fatalf("expected default profile after reset, got %+v", p)
	}

	g, err := service.CurrentGoals(db, "2026-04-01")
	if err != nil {
		t.Fatalf("current goals: %v", err)
	}
	if g == nil {
		t.Fatalf("expected goals to survive a profile reset")
	}
}

func TestRecalculateGoalsPersists(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	res, goals, err := service.RecalculateGoals(db, utcClock(2026, 4, 1))
	if err != nil {
		t.Fatalf("recalculate goals: %v", err)
	}
	if goals.Calories != res.CalorieGoal || goals.Calories != res.TDEE {
		t.Fatalf("expected stored goal to match calculation %+v, got %+v", res, goals)
	}
	if goals.ID == 0 {
		t.Fatalf("expected a persisted goal id")
	}
}
