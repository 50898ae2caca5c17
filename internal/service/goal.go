package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/nutrition"
	"github.com/saadjs/nutrilog/internal/stats"
)

type SetGoalsInput struct {
	Calories      int
	ProteinG      int
	CarbsG        int
	FatG          int
	Source        string
	EffectiveDate string
}

// SetGoals upserts the goals row for its effective date (default today). Manual
// goals stay in force until the next recalculation.
func SetGoals(db querier, clock stats.Clock, in SetGoalsInput) (model.DailyGoals, error) {
	for _, f := range []struct {
		name  string
		value int
	}{{"calories", in.Calories}, {"protein", in.ProteinG}, {"carbs", in.CarbsG}, {"fat", in.FatG}} {
		if err := validateNonNegativeInt(f.name, f.value); err != nil {
			return model.DailyGoals{}, err
		}
	}
	in.Source = strings.TrimSpace(in.Source)
	if in.Source == "" {
		in.Source = model.GoalSourceManual
	}
	if in.Source != model.GoalSourceManual && in.Source != model.GoalSourceCalculated {
		return model.DailyGoals{}, invalidf("goal source %q", in.Source)
	}
	in.EffectiveDate = strings.TrimSpace(in.EffectiveDate)
	if in.EffectiveDate == "" {
		in.EffectiveDate = clock.Today()
	}
	if !stats.ValidDateKey(in.EffectiveDate) {
		return model.DailyGoals{}, invalidf("effective date %q (expected YYYY-MM-DD)", in.EffectiveDate)
	}

	_, err := db.Exec(`
INSERT INTO goals(calories, protein_g, carbs_g, fat_g, source, effective_date)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(effective_date) DO UPDATE SET
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g,
  source=excluded.source
`, in.Calories, in.ProteinG, in.CarbsG, in.FatG, in.Source, in.EffectiveDate)
	if err != nil {
		return model.DailyGoals{}, fmt.Errorf("set goals: %w", err)
	}
	g, err := CurrentGoals(db, in.EffectiveDate)
	if err != nil {
		return model.DailyGoals{}, err
	}
	if g == nil {
		return model.DailyGoals{}, fmt.Errorf("set goals: row for %s not found after write", in.EffectiveDate)
	}
	return *g, nil
}

// CurrentGoals returns the goals in force on date, or nil when none were ever set.
func CurrentGoals(db querier, date string) (*model.DailyGoals, error) {
	date = strings.TrimSpace(date)
	if !stats.ValidDateKey(date) {
		return nil, invalidf("date %q (expected YYYY-MM-DD)", date)
	}

	var g model.DailyGoals
	err := db.QueryRow(`
SELECT id, calories, protein_g, carbs_g, fat_g, source, effective_date, created_at
FROM goals
WHERE effective_date <= ?
ORDER BY effective_date DESC
LIMIT 1
`, date).Scan(&g.ID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.Source, &g.EffectiveDate, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("current goals for %s: %w", date, err)
	}
	return &g, nil
}

func GoalHistory(db *sql.DB) ([]model.DailyGoals, error) {
	rows, err := db.Query(`
SELECT id, calories, protein_g, carbs_g, fat_g, source, effective_date, created_at
FROM goals
ORDER BY effective_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list goal history: %w", err)
	}
	defer rows.Close()

	goals := make([]model.DailyGoals, 0)
	for rows.Next() {
		var g model.DailyGoals
		if err := rows.Scan(&g.ID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.Source, &g.EffectiveDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal history: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal history: %w", err)
	}
	return goals, nil
}

// ResolveGoals returns today's stored goals, falling back to a calculation from
// the profile when nothing has been stored yet. Nothing is written.
func ResolveGoals(db *sql.DB, clock stats.Clock) (model.DailyGoals, error) {
	g, err := CurrentGoals(db, clock.Today())
	if err != nil {
		return model.DailyGoals{}, err
	}
	if g != nil {
		return *g, nil
	}
	p, err := GetProfile(db)
	if err != nil {
		return model.DailyGoals{}, err
	}
	return calculateGoals(p), nil
}

func calculateGoals(p model.UserProfile) model.DailyGoals {
	return nutrition.Calculate(p).Goals()
}
