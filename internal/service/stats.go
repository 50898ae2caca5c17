package service

import (
	"database/sql"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/stats"
)

// PeriodStats aggregates the weekly or monthly view ending today. Streaks are
// computed over the full history against the current goal.
func PeriodStats(db *sql.DB, clock stats.Clock, period stats.Period) (stats.Result, error) {
	goals, err := ResolveGoals(db, clock)
	if err != nil {
		return stats.Result{}, err
	}
	p, err := GetProfile(db)
	if err != nil {
		return stats.Result{}, err
	}

	agg := stats.NewAggregator(clock)
	from, to := agg.Range(period)
	periodTotals, err := DailyCalorieTotals(db, clock, from, to)
	if err != nil {
		return stats.Result{}, err
	}
	allTotals, err := AllDailyCalorieTotals(db, clock)
	if err != nil {
		return stats.Result{}, err
	}

	goal := stats.Goal{Calories: goals.Calories, Gaining: p.WeightGoal == model.WeightGoalGain}
	return agg.Compute(period, periodTotals, allTotals, goal), nil
}
