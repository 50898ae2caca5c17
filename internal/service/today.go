package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/stats"
)

type DayStatus struct {
	Date              string           `json:"date"`
	Calories          int              `json:"calories"`
	ProteinG          float64          `json:"protein_g"`
	CarbsG            float64          `json:"carbs_g"`
	FatG              float64          `json:"fat_g"`
	Goals             model.DailyGoals `json:"goals"`
	GoalStored        bool             `json:"goal_stored"`
	RemainingCalories int              `json:"remaining_calories"`
	RemainingProteinG float64          `json:"remaining_protein_g"`
	RemainingCarbsG   float64          `json:"remaining_carbs_g"`
	RemainingFatG     float64          `json:"remaining_fat_g"`
	EntryCount        int              `json:"entry_count"`
	Entries           []model.Entry    `json:"entries"`
}

// dayEntryLimit caps the rows returned in DayStatus.Entries. Totals and
// EntryCount always cover the whole day.
const dayEntryLimit = 1000

// DaySummary reports what was eaten on date (default today) against the goals
// in force that day. Without stored goals the profile's calculated goals are used.
func DaySummary(db *sql.DB, clock stats.Clock, date string) (*DayStatus, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = clock.Today()
	}
	start, end, err := dayRangeMillis(clock, date, date)
	if err != nil {
		return nil, err
	}
	status := &DayStatus{Date: date}
	err = db.QueryRow(`
SELECT COUNT(1), COALESCE(SUM(calories), 0), COALESCE(SUM(protein_g), 0), COALESCE(SUM(carbs_g), 0), COALESCE(SUM(fat_g), 0)
FROM entries
WHERE consumed_at_ms >= ? AND consumed_at_ms < ?
`, start, end).Scan(&status.EntryCount, &status.Calories, &status.ProteinG, &status.CarbsG, &status.FatG)
	if err != nil {
		return nil, fmt.Errorf("sum entries for %s: %w", date, err)
	}
	status.Entries, err = ListEntries(db, clock, ListEntriesFilter{Date: date, Limit: dayEntryLimit})
	if err != nil {
		return nil, err
	}

	goal, err := CurrentGoals(db, date)
	if err != nil {
		return nil, err
	}
	if goal != nil {
		status.Goals = *goal
		status.GoalStored = true
	} else {
		p, err := GetProfile(db)
		if err != nil {
			return nil, err
		}
		status.Goals = calculateGoals(p)
	}
	status.RemainingCalories = status.Goals.Calories - status.Calories
	status.RemainingProteinG = float64(status.Goals.ProteinG) - status.ProteinG
	status.RemainingCarbsG = float64(status.Goals.CarbsG) - status.CarbsG
	status.RemainingFatG = float64(status.Goals.FatG) - status.FatG
	return status, nil
}
