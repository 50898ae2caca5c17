// Package stats turns sparse per-day calorie totals into period charts, streaks
// and compliance figures.
package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week", "weekly":
		return PeriodWeekly, nil
	case "month", "monthly":
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("invalid period %q (use weekly or monthly)", s)
	}
}

// Goal is the calorie target plus its direction. Gaining users meet the goal by
// eating at least Calories, everyone else by staying at or under it.
type Goal struct {
	Calories int  `json:"calories"`
	Gaining  bool `json:"gaining"`
}

// Met is false for a day without data regardless of direction.
func (g Goal) Met(calories int) bool {
	if calories == 0 {
		return false
	}
	if g.Gaining {
		return calories >= g.Calories
	}
	return calories <= g.Calories
}

type Day struct {
	DateKey  string `json:"date"`
	Label    string `json:"label"`
	Calories int    `json:"calories"`
	MetGoal  bool   `json:"met_goal"`
}

type Result struct {
	Period          Period `json:"period"`
	FromDate        string `json:"from_date"`
	ToDate          string `json:"to_date"`
	Goal            Goal   `json:"goal"`
	Days            []Day  `json:"days"`
	AverageCalories int    `json:"average_calories"`
	CurrentStreak   int    `json:"current_streak"`
	BestStreak      int    `json:"best_streak"`
	DaysGoalMet     int    `json:"days_goal_met"`
	DaysWithData    int    `json:"days_with_data"`
	ComplianceRate  int    `json:"compliance_rate"`
}

type Aggregator struct {
	clock Clock
}

func NewAggregator(clock Clock) *Aggregator {
	return &Aggregator{clock: clock}
}

// Range returns the inclusive period ending at the clock's today.
func (a *Aggregator) Range(p Period) (string, string) {
	return PeriodRange(p, a.clock.Today())
}

// Compute builds the period view from periodTotals and the streaks from
// allTotals. A nil allTotals falls back to periodTotals.
func (a *Aggregator) Compute(p Period, periodTotals, allTotals map[string]int, goal Goal) Result {
	today := a.clock.Today()
	from, to := PeriodRange(p, today)
	if allTotals == nil {
		allTotals = periodTotals
	}

	days := Series(p, from, to, periodTotals, goal)
	out := Result{
		Period:          p,
		FromDate:        from,
		ToDate:          to,
		Goal:            goal,
		Days:            days,
		AverageCalories: AverageCalories(days),
		CurrentStreak:   CurrentStreak(allTotals, today, goal),
	}
	out.BestStreak = BestStreak(allTotals, today, goal, out.CurrentStreak)
	out.DaysGoalMet, out.DaysWithData, out.ComplianceRate = Compliance(days)
	return out
}

// PeriodRange: weekly is the 7 days ending today, monthly starts on the 1st.
func PeriodRange(p Period, today string) (string, string) {
	if !ValidDateKey(today) {
		return today, today
	}
	if p == PeriodMonthly {
		return today[:len(today)-2] + "01", today
	}
	return AddDays(today, -6), today
}

func Series(p Period, from, to string, totals map[string]int, goal Goal) []Day {
	if !ValidDateKey(from) || !ValidDateKey(to) {
		return []Day{}
	}
	days := make([]Day, 0, 31)
	for key := from; key <= to; key = AddDays(key, 1) {
		calories := totals[key]
		days = append(days, Day{
			DateKey:  key,
			Label:    dayLabel(p, key),
			Calories: calories,
			MetGoal:  goal.Met(calories),
		})
	}
	return days
}

func dayLabel(p Period, key string) string {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return key
	}
	if p == PeriodMonthly {
		return strconv.Itoa(t.Day())
	}
	return t.Weekday().String()[:3]
}

// AverageCalories ignores days without data.
func AverageCalories(days []Day) int {
	sum, n := 0, 0
	for _, d := range days {
		if d.Calories > 0 {
			sum += d.Calories
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// CurrentStreak counts met days backwards from today. An empty today is still
// in progress, so counting starts from yesterday.
func CurrentStreak(totals map[string]int, today string, goal Goal) int {
	if !ValidDateKey(today) {
		return 0
	}
	day := today
	if totals[day] == 0 {
		day = AddDays(day, -1)
	}
	streak := 0
	for goal.Met(totals[day]) {
		streak++
		day = AddDays(day, -1)
	}
	return streak
}

// BestStreak scans from the earliest day with data through today. current is
// folded in so an ongoing run is never reported below itself.
func BestStreak(totals map[string]int, today string, goal Goal, current int) int {
	first := ""
	for key, calories := range totals {
		if calories <= 0 || key > today || !ValidDateKey(key) {
			continue
		}
		if first == "" || key < first {
			first = key
		}
	}
	best := 0
	if first != "" {
		run := 0
		for key := first; key <= today; key = AddDays(key, 1) {
			if goal.Met(totals[key]) {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
	}
	if current > best {
		return current
	}
	return best
}

// Compliance returns met days, days with data and the rounded percentage.
// Days without data are left out of the denominator.
func Compliance(days []Day) (met, withData, rate int) {
	for _, d := range days {
		if d.Calories <= 0 {
			continue
		}
		withData++
		if d.MetGoal {
			met++
		}
	}
	if withData == 0 {
		return met, withData, 0
	}
	return met, withData, int(math.Round(100 * float64(met) / float64(withData)))
}
