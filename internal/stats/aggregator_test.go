package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(y int, m time.Month, d int) *LocalCalendarClock {
	return &LocalCalendarClock{
		Location: time.UTC,
		Now: func() time.Time {
			return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
		},
	}
}

var loseGoal = Goal{Calories: 2000}

func TestGoalMetAsymmetry(t *testing.T) {
	t.Parallel()
	gain := Goal{Calories: 2000, Gaining: true}

	assert.True(t, gain.Met(2200))
	assert.False(t, loseGoal.Met(2200))
	assert.True(t, gain.Met(2000))
	assert.True(t, loseGoal.Met(2000))
	assert.False(t, gain.Met(0))
	assert.False(t, loseGoal.Met(0))
}

func TestComputeStreakScenarioWithGap(t *testing.T) {
	t.Parallel()
	totals := map[string]int{
		"2024-01-01": 1800,
		"2024-01-02": 0,
		"2024-01-03": 1900,
	}
	agg := NewAggregator(fixedClock(2024, 1, 3))

	res := agg.Compute(PeriodWeekly, totals, totals, loseGoal)

	require.Len(t, res.Days, 7)
	assert.Equal(t, "2023-12-28", res.FromDate)
	assert.Equal(t, "2024-01-03", res.ToDate)
	byKey := map[string]Day{}
	for _, d := range res.Days {
		byKey[d.DateKey] = d
	}
	assert.True(t, byKey["2024-01-01"].MetGoal)
	assert.False(t, byKey["2024-01-02"].MetGoal)
	assert.True(t, byKey["2024-01-03"].MetGoal)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 1, res.BestStreak)
	assert.Equal(t, 2, res.DaysGoalMet)
	assert.Equal(t, 2, res.DaysWithData)
	assert.Equal(t, 100, res.ComplianceRate)
	assert.Equal(t, 1850, res.AverageCalories)
}

func TestWeeklyLabelsAreChronological(t *testing.T) {
	t.Parallel()
	res := NewAggregator(fixedClock(2024, 1, 3)).Compute(PeriodWeekly, nil, nil, loseGoal)

	labels := make([]string, 0, len(res.Days))
	for _, d := range res.Days {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"Thu", "Fri", "Sat", "Sun", "Mon", "Tue", "Wed"}, labels)
	assert.Equal(t, 0, res.AverageCalories)
	assert.Equal(t, 0, res.ComplianceRate)
	assert.Equal(t, 0, res.CurrentStreak)
	assert.Equal(t, 0, res.BestStreak)
}

func TestMonthlyRangeStartsOnFirst(t *testing.T) {
	t.Parallel()
	res := NewAggregator(fixedClock(2024, 2, 10)).Compute(PeriodMonthly, map[string]int{"2024-01-31": 1500}, nil, loseGoal)

	require.Len(t, res.Days, 10)
	assert.Equal(t, "2024-02-01", res.Days[0].DateKey)
	assert.Equal(t, "1", res.Days[0].Label)
	assert.Equal(t, "10", res.Days[9].Label)
	assert.Equal(t, 0, res.DaysWithData)
}

func TestAverageExcludesEmptyDays(t *testing.T) {
	t.Parallel()
	days := []Day{{Calories: 2000}, {Calories: 0}, {Calories: 1000}}

	assert.Equal(t, 1500, AverageCalories(days))
}

func TestComplianceOverDaysWithData(t *testing.T) {
	t.Parallel()
	cals := []int{1800, 2500, 0, 1900, 2100, 0, 1500}
	days := make([]Day, 0, len(cals))
	for _, c := range cals {
		days = append(days, Day{Calories: c, MetGoal: loseGoal.Met(c)})
	}

	met, withData, rate := Compliance(days)
	assert.Equal(t, 3, met)
	assert.Equal(t, 5, withData)
	assert.Equal(t, 60, rate)
}

func TestCurrentStreakSkipsEmptyToday(t *testing.T) {
	t.Parallel()
	totals := map[string]int{
		"2024-01-01": 1800,
		"2024-01-02": 1500,
		"2024-01-03": 1900,
	}

	assert.Equal(t, 3, CurrentStreak(totals, "2024-01-04", loseGoal))
	assert.Equal(t, 0, CurrentStreak(totals, "2024-01-05", loseGoal))
}

func TestCurrentStreakBrokenByTodayMiss(t *testing.T) {
	t.Parallel()
	totals := map[string]int{
		"2024-01-02": 1500,
		"2024-01-03": 2600,
	}

	assert.Equal(t, 0, CurrentStreak(totals, "2024-01-03", loseGoal))
}

func TestBestStreakScansAllHistory(t *testing.T) {
	t.Parallel()
	totals := map[string]int{
		"2023-12-01": 1900,
		"2023-12-02": 1800,
		"2023-12-03": 1700,
		"2023-12-04": 1950,
		"2023-12-05": 2000,
		"2023-12-06": 2600,
		"2024-01-01": 1500,
		"2024-01-02": 1600,
		"2024-02-01": 1000,
	}
	agg := NewAggregator(fixedClock(2024, 1, 2))

	res := agg.Compute(PeriodWeekly, totals, totals, loseGoal)
	assert.Equal(t, 2, res.CurrentStreak)
	assert.Equal(t, 5, res.BestStreak)
}

func TestBestStreakNeverBelowCurrent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 4, BestStreak(map[string]int{}, "2024-01-02", loseGoal, 4))
}

func TestGainingStreak(t *testing.T) {
	t.Parallel()
	gain := Goal{Calories: 2500, Gaining: true}
	totals := map[string]int{
		"2024-03-08": 2600,
		"2024-03-09": 2400,
		"2024-03-10": 2700,
		"2024-03-11": 2550,
	}

	assert.Equal(t, 2, CurrentStreak(totals, "2024-03-11", gain))
	assert.Equal(t, 2, BestStreak(totals, "2024-03-11", gain, 2))
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()
	p, err := ParsePeriod("Month")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonthly, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	_, err = ParsePeriod("yearly")
	assert.Error(t, err)
}
