package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/nutrilog/internal/stats"
)

// DailyCalorieTotals sums entry calories per local day of clock for the
// inclusive range [from, to]. Days without entries are absent from the map.
func DailyCalorieTotals(db *sql.DB, clock stats.Clock, from, to string) (map[string]int, error) {
	start, end, err := dayRangeMillis(clock, from, to)
	if err != nil {
		return nil, err
	}
	return sumByLocalDay(db, clock, `SELECT consumed_at_ms, calories FROM entries WHERE consumed_at_ms >= ? AND consumed_at_ms < ?`, start, end)
}

// AllDailyCalorieTotals is DailyCalorieTotals over the whole log.
func AllDailyCalorieTotals(db *sql.DB, clock stats.Clock) (map[string]int, error) {
	return sumByLocalDay(db, clock, `SELECT consumed_at_ms, calories FROM entries`)
}

// Rows are bucketed with clock.DateKeyOf, so day boundaries follow the
// clock's timezone across DST shifts.
func sumByLocalDay(db *sql.DB, clock stats.Clock, query string, args ...any) (map[string]int, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var ms int64
		var calories int
		if err := rows.Scan(&ms, &calories); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals[clock.DateKeyOf(time.UnixMilli(ms))] += calories
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily totals: %w", err)
	}
	return totals, nil
}
