package nutrilog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/app"
	"github.com/saadjs/nutrilog/internal/db"
	"github.com/saadjs/nutrilog/internal/stats"
)

// env is what most commands need: an open, migrated database, the effective
// config and the calendar clock.
type env struct {
	DB     *sql.DB
	DBPath string
	Config *app.Config
	Clock  *stats.LocalCalendarClock
}

func withEnv(run func(*env) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	clock, err := newClock(cfg)
	if err != nil {
		return err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(&env{DB: sqldb, DBPath: path, Config: cfg, Clock: clock})
}

func withDB(run func(*sql.DB) error) error {
	return withEnv(func(e *env) error { return run(e.DB) })
}

// parseDateTimeOrNow reads --date/--time in loc. A date alone means noon so
// the entry lands inside that local day whatever the zone.
func parseDateTimeOrNow(loc *time.Location, date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now().In(loc), nil
	}
	if date == "" {
		date = time.Now().In(loc).Format(stats.DateKeyLayout)
	}
	if timeStr == "" {
		t, err := time.ParseInLocation(stats.DateKeyLayout, date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t.Add(12 * time.Hour), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}
