package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/db"
	"github.com/saadjs/nutrilog/internal/stats"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nutrilog.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

// clockAt pins today to the local date of now in loc.
func clockAt(loc *time.Location, now time.Time) *stats.LocalCalendarClock {
	return &stats.LocalCalendarClock{Location: loc, Now: func() time.Time { return now }}
}

func utcClock(y int, m time.Month, d int) *stats.LocalCalendarClock {
	return clockAt(time.UTC, time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}
