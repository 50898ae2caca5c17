package db_test

import (
	"path/filepath"
	"testing"

	"github.com/saadjs/nutrilog/internal/db"
)

func TestApplyMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nutrilog.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 3 {
		t.Fatalf("expected 3 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"profile", "goals", "entries", "barcode_cache", "estimate_cache"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}
}

func TestProfileTableIsSingleton(t *testing.T) {
	t.Parallel()

	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "nutrilog.db"))
	if err != nil {
		t.Fatalf("open migrated db: %v", err)
	}
	defer sqldb.Close()

	insert := `INSERT INTO profile(id, gender, age, height_cm, weight_kg, target_weight_kg, activity_level, weight_goal, goal_aggressiveness, eating_type)
VALUES(?, 'male', 30, 170, 70, 70, 'sedentary', 'maintain', 'moderate', 'normal')`
	if _, err := sqldb.Exec(insert, 1); err != nil {
		t.Fatalf("insert singleton profile: %v", err)
	}
	if _, err := sqldb.Exec(insert, 2); err == nil {
		t.Fatalf("expected second profile row to be rejected")
	}
}
