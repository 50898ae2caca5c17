package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/stats"
)

type CreateEntryInput struct {
	Name       string
	Calories   int
	ProteinG   float64
	CarbsG     float64
	FatG       float64
	MealType   string
	ConsumedAt time.Time
	Source     string
	SourceRef  string
	Notes      string
}

type ListEntriesFilter struct {
	Date     string
	FromDate string
	ToDate   string
	MealType string
	Limit    int
}

type UpdateEntryInput struct {
	ID         string
	Name       string
	Calories   int
	ProteinG   float64
	CarbsG     float64
	FatG       float64
	MealType   string
	ConsumedAt time.Time
	Notes      string
}

const entryColumns = `id, name, calories, protein_g, carbs_g, fat_g, consumed_at_ms, meal_type, source, source_ref, notes, created_at, updated_at`

// DefaultMealType guesses the meal from the local hour of t.
func DefaultMealType(t time.Time) model.MealType {
	switch h := t.Hour(); {
	case h >= 4 && h < 11:
		return model.MealBreakfast
	case h >= 11 && h < 16:
		return model.MealLunch
	case h >= 16 && h < 22:
		return model.MealDinner
	default:
		return model.MealSnack
	}
}

func resolveMealType(value string, consumed time.Time) (model.MealType, error) {
	if strings.TrimSpace(value) == "" {
		return DefaultMealType(consumed), nil
	}
	return ParseMealType(value)
}

func parseEntrySource(value string) (string, error) {
	switch s := normalizeName(value); s {
	case "":
		return model.SourceManual, nil
	case model.SourceManual, model.SourceBarcode, model.SourceAI:
		return s, nil
	default:
		return "", invalidf("entry source %q (use manual, barcode, ai)", value)
	}
}

func CreateEntry(db *sql.DB, in CreateEntryInput) (model.Entry, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Entry{}, invalidf("entry name is required")
	}
	if err := validateMacros(in.Calories, in.ProteinG, in.CarbsG, in.FatG); err != nil {
		return model.Entry{}, err
	}
	if in.ConsumedAt.IsZero() {
		in.ConsumedAt = time.Now()
	}
	meal, err := resolveMealType(in.MealType, in.ConsumedAt)
	if err != nil {
		return model.Entry{}, err
	}
	source, err := parseEntrySource(in.Source)
	if err != nil {
		return model.Entry{}, err
	}

	id := uuid.NewString()
	_, err = db.Exec(`
INSERT INTO entries(id, name, calories, protein_g, carbs_g, fat_g, consumed_at_ms, meal_type, source, source_ref, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, in.Name, in.Calories, in.ProteinG, in.CarbsG, in.FatG, in.ConsumedAt.UnixMilli(), string(meal), source, strings.TrimSpace(in.SourceRef), strings.TrimSpace(in.Notes))
	if err != nil {
		return model.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return GetEntry(db, id)
}

func GetEntry(db *sql.DB, id string) (model.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Entry{}, invalidf("entry id is required")
	}
	e, err := scanEntry(db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

// ListEntries returns entries newest first. Date bounds are local days of clock.
func ListEntries(db *sql.DB, clock stats.Clock, f ListEntriesFilter) ([]model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	args := make([]any, 0)

	if date := strings.TrimSpace(f.Date); date != "" {
		start, end, err := dayRangeMillis(clock, date, date)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at_ms >= ? AND consumed_at_ms < ?`
		args = append(args, start, end)
	}
	if from := strings.TrimSpace(f.FromDate); from != "" {
		start, err := clock.StartOf(from)
		if err != nil {
			return nil, invalidf("from date: %v", err)
		}
		query += ` AND consumed_at_ms >= ?`
		args = append(args, start.UnixMilli())
	}
	if to := strings.TrimSpace(f.ToDate); to != "" {
		end, err := clock.StartOf(stats.AddDays(to, 1))
		if err != nil || !stats.ValidDateKey(to) {
			return nil, invalidf("invalid to date %q (expected YYYY-MM-DD)", to)
		}
		query += ` AND consumed_at_ms < ?`
		args = append(args, end.UnixMilli())
	}
	if strings.TrimSpace(f.MealType) != "" {
		meal, err := ParseMealType(f.MealType)
		if err != nil {
			return nil, err
		}
		query += ` AND meal_type = ?`
		args = append(args, string(meal))
	}
	query += ` ORDER BY consumed_at_ms DESC, created_at DESC`

	if f.Limit <= 0 {
		f.Limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func UpdateEntry(db *sql.DB, in UpdateEntryInput) (model.Entry, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return model.Entry{}, invalidf("entry id is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Entry{}, invalidf("entry name is required")
	}
	if err := validateMacros(in.Calories, in.ProteinG, in.CarbsG, in.FatG); err != nil {
		return model.Entry{}, err
	}
	if in.ConsumedAt.IsZero() {
		return model.Entry{}, invalidf("consumed time is required")
	}
	meal, err := resolveMealType(in.MealType, in.ConsumedAt)
	if err != nil {
		return model.Entry{}, err
	}

	res, err := db.Exec(`
UPDATE entries
SET name = ?, calories = ?, protein_g = ?, carbs_g = ?, fat_g = ?, consumed_at_ms = ?, meal_type = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, in.Name, in.Calories, in.ProteinG, in.CarbsG, in.FatG, in.ConsumedAt.UnixMilli(), string(meal), strings.TrimSpace(in.Notes), in.ID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("update entry %s: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Entry{}, fmt.Errorf("read rows affected for entry %s: %w", in.ID, err)
	}
	if affected == 0 {
		return model.Entry{}, fmt.Errorf("entry %s: %w", in.ID, ErrNotFound)
	}
	return GetEntry(db, in.ID)
}

func DeleteEntry(db *sql.DB, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidf("entry id is required")
	}
	res, err := db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for entry %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearEntries removes every logged entry and returns how many were deleted.
func ClearEntries(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM entries`)
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected for clear: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var e model.Entry
	var consumedMs int64
	var meal string
	if err := row.Scan(&e.ID, &e.Name, &e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG, &consumedMs, &meal, &e.Source, &e.SourceRef, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.Entry{}, err
	}
	e.ConsumedAt = time.UnixMilli(consumedMs)
	e.MealType = model.MealType(meal)
	return e, nil
}

// dayRangeMillis returns [start of from, start of the day after to) in epoch ms.
func dayRangeMillis(clock stats.Clock, from, to string) (int64, int64, error) {
	if !stats.ValidDateKey(from) {
		return 0, 0, invalidf("invalid date %q (expected YYYY-MM-DD)", from)
	}
	if !stats.ValidDateKey(to) {
		return 0, 0, invalidf("invalid date %q (expected YYYY-MM-DD)", to)
	}
	if to < from {
		return 0, 0, invalidf("from date %s must be <= to date %s", from, to)
	}
	start, err := clock.StartOf(from)
	if err != nil {
		return 0, 0, invalidf("%v", err)
	}
	end, err := clock.StartOf(stats.AddDays(to, 1))
	if err != nil {
		return 0, 0, invalidf("%v", err)
	}
	return start.UnixMilli(), end.UnixMilli(), nil
}
