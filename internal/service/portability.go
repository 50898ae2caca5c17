package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
)

const exportFormatVersion = 1

// ExportData is a full snapshot of user data. Caches are not included.
type ExportData struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Profile    model.UserProfile  `json:"profile"`
	Goals      []model.DailyGoals `json:"goals"`
	Entries    []model.Entry      `json:"entries"`
}

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Conflicts int      `json:"conflicts"`
	Warnings  []string `json:"warnings,omitempty"`
}

func ParseImportMode(value string) (ImportMode, error) {
	switch m := ImportMode(normalizeName(value)); m {
	case "":
		return ImportModeMerge, nil
	case ImportModeFail, ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return m, nil
	default:
		return "", invalidf("import mode %q (use fail, skip, merge, replace)", value)
	}
}

func ExportDataSnapshot(db *sql.DB) (*ExportData, error) {
	out := &ExportData{Version: exportFormatVersion, ExportedAt: time.Now().UTC()}

	p, err := GetProfile(db)
	if err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	out.Profile = p

	goals, err := GoalHistory(db)
	if err != nil {
		return nil, fmt.Errorf("export goals: %w", err)
	}
	// oldest first so an import replays history in order
	for i := len(goals) - 1; i >= 0; i-- {
		out.Goals = append(out.Goals, goals[i])
	}

	rows, err := db.Query(`SELECT ` + entryColumns + ` FROM entries ORDER BY consumed_at_ms ASC`)
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export entry: %w", err)
		}
		out.Entries = append(out.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export entries: %w", err)
	}
	return out, nil
}

// ImportDataSnapshot loads data in one transaction. Entries are matched by id;
// mode decides what happens to an id that already exists. Goals are upserted by
// effective date and the profile is overwritten.
func ImportDataSnapshot(db *sql.DB, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	if data == nil {
		return report, invalidf("import data is empty")
	}
	if data.Version > exportFormatVersion {
		return report, invalidf("export version %d is newer than supported version %d", data.Version, exportFormatVersion)
	}
	mode, err := ParseImportMode(string(opts.Mode))
	if err != nil {
		return report, err
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace {
		if err := clearUserData(tx); err != nil {
			return report, err
		}
	}

	if data.Profile.Age > 0 {
		if err := ValidateProfile(data.Profile); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("profile skipped: %v", err))
		} else if _, err := tx.Exec(`
INSERT INTO profile(id, gender, age, height_cm, weight_kg, target_weight_kg, activity_level, weight_goal, goal_aggressiveness, eating_type, onboarding_completed, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  gender=excluded.gender, age=excluded.age, height_cm=excluded.height_cm, weight_kg=excluded.weight_kg,
  target_weight_kg=excluded.target_weight_kg, activity_level=excluded.activity_level, weight_goal=excluded.weight_goal,
  goal_aggressiveness=excluded.goal_aggressiveness, eating_type=excluded.eating_type,
  onboarding_completed=excluded.onboarding_completed, updated_at=excluded.updated_at
`, data.Profile.Gender, data.Profile.Age, data.Profile.HeightCm, data.Profile.WeightKg, data.Profile.TargetWeightKg,
			data.Profile.ActivityLevel, data.Profile.WeightGoal, data.Profile.GoalAggressiveness, data.Profile.EatingType,
			data.Profile.OnboardingCompleted); err != nil {
			return report, fmt.Errorf("import profile: %w", err)
		}
	}

	for idx, g := range data.Goals {
		source := g.Source
		if source == "" {
			source = model.GoalSourceManual
		}
		if g.Calories < 0 || g.ProteinG < 0 || g.CarbsG < 0 || g.FatG < 0 || strings.TrimSpace(g.EffectiveDate) == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("goals[%d] invalid, skipped", idx))
			report.Skipped++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO goals(calories, protein_g, carbs_g, fat_g, source, effective_date)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(effective_date) DO UPDATE SET calories=excluded.calories, protein_g=excluded.protein_g, carbs_g=excluded.carbs_g, fat_g=excluded.fat_g, source=excluded.source
`, g.Calories, g.ProteinG, g.CarbsG, g.FatG, source, g.EffectiveDate); err != nil {
			return report, fmt.Errorf("import goal %q: %w", g.EffectiveDate, err)
		}
	}

	for idx, e := range data.Entries {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" || e.ConsumedAt.IsZero() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("entries[%d] missing id, name or consumed_at", idx))
			report.Conflicts++
			continue
		}
		if err := validateMacros(e.Calories, e.ProteinG, e.CarbsG, e.FatG); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("entries[%d]: %v", idx, err))
			report.Conflicts++
			continue
		}
		meal, err := resolveMealType(string(e.MealType), e.ConsumedAt)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("entries[%d]: %v", idx, err))
			report.Conflicts++
			continue
		}
		source, err := parseEntrySource(e.Source)
		if err != nil {
			source = model.SourceManual
		}

		exists, err := entryExistsTx(tx, e.ID)
		if err != nil {
			return report, err
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for entry %s (%q)", e.ID, e.Name)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE entries SET name=?, calories=?, protein_g=?, carbs_g=?, fat_g=?, consumed_at_ms=?, meal_type=?, source=?, source_ref=?, notes=?, updated_at=CURRENT_TIMESTAMP
WHERE id=?`, e.Name, e.Calories, e.ProteinG, e.CarbsG, e.FatG, e.ConsumedAt.UnixMilli(), string(meal), source, e.SourceRef, e.Notes, e.ID); err != nil {
				return report, fmt.Errorf("merge entry %s: %w", e.ID, err)
			}
			report.Updated++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO entries(id, name, calories, protein_g, carbs_g, fat_g, consumed_at_ms, meal_type, source, source_ref, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.Name, e.Calories, e.ProteinG, e.CarbsG, e.FatG, e.ConsumedAt.UnixMilli(), string(meal), source, e.SourceRef, e.Notes); err != nil {
			return report, fmt.Errorf("import entry %s: %w", e.ID, err)
		}
		report.Inserted++
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import tx: %w", err)
	}
	return report, nil
}

func entryExistsTx(tx *sql.Tx, id string) (bool, error) {
	var n int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM entries WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check existing entry %s: %w", id, err)
	}
	return n > 0, nil
}

func clearUserData(tx *sql.Tx) error {
	for _, s := range []string{`DELETE FROM entries`, `DELETE FROM goals`} {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("clear data for replace mode: %w", err)
		}
	}
	return nil
}
