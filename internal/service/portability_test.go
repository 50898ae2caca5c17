package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/service"
)

func seedForExport(t *testing.T) *service.ExportData {
	t.Helper()
	src := newTestDB(t)
	clock := utcClock(2024, 3, 10)

	if _, err := service.SetGoals(src, clock, service.SetGoalsInput{Calories: 2100, ProteinG: 140, CarbsG: 220, FatG: 70, EffectiveDate: "2024-03-01"}); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	for _, name := range []string{"Eggs", "Salad"} {
		if _, err := service.CreateEntry(src, service.CreateEntryInput{
			Name:       name,
			Calories:   300,
			ProteinG:   20,
			ConsumedAt: time.Date(2024, 3, 9, 13, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}
	data, err := service.ExportDataSnapshot(src)
	if err != nil {
		t.Fatalf("export snapshot: %v", err)
	}
	return data
}

func TestExportImportRoundTrip(t *testing.T) {
	exported := seedForExport(t)
	if len(exported.Entries) != 2 || len(exported.Goals) != 1 {
		t.Fatalf("unexpected export size: entries=%d goals=%d", len(exported.Entries), len(exported.Goals))
	}

	dst := newTestDB(t)
	report, err := service.ImportDataSnapshot(dst, exported, service.ImportOptions{Mode: service.ImportModeMerge})
	if err != nil {
		t.Fatalf("import snapshot: %v", err)
	}
	if report.Inserted != 2 || report.Conflicts != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got, err := service.GetEntry(dst, exported.Entries[0].ID)
	if err != nil {
		t.Fatalf("get imported entry: %v", err)
	}
	if got.Name != exported.Entries[0].Name || !got.ConsumedAt.Equal(exported.Entries[0].ConsumedAt) {
		t.Fatalf("imported entry differs: %+v", got)
	}
	g, err := service.CurrentGoals(dst, "2024-03-10")
	if err != nil || g == nil || g.Calories != 2100 {
		t.Fatalf("expected imported goals, got %+v err=%v", g, err)
	}
}

func TestImportModesOnExistingEntries(t *testing.T) {
	exported := seedForExport(t)
	dst := newTestDB(t)
	if _, err := service.ImportDataSnapshot(dst, exported, service.ImportOptions{}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	report, err := service.ImportDataSnapshot(dst, exported, service.ImportOptions{Mode: service.ImportModeSkip})
	if err != nil {
		t.Fatalf("skip import: %v", err)
	}
	if report.Skipped != 2 || report.Inserted != 0 {
		t.Fatalf("skip mode report: %+v", report)
	}

	exported.Entries[0].Calories = 999
	report, err = service.ImportDataSnapshot(dst, exported, service.ImportOptions{Mode: service.ImportModeMerge})
	if err != nil {
		t.Fatalf("merge import: %v", err)
	}
	if report.Updated != 2 {
		t.Fatalf("merge mode report: %+v", report)
	}
	got, _ := service.GetEntry(dst, exported.Entries[0].ID)
	if got.Calories != 999 {
		t.Fatalf("expected merged calories 999, got %d", got.Calories)
	}

	if _, err := service.ImportDataSnapshot(dst, exported, service.ImportOptions{Mode: service.ImportModeFail}); err == nil {
		t.Fatalf("expected fail mode to reject existing entry")
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	exported := seedForExport(t)
	dst := newTestDB(t)

	report, err := service.ImportDataSnapshot(dst, exported, service.ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if report.Inserted != 2 {
		t.Fatalf("dry run should count inserts, got %+v", report)
	}
	entries, err := service.ListEntries(dst, utcClock(2024, 3, 10), service.ListEntriesFilter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	dst := newTestDB(t)
	if _, err := service.ImportDataSnapshot(dst, &service.ExportData{Version: 99}, service.ImportOptions{}); !errors.Is(err, service.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for newer version, got %v", err)
	}
	if _, err := service.ParseImportMode("overwrite"); !errors.Is(err, service.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown mode, got %v", err)
	}
}
