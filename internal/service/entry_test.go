package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/service"
)

func TestEntryLifecycle(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 5, 2)
	at := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)

	e, err := service.CreateEntry(db, service.CreateEntryInput{
		Name:       "  Oatmeal ",
		Calories:   350,
		ProteinG:   12,
		CarbsG:     60,
		FatG:       6.5,
		ConsumedAt: at,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if len(e.ID) != 36 {
		t.Fatalf("expected uuid id, got %q", e.ID)
	}
	if e.Name != "Oatmeal" || e.MealType != model.MealBreakfast || e.Source != model.SourceManual {
		t.Fatalf("unexpected entry defaults: %+v", e)
	}
	if !e.ConsumedAt.Equal(at) {
		t.Fatalf("expected consumed at %v, got %v", at, e.ConsumedAt)
	}

	updated, err := service.UpdateEntry(db, service.UpdateEntryInput{
		ID:         e.ID,
		Name:       "Oatmeal with berries",
		Calories:   420,
		ProteinG:   13,
		CarbsG:     75,
		FatG:       7,
		MealType:   "snacks",
		ConsumedAt: at,
	})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.Calories != 420 || updated.MealType != model.MealSnack {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}

	list, err := service.ListEntries(db, clock, service.ListEntriesFilter{Date: "2026-05-02"})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("expected the one entry, got %+v", list)
	}

	if err := service.DeleteEntry(db, e.ID); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if _, err := service.GetEntry(db, e.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := service.DeleteEntry(db, e.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	cases := []service.CreateEntryInput{
		{Name: "", Calories: 100},
		{Name: "x", Calories: -1},
		{Name: "x", Calories: 100, FatG: -2},
		{Name: "x", Calories: 100, MealType: "brunch"},
		{Name: "x", Calories: 100, Source: "scanner"},
	}
	for _, in := range cases {
		if _, err := service.CreateEntry(db, in); !errors.Is(err, service.ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %+v, got %v", in, err)
		}
	}
}

func TestListEntriesFilters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	clock := utcClock(2026, 5, 3)

	for _, in := range []service.CreateEntryInput{
		{Name: "Eggs", Calories: 200, MealType: "breakfast", ConsumedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)},
		{Name: "Soup", Calories: 300, MealType: "lunch", ConsumedAt: time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)},
		{Name: "Steak", Calories: 700, MealType: "dinner", ConsumedAt: time.Date(2026, 5, 3, 19, 0, 0, 0, time.UTC)},
	} {
		if _, err := service.CreateEntry(db, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	ranged, err := service.ListEntries(db, clock, service.ListEntriesFilter{FromDate: "2026-05-02", ToDate: "2026-05-03"})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(ranged) != 2 || ranged[0].Name != "Steak" {
		t.Fatalf("expected newest-first Steak, Soup; got %+v", ranged)
	}

	lunch, err := service.ListEntries(db, clock, service.ListEntriesFilter{MealType: "lunch"})
	if err != nil {
		t.Fatalf("list by meal: %v", err)
	}
	if len(lunch) != 1 || lunch[0].Name != "Soup" {
		t.Fatalf("expected Soup only, got %+v", lunch)
	}

	limited, err := service.ListEntries(db, clock, service.ListEntriesFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(limited))
	}

	if _, err := service.ListEntries(db, clock, service.ListEntriesFilter{Date: "May 2"}); !errors.Is(err, service.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad date, got %v", err)
	}

	n, err := service.ClearEntries(db)
	if err != nil {
		t.Fatalf("clear entries: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 cleared, got %d", n)
	}
}

func TestDefaultMealTypeByHour(t *testing.T) {
	t.Parallel()
	cases := map[int]model.MealType{
		2:  model.MealSnack,
		7:  model.MealBreakfast,
		12: model.MealLunch,
		18: model.MealDinner,
		23: model.MealSnack,
	}
	for hour, want := range cases {
		got := service.DefaultMealType(time.Date(2026, 1, 1, hour, 0, 0, 0, time.UTC))
		if got != want {
			t.Fatalf("hour %d: expected %s, got %s", hour, want, got)
		}
	}
}
