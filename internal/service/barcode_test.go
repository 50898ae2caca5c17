package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/db"
	"github.com/saadjs/nutrilog/internal/model"
)

type fakeBarcodeClient struct {
	calls int
	item  model.FoodFacts
	err   error
}

func (f *fakeBarcodeClient) Name() string { return "fake" }

func (f *fakeBarcodeClient) LookupBarcode(ctx context.Context, barcode string) (model.FoodFacts, []byte, error) {
	f.calls++
	if f.err != nil {
		return model.FoodFacts{}, nil, f.err
	}
	return f.item, []byte(`{"ok":true}`), nil
}

func TestLookupBarcodeUsesCache(t *testing.T) {
	sqldb := newServiceDB(t)

	client := &fakeBarcodeClient{item: model.FoodFacts{
		Name:          "Protein Bar",
		Brand:         "Brand",
		ServingAmount: 1,
		ServingUnit:   "bar",
		Calories:      200,
		ProteinG:      20,
		CarbsG:        20,
		FatG:          7,
	}}

	first, err := LookupBarcode(context.Background(), sqldb, client, "012345678905")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first lookup should come from the provider")
	}
	second, err := LookupBarcode(context.Background(), sqldb, client, "012345678905")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 provider call due to cache hit, got %d", client.calls)
	}
	if !second.FromCache || second.Food.Name != "Protein Bar" || second.Food.Calories != 200 {
		t.Fatalf("unexpected cached result: %+v", second)
	}
}

func TestLookupBarcodeIgnoresExpiredCache(t *testing.T) {
	sqldb := newServiceDB(t)

	client := &fakeBarcodeClient{item: model.FoodFacts{Name: "Fresh", Calories: 100}}
	past := time.Now().Add(-40 * 24 * time.Hour)
	if err := upsertBarcodeCache(sqldb, "fake", "12345678", model.FoodFacts{Name: "Stale"}, nil, past, past.Add(defaultBarcodeTTL)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	res, err := LookupBarcode(context.Background(), sqldb, client, "12345678")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if client.calls != 1 || res.Food.Name != "Fresh" {
		t.Fatalf("expected expired row to be refetched, got %+v after %d calls", res, client.calls)
	}
}

func TestLookupBarcodeValidation(t *testing.T) {
	sqldb := newServiceDB(t)

	client := &fakeBarcodeClient{}
	for _, code := range []string{"abc", "1234567", "123456789012345"} {
		_, err := LookupBarcode(context.Background(), sqldb, client, code)
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected %q to be rejected, got %v", code, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("provider should not be called for invalid barcodes")
	}
}

func TestLogBarcodeScalesByServings(t *testing.T) {
	sqldb := newServiceDB(t)

	client := &fakeBarcodeClient{item: model.FoodFacts{Name: "Greek Yogurt", Brand: "Dairy Co", Calories: 130, ProteinG: 11.5, CarbsG: 6, FatG: 4.25}}
	e, err := LogBarcode(context.Background(), sqldb, client, LogBarcodeInput{Barcode: "87654321", Servings: 1.5})
	if err != nil {
		t.Fatalf("log barcode: %v", err)
	}
	if e.Name != "Greek Yogurt (Dairy Co)" || e.Calories != 195 || e.ProteinG != 17.3 || e.FatG != 6.4 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Source != model.SourceBarcode || e.SourceRef != "87654321" {
		t.Fatalf("expected barcode source ref, got %+v", e)
	}

	if _, err := LogBarcode(context.Background(), sqldb, client, LogBarcodeInput{Barcode: "87654321", Servings: -1}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected negative servings to be rejected, got %v", err)
	}
}

func TestPurgeBarcodeCache(t *testing.T) {
	sqldb := newServiceDB(t)
	now := time.Now()
	for _, code := range []string{"11111111", "22222222"} {
		if err := upsertBarcodeCache(sqldb, "fake", code, model.FoodFacts{Name: code}, nil, now, now.Add(time.Hour)); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
	}
	n, err := PurgeBarcodeCache(sqldb, "11111111")
	if err != nil || n != 1 {
		t.Fatalf("purge one: n=%d err=%v", n, err)
	}
	n, err = PurgeBarcodeCache(sqldb, "")
	if err != nil || n != 1 {
		t.Fatalf("purge all: n=%d err=%v", n, err)
	}
}

func newServiceDB(t *testing.T) *sql.DB {
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
