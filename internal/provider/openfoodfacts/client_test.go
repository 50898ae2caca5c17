package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupBarcodeParsesOpenFoodFactsResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/product/12345678.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": "Yogurt Cup",
    "brands": "Brand Co",
    "serving_quantity": 170,
    "serving_quantity_unit": "g",
    "nutriments": {
      "energy-kcal_serving": 120,
      "proteins_serving": 10,
      "carbohydrates_serving": 15,
      "fat_serving": "2",
      "energy-kcal_100g": 70
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, raw, err := c.LookupBarcode(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body to be returned")
	}
	if item.Name != "Yogurt Cup" || item.Brand != "Brand Co" || item.Calories != 120 || item.ProteinG != 10 || item.FatG != 2 {
		t.Fatalf("unexpected parsed item: %+v", item)
	}
	if !item.PerServing || item.ServingAmount != 170 || item.ServingUnit != "g" {
		t.Fatalf("unexpected serving: %+v", item)
	}
}

func TestLookupBarcodeFallsBackToPer100g(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Oats","nutriments":{"energy-kcal_100g":389,"proteins_100g":16.9,"carbohydrates_100g":66.3,"fat_100g":6.9}}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, _, err := c.LookupBarcode(context.Background(), "87654321")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if item.PerServing || item.ServingAmount != 100 || item.ServingUnit != "g" {
		t.Fatalf("expected per-100g serving, got %+v", item)
	}
	if item.Calories != 389 || item.CarbsG != 66.3 {
		t.Fatalf("unexpected nutrients: %+v", item)
	}
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.LookupBarcode(context.Background(), "00000000")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
