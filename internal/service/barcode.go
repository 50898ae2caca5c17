package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/provider/openfoodfacts"
)

const (
	BarcodeProviderOpenFoodFacts = "openfoodfacts"
	defaultBarcodeTTL            = 30 * 24 * time.Hour
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

type BarcodeLookupResult struct {
	Provider  string          `json:"provider"`
	Barcode   string          `json:"barcode"`
	Food      model.FoodFacts `json:"food"`
	FromCache bool            `json:"from_cache"`
}

// BarcodeClient resolves a barcode to per-serving nutrition and the raw
// provider payload.
type BarcodeClient interface {
	Name() string
	LookupBarcode(ctx context.Context, barcode string) (model.FoodFacts, []byte, error)
}

type openFoodFactsClientAdapter struct {
	client *openfoodfacts.Client
}

// NewOpenFoodFactsClient wraps the Open Food Facts provider. An empty baseURL
// uses the public instance.
func NewOpenFoodFactsClient(baseURL string) BarcodeClient {
	return &openFoodFactsClientAdapter{client: &openfoodfacts.Client{BaseURL: baseURL}}
}

func (a *openFoodFactsClientAdapter) Name() string { return BarcodeProviderOpenFoodFacts }

func (a *openFoodFactsClientAdapter) LookupBarcode(ctx context.Context, barcode string) (model.FoodFacts, []byte, error) {
	p, raw, err := a.client.LookupBarcode(ctx, barcode)
	if errors.Is(err, openfoodfacts.ErrProductNotFound) {
		return model.FoodFacts{}, raw, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}
	if err != nil {
		return model.FoodFacts{}, raw, err
	}
	return model.FoodFacts{
		Name:          p.Name,
		Brand:         p.Brand,
		ServingAmount: p.ServingAmount,
		ServingUnit:   p.ServingUnit,
		Calories:      p.Calories,
		ProteinG:      p.ProteinG,
		CarbsG:        p.CarbsG,
		FatG:          p.FatG,
	}, raw, nil
}

func IsValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

// LookupBarcode consults the cache before calling client. Fresh provider
// results are cached for 30 days.
func LookupBarcode(ctx context.Context, db *sql.DB, client BarcodeClient, barcode string) (BarcodeLookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !IsValidBarcode(barcode) {
		return BarcodeLookupResult{}, invalidf("barcode %q (expected 8-14 digits)", barcode)
	}
	provider := client.Name()

	cached, found, err := lookupBarcodeCache(db, provider, barcode, time.Now())
	if err != nil {
		return BarcodeLookupResult{}, err
	}
	if found {
		return BarcodeLookupResult{Provider: provider, Barcode: barcode, Food: cached, FromCache: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	food, raw, err := client.LookupBarcode(ctx, barcode)
	if err != nil {
		return BarcodeLookupResult{}, err
	}
	now := time.Now()
	if err := upsertBarcodeCache(db, provider, barcode, food, raw, now, now.Add(defaultBarcodeTTL)); err != nil {
		return BarcodeLookupResult{}, err
	}
	return BarcodeLookupResult{Provider: provider, Barcode: barcode, Food: food}, nil
}

type LogBarcodeInput struct {
	Barcode    string
	Servings   float64
	MealType   string
	ConsumedAt time.Time
	Notes      string
}

// LogBarcode looks up the barcode and logs servings of it as one entry.
func LogBarcode(ctx context.Context, db *sql.DB, client BarcodeClient, in LogBarcodeInput) (model.Entry, error) {
	if in.Servings == 0 {
		in.Servings = 1
	}
	if in.Servings < 0 || math.IsNaN(in.Servings) || math.IsInf(in.Servings, 0) {
		return model.Entry{}, invalidf("servings must be > 0")
	}
	res, err := LookupBarcode(ctx, db, client, in.Barcode)
	if err != nil {
		return model.Entry{}, err
	}
	name := res.Food.Name
	if res.Food.Brand != "" {
		name = fmt.Sprintf("%s (%s)", name, res.Food.Brand)
	}
	return CreateEntry(db, CreateEntryInput{
		Name:       name,
		Calories:   int(math.Round(res.Food.Calories * in.Servings)),
		ProteinG:   roundTenth(res.Food.ProteinG * in.Servings),
		CarbsG:     roundTenth(res.Food.CarbsG * in.Servings),
		FatG:       roundTenth(res.Food.FatG * in.Servings),
		MealType:   in.MealType,
		ConsumedAt: in.ConsumedAt,
		Source:     model.SourceBarcode,
		SourceRef:  res.Barcode,
		Notes:      in.Notes,
	})
}

// PurgeBarcodeCache drops cached rows; an empty barcode clears everything.
func PurgeBarcodeCache(db *sql.DB, barcode string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if barcode = strings.TrimSpace(barcode); barcode == "" {
		res, err = db.Exec(`DELETE FROM barcode_cache`)
	} else {
		res, err = db.Exec(`DELETE FROM barcode_cache WHERE barcode = ?`, barcode)
	}
	if err != nil {
		return 0, fmt.Errorf("purge barcode cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge barcode cache rows affected: %w", err)
	}
	return n, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func lookupBarcodeCache(db *sql.DB, provider, barcode string, now time.Time) (model.FoodFacts, bool, error) {
	var f model.FoodFacts
	var expiresAtRaw string
	err := db.QueryRow(`
SELECT name, brand, serving_amount, serving_unit, calories, protein_g, carbs_g, fat_g, expires_at
FROM barcode_cache
WHERE provider = ? AND barcode = ?
`, provider, barcode).Scan(&f.Name, &f.Brand, &f.ServingAmount, &f.ServingUnit, &f.Calories, &f.ProteinG, &f.CarbsG, &f.FatG, &expiresAtRaw)
	if err == sql.ErrNoRows {
		return model.FoodFacts{}, false, nil
	}
	if err != nil {
		return model.FoodFacts{}, false, fmt.Errorf("lookup barcode cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresAtRaw)
	if err != nil {
		return model.FoodFacts{}, false, fmt.Errorf("parse barcode cache expiry: %w", err)
	}
	if now.After(expiresAt) {
		return model.FoodFacts{}, false, nil
	}
	return f, true, nil
}

func upsertBarcodeCache(db *sql.DB, provider, barcode string, f model.FoodFacts, raw []byte, fetchedAt, expiresAt time.Time) error {
	rawStr := ""
	if json.Valid(raw) {
		rawStr = string(raw)
	}
	_, err := db.Exec(`
INSERT INTO barcode_cache(provider, barcode, name, brand, serving_amount, serving_unit, calories, protein_g, carbs_g, fat_g, raw_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, barcode) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  serving_amount=excluded.serving_amount,
  serving_unit=excluded.serving_unit,
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g,
  raw_json=excluded.raw_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, provider, barcode, f.Name, f.Brand, f.ServingAmount, f.ServingUnit, f.Calories, f.ProteinG, f.CarbsG, f.FatG, rawStr, fetchedAt.UTC().Format(time.RFC3339), expiresAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert barcode cache: %w", err)
	}
	return nil
}
