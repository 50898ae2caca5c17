package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/provider/llm"
)

type fakeEstimator struct {
	calls     int
	lastImage *llm.Image
	est       llm.Estimate
	err       error
}

func (f *fakeEstimator) ModelName() string { return "fake-model" }

func (f *fakeEstimator) EstimateNutrition(ctx context.Context, prompt string, image *llm.Image) (llm.Estimate, error) {
	f.calls++
	f.lastImage = image
	return f.est, f.err
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return errors.New("cache down")
}

func TestEstimateMealCachesByPrompt(t *testing.T) {
	sqldb := newServiceDB(t)
	cache := &SQLiteEstimateCache{DB: sqldb}
	est := &fakeEstimator{est: llm.Estimate{Name: "Burrito", Calories: 780, ProteinG: 35, CarbsG: 90, FatG: 28, Confidence: 0.6}}

	first, err := EstimateMeal(context.Background(), est, cache, EstimateRequest{Description: "chicken burrito"})
	if err != nil {
		t.Fatalf("first estimate: %v", err)
	}
	if first.FromCache || first.Food.Calories != 780 || first.Model != "fake-model" {
		t.Fatalf("unexpected first estimate: %+v", first)
	}
	second, err := EstimateMeal(context.Background(), est, cache, EstimateRequest{Description: "Chicken Burrito "})
	if err != nil {
		t.Fatalf("second estimate: %v", err)
	}
	if est.calls != 1 || !second.FromCache || second.Food.Name != "Burrito" {
		t.Fatalf("expected cache hit, got %+v after %d calls", second, est.calls)
	}

	if _, err := EstimateMeal(context.Background(), est, cache, EstimateRequest{Description: "two burritos"}); err != nil {
		t.Fatalf("third estimate: %v", err)
	}
	if est.calls != 2 {
		t.Fatalf("expected a different prompt to miss the cache")
	}
}

func TestEstimateMealSurvivesCacheFailure(t *testing.T) {
	est := &fakeEstimator{est: llm.Estimate{Name: "Salad", Calories: 250}}
	res, err := EstimateMeal(context.Background(), est, failingCache{}, EstimateRequest{Description: "salad"})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if res.Food.Name != "Salad" {
		t.Fatalf("unexpected estimate: %+v", res)
	}
}

func TestEstimateMealReadsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meal.png")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	est := &fakeEstimator{est: llm.Estimate{Name: "Plate", Calories: 500}}
	if _, err := EstimateMeal(context.Background(), est, nil, EstimateRequest{ImagePath: path}); err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.lastImage == nil || est.lastImage.MIMEType != "image/png" {
		t.Fatalf("expected png image to be forwarded, got %+v", est.lastImage)
	}

	_, err := EstimateMeal(context.Background(), est, nil, EstimateRequest{})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid without prompt or image, got %v", err)
	}
}

func TestLogEstimateStoresAIEntry(t *testing.T) {
	sqldb := newServiceDB(t)
	res := EstimateResult{
		Food:  model.FoodFacts{Name: "Ramen", Calories: 650.6, ProteinG: 25.04, CarbsG: 80, FatG: 22},
		Model: "fake-model",
	}
	e, err := LogEstimate(sqldb, LogEstimateInput{Estimate: res, MealType: "dinner"})
	if err != nil {
		t.Fatalf("log estimate: %v", err)
	}
	if e.Source != model.SourceAI || e.Calories != 651 || e.ProteinG != 25 || e.SourceRef != "fake-model" || e.MealType != model.MealDinner {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestNewRedisEstimateCacheRejectsBadURL(t *testing.T) {
	if _, err := NewRedisEstimateCache(context.Background(), "not-a-url"); err == nil {
		t.Fatalf("expected bad redis url to fail")
	}
}
