package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/provider/llm"
)

const defaultEstimateTTL = 7 * 24 * time.Hour

// MealEstimator is implemented by *llm.Client.
type MealEstimator interface {
	ModelName() string
	EstimateNutrition(ctx context.Context, prompt string, image *llm.Image) (llm.Estimate, error)
}

type EstimateRequest struct {
	Description string
	ImagePath   string
}

type EstimateResult struct {
	Food       model.FoodFacts `json:"food"`
	Confidence float64         `json:"confidence"`
	Model      string          `json:"model"`
	FromCache  bool            `json:"from_cache"`
}

// EstimateMeal asks estimator for the nutrition of a described or photographed
// meal. A nil cache disables caching; cache failures are logged and ignored.
func EstimateMeal(ctx context.Context, estimator MealEstimator, cache EstimateCache, req EstimateRequest) (EstimateResult, error) {
	req.Description = strings.TrimSpace(req.Description)
	var image *llm.Image
	if path := strings.TrimSpace(req.ImagePath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return EstimateResult{}, invalidf("read image %s: %v", path, err)
		}
		image = &llm.Image{MIMEType: http.DetectContentType(data), Data: data}
	}
	if req.Description == "" && image == nil {
		return EstimateResult{}, invalidf("a meal description or an image is required")
	}

	modelName := estimator.ModelName()
	key := estimateCacheKey(modelName, req.Description, image)
	if cache != nil {
		payload, found, err := cache.Get(ctx, key)
		if err != nil {
			log.Printf("estimate cache lookup failed: %v", err)
		} else if found {
			var cached EstimateResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				cached.FromCache = true
				return cached, nil
			}
			log.Printf("estimate cache entry %s is corrupt, refetching", key[:12])
		}
	}

	est, err := estimator.EstimateNutrition(ctx, req.Description, image)
	if err != nil {
		return EstimateResult{}, err
	}
	out := EstimateResult{
		Food: model.FoodFacts{
			Name:          est.Name,
			ServingAmount: 1,
			ServingUnit:   "meal",
			Calories:      est.Calories,
			ProteinG:      est.ProteinG,
			CarbsG:        est.CarbsG,
			FatG:          est.FatG,
		},
		Confidence: est.Confidence,
		Model:      modelName,
	}
	if cache != nil {
		if payload, err := json.Marshal(out); err == nil {
			if err := cache.Set(ctx, key, payload, defaultEstimateTTL); err != nil {
				log.Printf("estimate cache store failed: %v", err)
			}
		}
	}
	return out, nil
}

type LogEstimateInput struct {
	Estimate   EstimateResult
	Name       string
	MealType   string
	ConsumedAt time.Time
	Notes      string
}

// LogEstimate stores an estimate as an entry. Name overrides the model's name.
func LogEstimate(db *sql.DB, in LogEstimateInput) (model.Entry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Estimate.Food.Name
	}
	return CreateEntry(db, CreateEntryInput{
		Name:       name,
		Calories:   int(math.Round(in.Estimate.Food.Calories)),
		ProteinG:   roundTenth(in.Estimate.Food.ProteinG),
		CarbsG:     roundTenth(in.Estimate.Food.CarbsG),
		FatG:       roundTenth(in.Estimate.Food.FatG),
		MealType:   in.MealType,
		ConsumedAt: in.ConsumedAt,
		Source:     model.SourceAI,
		SourceRef:  in.Estimate.Model,
		Notes:      in.Notes,
	})
}

func estimateCacheKey(modelName, prompt string, image *llm.Image) string {
	h := sha256.New()
	h.Write([]byte(modelName))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(prompt)))
	if image != nil {
		h.Write([]byte{0})
		h.Write(image.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
