package nutrilog

import (
	"context"
	"database/sql"
	"log"

	"github.com/saadjs/nutrilog/internal/app"
	"github.com/saadjs/nutrilog/internal/provider/llm"
	"github.com/saadjs/nutrilog/internal/service"
)

func newEstimator(cfg *app.Config) *llm.Client {
	return &llm.Client{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
}

// newEstimateCache uses Redis when cache.redis_url is set and falls back to
// the SQLite table when Redis is unset or unreachable.
func newEstimateCache(ctx context.Context, cfg *app.Config, sqldb *sql.DB) (service.EstimateCache, func()) {
	if cfg.Cache.RedisURL != "" {
		rc, err := service.NewRedisEstimateCache(ctx, cfg.Cache.RedisURL)
		if err == nil {
			return rc, func() { _ = rc.Close() }
		}
		log.Printf("redis cache unavailable, using sqlite: %v", err)
	}
	return &service.SQLiteEstimateCache{DB: sqldb}, func() {}
}
