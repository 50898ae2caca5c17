package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EstimateCache stores serialized AI estimates. Get reports found=false on a
// miss or an expired row.
type EstimateCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

type SQLiteEstimateCache struct {
	DB *sql.DB
}

func (c *SQLiteEstimateCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload, expiresAtRaw string
	err := c.DB.QueryRowContext(ctx, `SELECT payload, expires_at FROM estimate_cache WHERE key = ?`, key).Scan(&payload, &expiresAtRaw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup estimate cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresAtRaw)
	if err != nil {
		return nil, false, fmt.Errorf("parse estimate cache expiry: %w", err)
	}
	if time.Now().After(expiresAt) {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

func (c *SQLiteEstimateCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	_, err := c.DB.ExecContext(ctx, `
INSERT INTO estimate_cache(key, payload, expires_at)
VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  payload=excluded.payload,
  expires_at=excluded.expires_at
`, key, string(payload), time.Now().Add(ttl).UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert estimate cache: %w", err)
	}
	return nil
}

type RedisEstimateCache struct {
	Client *redis.Client
	Prefix string
}

// NewRedisEstimateCache connects to url (redis://...) and pings it once.
func NewRedisEstimateCache(ctx context.Context, url string) (*RedisEstimateCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisEstimateCache{Client: client, Prefix: "nutrilog:estimate:"}, nil
}

func (c *RedisEstimateCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get estimate: %w", err)
	}
	return data, true, nil
}

func (c *RedisEstimateCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.Client.Set(ctx, c.Prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set estimate: %w", err)
	}
	return nil
}

func (c *RedisEstimateCache) Close() error {
	return c.Client.Close()
}
