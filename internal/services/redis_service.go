package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"thoughtcap/internal/models"
)

// RedisService is the optional hot cache in front of the durable daily-picks
// collection. Everything here is best-effort: a Redis miss or failure just
// falls through to Mongo.
type RedisService struct {
	client *redis.Client
}

// NewRedisService connects to Redis.
func NewRedisService(redisURL string) (*RedisService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Redis connection established")
	return &RedisService{client: client}, nil
}

// Client returns the underlying Redis client
func (r *RedisService) Client() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *RedisService) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func picksKey(userID, date string) string {
	return "picks:" + userID + ":" + date
}

// CachePicks stores the picks until end of day. Regeneration overwrites.
func (r *RedisService) CachePicks(ctx context.Context, picks *models.DailyPicks) {
	payload, err := json.Marshal(picks)
	if err != nil {
		return
	}

	ttl := untilEndOfDay(picks.GeneratedAt)
	if err := r.client.Set(ctx, picksKey(picks.UserID, picks.Date), payload, ttl).Err(); err != nil {
		log.Printf("⚠️ [REDIS] Failed to cache picks: %v", err)
	}
}

// GetPicks returns the cached picks or nil on miss/failure.
func (r *RedisService) GetPicks(ctx context.Context, userID, date string) *models.DailyPicks {
	payload, err := r.client.Get(ctx, picksKey(userID, date)).Bytes()
	if err != nil {
		return nil
	}

	var picks models.DailyPicks
	if err := json.Unmarshal(payload, &picks); err != nil {
		return nil
	}
	return &picks
}

func untilEndOfDay(now time.Time) time.Duration {
	eod := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	ttl := time.Until(eod)
	if ttl <= 0 {
		ttl = time.Hour
	}
	return ttl
}
