package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"mlarcade/internal/model"
)

// RedisStore keeps the stats record as a JSON value in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (*model.GameStats, error) {
	data, err := s.client.Get(ctx, statsKey).Result()
	if err == redis.Nil {
		return model.DefaultGameStats(), nil
	}
	if err != nil {
		return nil, err
	}

	var stats model.GameStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		log.Printf("Stored stats record is corrupt, falling back to defaults: %v", err)
		return model.DefaultGameStats(), nil
	}
	return &stats, nil
}

func (s *RedisStore) Save(ctx context.Context, stats *model.GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statsKey, data, 0).Err()
}
