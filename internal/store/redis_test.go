package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlarcade/internal/model"
)

// setupTestRedis creates a miniredis instance and a redis client for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisStoreMissingKeyReturnsDefaults(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewRedisStore(client)

	stats, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGameStats(), stats)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewRedisStore(client)
	ctx := context.Background()

	want := &model.GameStats{
		TotalGamesPlayed: 3,
		HighestLevel:     9,
		TotalScore:       50000,
		LongestStreak:    12,
		Achievements:     []model.Achievement{},
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStoreCorruptValueFallsBackToDefaults(t *testing.T) {
	mr, client := setupTestRedis(t)
	require.NoError(t, mr.Set(statsKey, "{not json"))

	s := NewRedisStore(client)
	stats, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGameStats(), stats)
}
