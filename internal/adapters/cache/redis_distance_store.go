package cache

import (
	"context"
	"errors"
	"fmt"
	"store-rebalance-service/internal/domain"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDistancePrefix = "rebalance:road_km:"

// RedisDistanceStore keeps live road distances in Redis with a TTL so
// stale routes eventually get refreshed.
type RedisDistanceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDistanceStore parses redisURL and verifies the connection.
func NewRedisDistanceStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisDistanceStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisDistanceStore{client: client, ttl: ttl}, nil
}

func redisKey(pair domain.StorePair) string {
	return redisDistancePrefix + pair.From + ":" + pair.To
}

func (s *RedisDistanceStore) Get(ctx context.Context, pair domain.StorePair) (float64, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(pair)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w", pair.String(), err)
	}

	km, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: parse %q: %w", pair.String(), raw, err)
	}
	return km, true, nil
}

func (s *RedisDistanceStore) Put(ctx context.Context, pair domain.StorePair, km float64) error {
	val := strconv.FormatFloat(km, 'f', -1, 64)
	if err := s.client.Set(ctx, redisKey(pair), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", pair.String(), err)
	}
	return nil
}

func (s *RedisDistanceStore) Close() error {
	return s.client.Close()
}
