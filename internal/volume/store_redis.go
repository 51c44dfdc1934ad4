package volume

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nilclear/pkg/domain"
)

// Bucket keys age out on their own; TTLs just need to outlive the window.
const (
	dayKeyTTL   = 48 * time.Hour
	monthKeyTTL = 35 * 24 * time.Hour
)

// RedisStore tracks bucket totals in Redis so multiple instances share one
// ledger. Counters are plain INCRBY/DECRBY on per-bucket keys.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(entity domain.EntityID, bucket string) string {
	return "volume:" + entity.String() + ":" + bucket
}

func ttlFor(bucket string) time.Duration {
	// Day buckets are "2006-01-02", month buckets "2006-01".
	if len(bucket) == 10 {
		return dayKeyTTL
	}
	return monthKeyTTL
}

func (s *RedisStore) Add(ctx context.Context, entity domain.EntityID, bucket string, amount uint64) error {
	key := redisKey(entity, bucket)
	pipe := s.client.TxPipeline()
	pipe.IncrBy(ctx, key, int64(amount))
	pipe.Expire(ctx, key, ttlFor(bucket))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment volume bucket: %w", err)
	}
	return nil
}

func (s *RedisStore) Subtract(ctx context.Context, entity domain.EntityID, bucket string, amount uint64) error {
	key := redisKey(entity, bucket)
	result, err := s.client.DecrBy(ctx, key, int64(amount)).Result()
	if err != nil {
		return fmt.Errorf("decrement volume bucket: %w", err)
	}
	if result < 0 {
		// Clamp: a rollback should never drive a bucket negative, but a
		// missing key (TTL expiry mid-window) must not poison future reads.
		if err := s.client.Set(ctx, key, 0, ttlFor(bucket)).Err(); err != nil {
			return fmt.Errorf("clamp volume bucket: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Total(ctx context.Context, entity domain.EntityID, bucket string) (uint64, error) {
	val, err := s.client.Get(ctx, redisKey(entity, bucket)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("read volume bucket: %w", err)
	}
	if val < 0 {
		return 0, nil
	}
	return uint64(val), nil
}
