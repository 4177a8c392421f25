package redis_repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scheduleKeyPrefix = "schedule:last:"
	lockKeyPrefix     = "sched:lock:"
)

// RedisScheduleRepository remembers when each schedule last fired and guards
// runs with a short-lived lock so replicas do not double fire.
type RedisScheduleRepository struct {
	client *redis.Client
}

func NewRedisScheduleRepository(client *redis.Client) *RedisScheduleRepository {
	return &RedisScheduleRepository{client: client}
}

func (r *RedisScheduleRepository) LastRun(ctx context.Context, key string) (*time.Time, error) {
	val, err := r.client.Get(ctx, scheduleKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RedisScheduleRepository) MarkRun(ctx context.Context, key string, at time.Time) error {
	return r.client.Set(ctx, scheduleKeyPrefix+key, at.UTC().Format(time.RFC3339Nano), 0).Err()
}

// Acquire takes the lock for key. It reports false when another holder has it.
func (r *RedisScheduleRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
}

func (r *RedisScheduleRepository) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, lockKeyPrefix+key).Err()
}
