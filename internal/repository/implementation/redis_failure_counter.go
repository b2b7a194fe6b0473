package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"minima-be/internal/repository/contract"
)

const failureKeyTTL = 1 * time.Hour

// RedisFailureCounter shares the failed-login counters across instances, so
// rate limiting keeps working when more than one replica serves /auth.
type RedisFailureCounter struct {
	client *redis.Client
}

var _ contract.FailureCounter = &RedisFailureCounter{}

func NewRedisFailureCounter(url string) (*RedisFailureCounter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisFailureCounter{client: redis.NewClient(opts)}, nil
}

func (f *RedisFailureCounter) key(origin string) string {
	return "auth:failures:" + origin
}

func (f *RedisFailureCounter) Failures(ctx context.Context, origin string) (int, error) {
	n, err := f.client.Get(ctx, f.key(origin)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read failure counter: %w", err)
	}
	return n, nil
}

func (f *RedisFailureCounter) RecordFailure(ctx context.Context, origin string) error {
	key := f.key(origin)
	pipe := f.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, failureKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

func (f *RedisFailureCounter) Reset(ctx context.Context, origin string) error {
	if err := f.client.Del(ctx, f.key(origin)).Err(); err != nil {
		return fmt.Errorf("reset failure counter: %w", err)
	}
	return nil
}
