package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"minima-be/internal/repository/contract"
)

// FailureCounter counts failed login attempts per origin in process memory.
// Counters expire after an hour of inactivity and are lost on restart, which
// limits brute-force attempts within a run but is not a durable control.
type FailureCounter struct {
	cache *cache.Cache
}

var _ contract.FailureCounter = &FailureCounter{}

func NewFailureCounter() *FailureCounter {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &FailureCounter{cache: c}
}

func (f *FailureCounter) Failures(ctx context.Context, origin string) (int, error) {
	if x, found := f.cache.Get(origin); found {
		return x.(int), nil
	}
	return 0, nil
}

func (f *FailureCounter) RecordFailure(ctx context.Context, origin string) error {
	current, _ := f.Failures(ctx, origin)
	f.cache.Set(origin, current+1, cache.DefaultExpiration)
	return nil
}

func (f *FailureCounter) Reset(ctx context.Context, origin string) error {
	f.cache.Delete(origin)
	return nil
}
