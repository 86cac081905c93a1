package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value store for short-lived resolution results.
// Values are JSON strings so the memory and Redis backends stay
// interchangeable.
type Store interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}
