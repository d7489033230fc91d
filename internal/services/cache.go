package services

import (
	"context"
	"time"
)

// Cache is the small slice of Redis the services need. Lookups are
// best-effort: a cache miss or error falls through to the repository.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const jobCacheTTL = 5 * time.Minute
