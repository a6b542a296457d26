// Package cache provides a small read-through cache used for catalog lookups.
// A Redis-backed implementation is used in production; an in-memory
// implementation backs tests and deployments without Redis.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a string key/value store with TTL expiry. Get returns an empty
// string on a miss, never an error.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	GenerateKey(operation, key string) string
}

func generateKey(serviceName, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", serviceName, operation, key)
}
