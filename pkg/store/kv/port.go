// Package kv implements the KV Store capability port (spec.md §4.D): a
// JSON-serializing key/value cache. pkg/config carries its connection
// settings; neither the Progress Bus nor the Hybrid Retriever reads from
// or writes to it.
package kv

import (
	"context"
	"time"
)

// Store is a JSON-serializing key/value cache port, method set and
// Set/Get JSON-marshal convention grounded on
// vasic-digital-SuperAgent/internal/cache.RedisClient — wired here
// directly against github.com/redis/go-redis/v9 instead of that repo's
// fabricated digital.vasic.cache wrapper module.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
