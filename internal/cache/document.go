package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix = "doc:"

	// DefaultDocumentTTL is how long an entry for a document generation is
	// kept. Entries of superseded generations are never read again and
	// simply expire.
	DefaultDocumentTTL = 5 * time.Minute
)

// DocumentCache is a read-through cache of stored CMS documents, keyed by
// document key and holding the raw JSON body.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentCache creates a document cache backed by the given Valkey client.
func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	if ttl == 0 {
		ttl = DefaultDocumentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

// Get returns the cached body for key. Errors are logged and reported as a miss.
func (dc *DocumentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := dc.client.Get(ctx, docKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("document cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Fill caches body under key unless an entry is already there. Keys are
// expected to carry a generation (see VersionedKey), so an existing entry
// is at least as fresh as body.
func (dc *DocumentCache) Fill(ctx context.Context, key string, body []byte) {
	if err := dc.client.SetNX(ctx, docKeyPrefix+key, body, dc.ttl).Err(); err != nil {
		slog.Warn("document cache fill error", "key", key, "error", err)
	}
}
