// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache of rendered public HTML. A page
// is cached per canonical query string, so every category, filter and
// accordion combination is its own entry.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get returns cached HTML for a page key. Errors are logged and reported
// as a miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Fill stores rendered HTML for a page key with the configured TTL unless
// the key is already cached.
func (pc *PageCache) Fill(ctx context.Context, key string, html []byte) {
	if err := pc.client.SetNX(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache fill error", "key", key, "error", err)
	}
}

// InvalidateAll drops every cached page variant. After a save bumps the
// generation the old variants are unreachable anyway; this frees them
// early. Keys are collected with SCAN and unlinked in batches so a large
// cache never blocks Valkey.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	const batch = 100
	var deleted int
	keys := make([]string, 0, batch)
	flush := func() {
		if len(keys) == 0 {
			return
		}
		n, err := pc.client.Unlink(ctx, keys...).Result()
		if err != nil {
			slog.Warn("page cache unlink error", "error", err)
		}
		deleted += int(n)
		keys = keys[:0]
	}

	iter := pc.client.Scan(ctx, 0, pageKeyPrefix+"*", batch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == batch {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		slog.Warn("page cache scan error", "error", err)
	}
	if deleted > 0 {
		slog.Info("page cache cleared", "deleted", deleted)
	}
}

// RelatedLinksKey returns the cache key for the public Related Links page
// rendered from tree generation gen for the given encoded query.
func RelatedLinksKey(query string, gen int64) string {
	key := VersionedKey("related-links", gen)
	if query == "" {
		return key
	}
	return key + "?" + query
}
