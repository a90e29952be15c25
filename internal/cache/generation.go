package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const genKeyPrefix = "gen:"

// Generation is a Valkey counter that versions cached entries of one
// document. Readers embed the current value in their cache keys and a save
// bumps it, so a fill that loaded the document before the save lands under
// a key no later reader asks for.
type Generation struct {
	client *redis.Client
	key    string
}

// NewGeneration creates the generation counter for the named document.
func NewGeneration(client *redis.Client, name string) *Generation {
	return &Generation{client: client, key: genKeyPrefix + name}
}

// Current returns the counter value. A counter that was never bumped is 0.
// ok is false when Valkey cannot be read; callers should then bypass the
// cache entirely.
func (g *Generation) Current(ctx context.Context) (int64, bool) {
	n, err := g.client.Get(ctx, g.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("cache generation read error", "key", g.key, "error", err)
		return 0, false
	}
	return n, true
}

// Bump advances the counter and returns the new value. The counter has no
// TTL; expiring it would reset it to a value readers already used.
func (g *Generation) Bump(ctx context.Context) (int64, error) {
	return g.client.Incr(ctx, g.key).Result()
}

// VersionedKey returns key scoped to generation gen.
func VersionedKey(key string, gen int64) string {
	return key + "@" + strconv.FormatInt(gen, 10)
}
