// Package cache provides Valkey (Redis-compatible) client initialization,
// the read-through document cache for stored CMS documents, and the
// rendered-page cache for the public Related Links page.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache reads degrade to a miss, so a slow Valkey must fail fast rather
// than stall page renders.
const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// ConnectValkey creates a Valkey client and verifies it with a ping.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
