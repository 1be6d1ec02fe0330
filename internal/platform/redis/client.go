// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis owns the connection to the volatile store.

Librio parks nothing durable here. The only tenant today is the viewer
profile cache of the account module, and every entry it writes carries a
TTL. Keys live under a [Keyspace] so staging and production can share a
server without trampling each other.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	ioTimeout    = 2 * time.Second
	pingTimeout  = 2 * time.Second
	defaultPool  = 10
	keySeparator = ":"
)

// Options configures [NewClient]. Zero values take the defaults.
type Options struct {
	URL string
	// PoolSize caps open connections per process.
	PoolSize int
}

// NewClient dials the server described by options.URL and pings it.
// A failed ping closes the client before returning.
func NewClient(context stdctx.Context, options Options, logger *slog.Logger) (*redis.Client, error) {
	parsed, err := redis.ParseURL(options.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	parsed.PoolSize = options.PoolSize
	if parsed.PoolSize <= 0 {
		parsed.PoolSize = defaultPool
	}
	parsed.MinIdleConns = max(1, parsed.PoolSize/5)
	parsed.DialTimeout = dialTimeout
	parsed.ReadTimeout = ioTimeout
	parsed.WriteTimeout = ioTimeout

	client := redis.NewClient(parsed)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", parsed.Addr),
		slog.Int("db", parsed.DB),
		slog.Int("pool_size", parsed.PoolSize),
	)
	return client, nil
}

// Ping backs the /ready check.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}

// Keyspace is the prefix shared by every key a deployment writes.
type Keyspace string

// DefaultKeyspace matches the REDIS_NAMESPACE default.
const DefaultKeyspace Keyspace = "librio"

// Key joins parts under the keyspace, e.g. "librio:account:viewer:<id>".
// Empty parts are skipped; an empty keyspace yields the bare joined parts.
func (keyspace Keyspace) Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if keyspace != "" {
		segments = append(segments, strings.TrimSuffix(string(keyspace), keySeparator))
	}
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, keySeparator)
}

