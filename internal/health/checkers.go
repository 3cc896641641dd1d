// Package health provides connectivity checks for the engine's external
// dependencies, used by the readiness probe.
package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkTimeout bounds a single dependency probe so a hung backend cannot
// stall the readiness endpoint.
const checkTimeout = 3 * time.Second

// DBChecker verifies connectivity to the Postgres instance that holds
// profiles and posts.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker creates a checker for the given database handle.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck pings the database.
func (d *DBChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// RedisChecker verifies connectivity to the Redis instance backing the
// swipe quota counters.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a checker for the given Redis client.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// HealthCheck sends a PING command.
func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}
