package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// limitKeyTTL keeps yesterday's counters around long enough for timezone
// stragglers, then lets Redis expire them.
const limitKeyTTL = 48 * time.Hour

// RedisLimitStore is a Redis-backed LimitStore. Each counter is one key
// per user per UTC day, incremented with INCR and checked against the
// limit; an increment that overshoots is rolled back with DECR, so two
// racing swipes at the last allowance cannot both succeed.
type RedisLimitStore struct {
	client *redis.Client
}

// NewRedisLimitStore creates a Redis-backed limit store.
func NewRedisLimitStore(client *redis.Client) *RedisLimitStore {
	return &RedisLimitStore{client: client}
}

func redisLimitKey(userID string, day time.Time, kind CounterKind) string {
	return fmt.Sprintf("limits:%s:%s:%s", userID, DayKey(day), kind)
}

// Consume increments the counters if all stay within their limits. On a
// quota hit, counters consumed earlier in the same call are handed back.
func (s *RedisLimitStore) Consume(ctx context.Context, userID string, day time.Time, kinds []CounterKind, limits Limits) error {
	consumed := make([]CounterKind, 0, len(kinds))

	for _, kind := range kinds {
		key := redisLimitKey(userID, day, kind)

		val, err := s.client.Incr(ctx, key).Result()
		if err != nil {
			s.rollback(ctx, userID, day, consumed)
			return fmt.Errorf("incrementing %s: %w", key, err)
		}
		if val == 1 {
			// First use today; arm the expiry.
			if err := s.client.Expire(ctx, key, limitKeyTTL).Err(); err != nil {
				s.rollback(ctx, userID, day, append(consumed, kind))
				return fmt.Errorf("setting ttl on %s: %w", key, err)
			}
		}

		if val > int64(limits.limitFor(kind)) {
			// Over the limit: undo this increment and the earlier ones.
			s.rollback(ctx, userID, day, append(consumed, kind))
			return ErrQuotaExceeded
		}
		consumed = append(consumed, kind)
	}

	return nil
}

// Restore decrements the counters, flooring at zero.
func (s *RedisLimitStore) Restore(ctx context.Context, userID string, day time.Time, kinds []CounterKind) error {
	for _, kind := range kinds {
		key := redisLimitKey(userID, day, kind)
		val, err := s.client.Decr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("decrementing %s: %w", key, err)
		}
		if val < 0 {
			// Never let a counter sit below zero.
			if err := s.client.Set(ctx, key, 0, limitKeyTTL).Err(); err != nil {
				return fmt.Errorf("flooring %s: %w", key, err)
			}
		}
	}
	return nil
}

// Usage returns the consumed allowances for the day.
func (s *RedisLimitStore) Usage(ctx context.Context, userID string, day time.Time) (Usage, error) {
	var usage Usage

	reads := []struct {
		kind CounterKind
		dest *int
	}{
		{CounterLikes, &usage.LikesUsed},
		{CounterSuperLikes, &usage.SuperLikesUsed},
		{CounterRewinds, &usage.RewindsUsed},
	}

	for _, r := range reads {
		key := redisLimitKey(userID, day, r.kind)
		val, err := s.client.Get(ctx, key).Int()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return Usage{}, fmt.Errorf("reading %s: %w", key, err)
		}
		*r.dest = val
	}

	return usage, nil
}

// rollback hands back counters consumed before a failed Consume.
func (s *RedisLimitStore) rollback(ctx context.Context, userID string, day time.Time, kinds []CounterKind) {
	for _, kind := range kinds {
		s.client.Decr(ctx, redisLimitKey(userID, day, kind))
	}
}
