package swipe

import (
	"context"
	"sync"
	"time"
)

// CounterKind names one daily allowance counter.
type CounterKind string

// Daily allowance counters.
const (
	CounterLikes      CounterKind = "likes"
	CounterSuperLikes CounterKind = "super_likes"
	CounterRewinds    CounterKind = "rewinds"
)

// limitFor returns the allowance for the counter kind.
func (l Limits) limitFor(kind CounterKind) int {
	switch kind {
	case CounterLikes:
		return l.Likes
	case CounterSuperLikes:
		return l.SuperLikes
	case CounterRewinds:
		return l.Rewinds
	}
	return 0
}

// LimitStore tracks per-user daily counters. Implementations must make
// Consume safe against concurrent swipes by the same user: two racing
// calls at the last allowance must not both succeed.
type LimitStore interface {
	// Consume increments the given counters for the user's day if every
	// one of them stays within its limit. On ErrQuotaExceeded no counter
	// changes.
	Consume(ctx context.Context, userID string, day time.Time, kinds []CounterKind, limits Limits) error

	// Restore decrements the given counters, flooring at zero. Used when
	// a rewind hands an allowance back.
	Restore(ctx context.Context, userID string, day time.Time, kinds []CounterKind) error

	// Usage returns the user's consumed allowances for the day.
	Usage(ctx context.Context, userID string, day time.Time) (Usage, error)
}

// InMemoryLimitStore is a mutex-guarded LimitStore for tests and single
// process deployments.
type InMemoryLimitStore struct {
	mu     sync.Mutex
	counts map[string]map[CounterKind]int // userID|day -> kind -> used
}

// NewInMemoryLimitStore creates an empty in-memory limit store.
func NewInMemoryLimitStore() *InMemoryLimitStore {
	return &InMemoryLimitStore{
		counts: make(map[string]map[CounterKind]int),
	}
}

func limitKey(userID string, day time.Time) string {
	return userID + "|" + DayKey(day)
}

// Consume increments the counters if all stay within their limits.
func (s *InMemoryLimitStore) Consume(ctx context.Context, userID string, day time.Time, kinds []CounterKind, limits Limits) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := limitKey(userID, day)
	used, ok := s.counts[key]
	if !ok {
		used = make(map[CounterKind]int)
		s.counts[key] = used
	}

	for _, kind := range kinds {
		if used[kind] >= limits.limitFor(kind) {
			return ErrQuotaExceeded
		}
	}
	for _, kind := range kinds {
		used[kind]++
	}
	return nil
}

// Restore decrements the counters, flooring at zero.
func (s *InMemoryLimitStore) Restore(ctx context.Context, userID string, day time.Time, kinds []CounterKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, ok := s.counts[limitKey(userID, day)]
	if !ok {
		return nil
	}
	for _, kind := range kinds {
		if used[kind] > 0 {
			used[kind]--
		}
	}
	return nil
}

// Usage returns the consumed allowances for the day.
func (s *InMemoryLimitStore) Usage(ctx context.Context, userID string, day time.Time) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.counts[limitKey(userID, day)]
	return Usage{
		LikesUsed:      used[CounterLikes],
		SuperLikesUsed: used[CounterSuperLikes],
		RewindsUsed:    used[CounterRewinds],
	}, nil
}
