package swipe

import (
	"context"
	"sync"
	"time"
)

// DecisionStore persists swipe decisions and boost state. One decision per
// (actor, target) pair; re-recording overwrites the action and keeps the
// original creation time, mirroring an upsert on a composite key.
type DecisionStore interface {
	// Record upserts the decision for the (actor, target) pair.
	Record(ctx context.Context, d *Decision) error

	// Get returns the decision for the pair, or ErrDecisionMissing.
	Get(ctx context.Context, actorID, targetID string) (*Decision, error)

	// HasLike reports whether actor has an outstanding like or super-like
	// for target. This is the mutual-like lookup.
	HasLike(ctx context.Context, actorID, targetID string) (bool, error)

	// SetMatched flips the matched flag on the pair's decision.
	SetMatched(ctx context.Context, actorID, targetID string, matched bool) error

	// LastUndoable returns the actor's most recently updated non-pass
	// decision, or ErrNothingToRewind.
	LastUndoable(ctx context.Context, actorID string) (*Decision, error)

	// Delete removes the pair's decision.
	Delete(ctx context.Context, actorID, targetID string) error

	// SetBoost records a profile boost expiring at the given time.
	SetBoost(ctx context.Context, userID string, expiresAt time.Time) error

	// BoostExpiry returns the user's boost expiry; the zero time means no
	// boost was ever activated. Readers compare against now; nothing
	// deactivates a boost besides the clock.
	BoostExpiry(ctx context.Context, userID string) (time.Time, error)
}

// InMemoryDecisionStore is an in-memory DecisionStore. Thread-safe via
// RWMutex.
type InMemoryDecisionStore struct {
	mu        sync.RWMutex
	decisions map[string]map[string]*Decision // actor -> target -> decision
	boosts    map[string]time.Time
}

// NewInMemoryDecisionStore creates an empty in-memory decision store.
func NewInMemoryDecisionStore() *InMemoryDecisionStore {
	return &InMemoryDecisionStore{
		decisions: make(map[string]map[string]*Decision),
		boosts:    make(map[string]time.Time),
	}
}

// Record upserts the decision for the (actor, target) pair.
func (s *InMemoryDecisionStore) Record(ctx context.Context, d *Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byTarget, ok := s.decisions[d.ActorID]
	if !ok {
		byTarget = make(map[string]*Decision)
		s.decisions[d.ActorID] = byTarget
	}

	if existing, ok := byTarget[d.TargetID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}

	decisionCopy := *d
	byTarget[d.TargetID] = &decisionCopy
	return nil
}

// Get returns the decision for the pair.
func (s *InMemoryDecisionStore) Get(ctx context.Context, actorID, targetID string) (*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decisions[actorID][targetID]
	if !ok {
		return nil, ErrDecisionMissing
	}
	decisionCopy := *d
	return &decisionCopy, nil
}

// HasLike reports whether actor has an outstanding like for target.
func (s *InMemoryDecisionStore) HasLike(ctx context.Context, actorID, targetID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decisions[actorID][targetID]
	return ok && d.Liked(), nil
}

// SetMatched flips the matched flag on the pair's decision.
func (s *InMemoryDecisionStore) SetMatched(ctx context.Context, actorID, targetID string, matched bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.decisions[actorID][targetID]
	if !ok {
		return ErrDecisionMissing
	}
	d.Matched = matched
	return nil
}

// LastUndoable returns the actor's most recently updated non-pass decision.
func (s *InMemoryDecisionStore) LastUndoable(ctx context.Context, actorID string) (*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Decision
	for _, d := range s.decisions[actorID] {
		if !d.Liked() {
			continue
		}
		if latest == nil || d.UpdatedAt.After(latest.UpdatedAt) {
			latest = d
		}
	}
	if latest == nil {
		return nil, ErrNothingToRewind
	}
	decisionCopy := *latest
	return &decisionCopy, nil
}

// Delete removes the pair's decision.
func (s *InMemoryDecisionStore) Delete(ctx context.Context, actorID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decisions[actorID][targetID]; !ok {
		return ErrDecisionMissing
	}
	delete(s.decisions[actorID], targetID)
	return nil
}

// SetBoost records a profile boost expiring at the given time.
func (s *InMemoryDecisionStore) SetBoost(ctx context.Context, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boosts[userID] = expiresAt
	return nil
}

// BoostExpiry returns the user's boost expiry.
func (s *InMemoryDecisionStore) BoostExpiry(ctx context.Context, userID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.boosts[userID], nil
}
