package swipe

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/openlove-social/openlove/internal/profile"
)

// fallbackMatchProbability is the legacy dice-roll match chance used when
// the mutual-like check is disabled.
const fallbackMatchProbability = 0.3

// ProfileSource resolves the actor's premium tier.
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
}

// Config controls match resolution.
type Config struct {
	// MatchProbabilityFallback restores the legacy behavior of matching
	// non-pass swipes with a fixed probability instead of checking for a
	// mutual like. Off by default.
	MatchProbabilityFallback bool

	// MatchProbability is the fallback dice-roll chance. Zero means the
	// default of 0.3.
	MatchProbability float64
}

// Service coordinates quotas, decision recording, and match resolution.
type Service struct {
	decisions DecisionStore
	limits    LimitStore
	profiles  ProfileSource
	cfg       Config
	logger    *slog.Logger
	randFloat func() float64
}

// NewService creates a swipe service. A nil logger falls back to
// slog.Default.
func NewService(decisions DecisionStore, limits LimitStore, profiles ProfileSource, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MatchProbability == 0 {
		cfg.MatchProbability = fallbackMatchProbability
	}
	return &Service{
		decisions: decisions,
		limits:    limits,
		profiles:  profiles,
		cfg:       cfg,
		logger:    logger,
		randFloat: rand.Float64,
	}
}

// Swipe records the actor's decision on the target.
//
// A pass never consumes quota and never matches. A like consumes the like
// allowance; a super-like consumes both the super-like and like
// allowances. When the relevant allowance is exhausted the swipe fails
// with ErrQuotaExceeded and no counter changes.
func (s *Service) Swipe(ctx context.Context, actorID, targetID, action string, now time.Time) (*Result, error) {
	if !ValidAction(action) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if actorID == targetID {
		return nil, ErrSelfSwipe
	}

	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}
	limits := LimitsForTier(actor.Tier)

	if kinds := countersFor(action); len(kinds) > 0 {
		if err := s.limits.Consume(ctx, actorID, now, kinds, limits); err != nil {
			return nil, err
		}
	}

	decision := &Decision{
		ActorID:   actorID,
		TargetID:  targetID,
		Action:    action,
		UpdatedAt: now,
	}
	if err := s.decisions.Record(ctx, decision); err != nil {
		return nil, fmt.Errorf("recording decision: %w", err)
	}

	matched := false
	if action != ActionPass {
		matched, err = s.resolveMatch(ctx, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if matched {
			decision.Matched = true
			if err := s.decisions.SetMatched(ctx, actorID, targetID, true); err != nil {
				return nil, fmt.Errorf("marking match: %w", err)
			}
			// Mark the reciprocal decision too when it exists.
			if err := s.decisions.SetMatched(ctx, targetID, actorID, true); err != nil && err != ErrDecisionMissing {
				return nil, fmt.Errorf("marking reciprocal match: %w", err)
			}
			s.logger.Info("match created", "actor_id", actorID, "target_id", targetID)
		}
	}

	usage, err := s.limits.Usage(ctx, actorID, now)
	if err != nil {
		return nil, fmt.Errorf("reading usage: %w", err)
	}

	return &Result{
		Decision: decision,
		Matched:  matched,
		Usage:    usage,
		Limits:   limits,
	}, nil
}

// Rewind undoes the actor's most recent non-pass decision, consuming one
// rewind allowance and handing the undone like's allowances back.
func (s *Service) Rewind(ctx context.Context, actorID string, now time.Time) (*Decision, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}
	limits := LimitsForTier(actor.Tier)

	last, err := s.decisions.LastUndoable(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.limits.Consume(ctx, actorID, now, []CounterKind{CounterRewinds}, limits); err != nil {
		return nil, err
	}

	if err := s.decisions.Delete(ctx, actorID, last.TargetID); err != nil {
		return nil, fmt.Errorf("deleting decision: %w", err)
	}

	if err := s.limits.Restore(ctx, actorID, now, countersFor(last.Action)); err != nil {
		return nil, fmt.Errorf("restoring allowance: %w", err)
	}

	s.logger.Info("swipe rewound",
		"actor_id", actorID,
		"target_id", last.TargetID,
		"action", last.Action,
	)
	return last, nil
}

// ActivateBoost sets the actor's boost expiry. Expiry is checked by
// readers; there is no deactivation timer.
func (s *Service) ActivateBoost(ctx context.Context, actorID string, duration time.Duration, now time.Time) (time.Time, error) {
	if duration <= 0 {
		return time.Time{}, fmt.Errorf("boost duration must be positive, got %s", duration)
	}

	expiresAt := now.Add(duration)
	if err := s.decisions.SetBoost(ctx, actorID, expiresAt); err != nil {
		return time.Time{}, fmt.Errorf("setting boost: %w", err)
	}

	s.logger.Info("boost activated", "actor_id", actorID, "expires_at", expiresAt)
	return expiresAt, nil
}

// BoostActive reports whether the actor has an unexpired boost.
func (s *Service) BoostActive(ctx context.Context, actorID string, now time.Time) (bool, error) {
	expiry, err := s.decisions.BoostExpiry(ctx, actorID)
	if err != nil {
		return false, err
	}
	return expiry.After(now), nil
}

// resolveMatch decides whether the swipe creates a match. The default is
// a mutual-like lookup; the probability fallback reproduces the legacy
// dice roll.
func (s *Service) resolveMatch(ctx context.Context, actorID, targetID string) (bool, error) {
	if s.cfg.MatchProbabilityFallback {
		return s.randFloat() < s.cfg.MatchProbability, nil
	}

	liked, err := s.decisions.HasLike(ctx, targetID, actorID)
	if err != nil {
		return false, fmt.Errorf("checking mutual like: %w", err)
	}
	return liked, nil
}

// countersFor returns the allowance counters an action consumes.
func countersFor(action string) []CounterKind {
	switch action {
	case ActionLike:
		return []CounterKind{CounterLikes}
	case ActionSuperLike:
		return []CounterKind{CounterSuperLikes, CounterLikes}
	}
	return nil
}
