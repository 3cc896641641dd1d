// Package swipe implements daily swipe quotas, decision recording, match
// resolution, and profile boosts.
package swipe

import (
	"errors"
	"time"

	"github.com/openlove-social/openlove/internal/scoring"
)

// Common errors for swipe operations.
var (
	ErrQuotaExceeded   = errors.New("daily quota exceeded")
	ErrInvalidAction   = errors.New("invalid swipe action")
	ErrSelfSwipe       = errors.New("cannot swipe on yourself")
	ErrNothingToRewind = errors.New("no decision to rewind")
	ErrDecisionMissing = errors.New("decision not found")
)

// Swipe actions.
const (
	ActionLike      = "like"
	ActionSuperLike = "super_like"
	ActionPass      = "pass"
)

// ValidAction reports whether the action is recognized.
func ValidAction(action string) bool {
	switch action {
	case ActionLike, ActionSuperLike, ActionPass:
		return true
	}
	return false
}

// Limits holds the daily allowances for one premium tier.
type Limits struct {
	Likes      int `json:"likes"`
	SuperLikes int `json:"super_likes"`
	Rewinds    int `json:"rewinds"`
}

// Per-tier daily limits. The free tier gets a small teaser allowance; the
// couple tier shares the diamond allowances.
var (
	freeLimits    = Limits{Likes: 20, SuperLikes: 1, Rewinds: 0}
	goldLimits    = Limits{Likes: 50, SuperLikes: 5, Rewinds: 3}
	diamondLimits = Limits{Likes: 200, SuperLikes: 20, Rewinds: 10}
)

// LimitsForTier returns the daily limits for a premium tier. Unknown tiers
// fall back to the free allowance.
func LimitsForTier(tier string) Limits {
	switch tier {
	case scoring.TierGold:
		return goldLimits
	case scoring.TierDiamond, scoring.TierCouple:
		return diamondLimits
	default:
		return freeLimits
	}
}

// Usage holds a user's consumed allowances for one day.
type Usage struct {
	LikesUsed      int `json:"likes_used"`
	SuperLikesUsed int `json:"super_likes_used"`
	RewindsUsed    int `json:"rewinds_used"`
}

// Decision is one swipe by an actor on a target. A pair has at most one
// decision; re-swiping overwrites the action and keeps the original time.
type Decision struct {
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id"`
	Action    string    `json:"action"`
	Matched   bool      `json:"matched"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Liked reports whether the decision is an outstanding like of any kind.
func (d *Decision) Liked() bool {
	return d.Action == ActionLike || d.Action == ActionSuperLike
}

// Result is the outcome of one swipe.
type Result struct {
	Decision *Decision `json:"decision"`
	Matched  bool      `json:"matched"`
	Usage    Usage     `json:"usage"`
	Limits   Limits    `json:"limits"`
}

// DayKey formats the UTC day bucket used for quota keys. Daily reset is
// key rollover, not a scheduled job.
func DayKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
