// Package profile provides models and repository for user profiles and the
// social graph (follow and block edges) that the rankers read.
package profile

import (
	"errors"
	"time"

	"github.com/openlove-social/openlove/internal/scoring"
)

// Common errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileDeleted  = errors.New("profile has been deleted")
	ErrInvalidTier     = errors.New("invalid premium tier")
	ErrSelfFollow      = errors.New("cannot follow yourself")
	ErrSelfBlock       = errors.New("cannot block yourself")
)

// Location is a WGS84 coordinate pair attached to a profile.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Profile represents a user profile with the attributes the ranking
// surfaces read: verification, premium tier, location, and interests.
type Profile struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	Verified    bool      `json:"verified"`
	Tier        string    `json:"tier"` // One of scoring.TierFree/Gold/Diamond/Couple
	Location    *Location `json:"location,omitempty"`
	Interests   []string  `json:"interests,omitempty"`

	// StripeCustomerID links the profile to its Stripe customer for
	// subscription tier resolution. Empty for free accounts.
	StripeCustomerID string `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Validate checks that the profile carries a recognized premium tier.
func (p *Profile) Validate() error {
	if !scoring.ValidTier(p.Tier) {
		return ErrInvalidTier
	}
	return nil
}

// HasLocation reports whether the profile carries coordinates.
func (p *Profile) HasLocation() bool {
	return p.Location != nil
}

// SharedInterests returns the interests the profile has in common with the
// given list. Matching is case-sensitive; interests are stored normalized.
func (p *Profile) SharedInterests(interests []string) []string {
	if len(p.Interests) == 0 || len(interests) == 0 {
		return nil
	}

	want := make(map[string]bool, len(interests))
	for _, interest := range interests {
		want[interest] = true
	}

	var shared []string
	for _, interest := range p.Interests {
		if want[interest] {
			shared = append(shared, interest)
		}
	}
	return shared
}
