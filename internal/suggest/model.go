// Package suggest recommends accounts to follow by merging several
// candidate strategies and ranking them with the suggestion boost chain.
package suggest

import (
	"fmt"
	"time"

	"github.com/openlove-social/openlove/internal/profile"
	"github.com/openlove-social/openlove/internal/trending"
)

// Strategy names attached to suggestions for ranking transparency.
const (
	StrategyNetwork   = "network"
	StrategyLocation  = "location"
	StrategyInterests = "interests"
	StrategyPopular   = "popular"
)

// DefaultRadiusKm is the location strategy search radius when the caller
// does not set one.
const DefaultRadiusKm = 50.0

// popularWindow is the follower-growth lookback for the popular strategy.
const popularWindow = 7 * 24 * time.Hour

// previewPostLimit caps the recent posts attached to each suggestion.
const previewPostLimit = 2

// Params holds the suggestion query parameters.
type Params struct {
	RadiusKm float64 `json:"radius_km"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

// Validate checks pagination and radius, wrapping trending.ErrInvalidRange
// so the HTTP layer maps both rankers' input errors the same way.
func (p Params) Validate() error {
	if p.Page <= 0 {
		return fmt.Errorf("%w: page must be positive, got %d", trending.ErrInvalidRange, p.Page)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", trending.ErrInvalidRange, p.Limit)
	}
	if p.RadiusKm < 0 {
		return fmt.Errorf("%w: radius must not be negative, got %f", trending.ErrInvalidRange, p.RadiusKm)
	}
	return nil
}

// PostPreview is a trimmed recent post attached to a suggestion. Location
// is the author's coarse geohash, never raw coordinates.
type PostPreview struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	Location  string    `json:"location,omitempty"`
}

// Suggestion is a ranked follow candidate.
type Suggestion struct {
	Profile     *profile.Profile `json:"profile"`
	Score       float64          `json:"score"`       // Best raw strategy score
	FinalScore  float64          `json:"final_score"` // Score after the boost chain
	Strategy    string           `json:"strategy"`    // Strategy that produced the score
	DistanceKm  *float64         `json:"distance_km,omitempty"`
	RecentPosts []PostPreview    `json:"recent_posts,omitempty"`
}
