package scoring

import "time"

// TrendingBoostConfig holds the multiplicative boost constants applied when
// ranking trending content. These values were tuned for the trending
// surface and differ from the suggestion table on purpose.
type TrendingBoostConfig struct {
	Verified            float64 `json:"verified"`              // Verified author multiplier (default: 1.2)
	Gold                float64 `json:"gold"`                  // Gold tier multiplier (default: 1.3)
	DiamondCouple       float64 `json:"diamond_couple"`        // Diamond/couple tier multiplier (default: 1.5)
	PostProximityFactor float64 `json:"post_proximity_factor"` // Proximity factor for posts (default: 0.5)
	UserProximityFactor float64 `json:"user_proximity_factor"` // Proximity factor for users (default: 0.3)
}

// SuggestionBoostConfig holds the multiplicative boost constants applied
// when ranking user suggestions.
type SuggestionBoostConfig struct {
	Verified           float64 `json:"verified"`              // Verified profile multiplier (default: 1.3)
	Gold               float64 `json:"gold"`                  // Gold tier multiplier (default: 1.2)
	DiamondCouple      float64 `json:"diamond_couple"`        // Diamond/couple tier multiplier (default: 1.5)
	SuperBoostRadiusKm float64 `json:"super_boost_radius_km"` // Distance under which the flat super-boost applies (default: 10)
	SuperBoost         float64 `json:"super_boost"`           // Flat nearby multiplier (default: 2.0)
	NewAccount         float64 `json:"new_account"`           // New-account multiplier (default: 1.1)
	NewAccountMaxDays  int     `json:"new_account_max_days"`  // Account age cutoff in days (default: 30)
}

// DefaultTrendingBoosts returns the default trending boost table.
func DefaultTrendingBoosts() TrendingBoostConfig {
	return TrendingBoostConfig{
		Verified:            1.2,
		Gold:                1.3,
		DiamondCouple:       1.5,
		PostProximityFactor: 0.5,
		UserProximityFactor: 0.3,
	}
}

// DefaultSuggestionBoosts returns the default suggestion boost table.
func DefaultSuggestionBoosts() SuggestionBoostConfig {
	return SuggestionBoostConfig{
		Verified:           1.3,
		Gold:               1.2,
		DiamondCouple:      1.5,
		SuperBoostRadiusKm: 10,
		SuperBoost:         2.0,
		NewAccount:         1.1,
		NewAccountMaxDays:  30,
	}
}

// AuthorBoost returns the combined author multiplier for the trending
// surface: verified boost times premium-tier boost. Returns 1.0 for an
// unverified free-tier author. All boosts multiply, so the product is
// independent of application order.
func (c TrendingBoostConfig) AuthorBoost(verified bool, tier string) float64 {
	boost := 1.0
	if verified {
		boost *= c.Verified
	}
	switch tier {
	case TierDiamond, TierCouple:
		boost *= c.DiamondCouple
	case TierGold:
		boost *= c.Gold
	}
	return boost
}

// LocationBoost returns the proximity multiplier for an item at distanceKm
// from the requester given a search radius.
//
// Formula: 1 + factor*(1 - distance/radius) when distance <= radius,
// otherwise 1.0. The factor differs for posts and users; callers pass
// PostProximityFactor or UserProximityFactor.
func (c TrendingBoostConfig) LocationBoost(factor, distanceKm, radiusKm float64) float64 {
	if radiusKm <= 0 || distanceKm > radiusKm {
		return 1.0
	}
	return 1.0 + factor*(1.0-distanceKm/radiusKm)
}

// ProfileBoost returns the combined multiplier for a suggestion candidate:
// verified boost, premium-tier boost, and new-account boost.
func (c SuggestionBoostConfig) ProfileBoost(verified bool, tier string, createdAt, now time.Time) float64 {
	boost := 1.0
	if verified {
		boost *= c.Verified
	}
	switch tier {
	case TierDiamond, TierCouple:
		boost *= c.DiamondCouple
	case TierGold:
		boost *= c.Gold
	}
	if c.NewAccountMaxDays > 0 {
		cutoff := time.Duration(c.NewAccountMaxDays) * 24 * time.Hour
		if age := now.Sub(createdAt); age >= 0 && age < cutoff {
			boost *= c.NewAccount
		}
	}
	return boost
}

// ProximityBoost returns the suggestion proximity multiplier.
//
// Candidates closer than SuperBoostRadiusKm get the flat SuperBoost
// multiplier regardless of the configured search radius. This discontinuity
// is intentional and must be preserved: nearby candidates jump straight to
// the super-boost instead of scaling with the radius formula.
func (c SuggestionBoostConfig) ProximityBoost(distanceKm float64) float64 {
	if distanceKm >= 0 && distanceKm < c.SuperBoostRadiusKm {
		return c.SuperBoost
	}
	return 1.0
}
