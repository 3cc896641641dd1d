// Package trending ranks posts, users, hashtags, and topics over a recent
// time window. All ranking is stateless per request; callers inject `now`.
package trending

import (
	"errors"
	"fmt"
	"time"

	"github.com/openlove-social/openlove/internal/geo"
	"github.com/openlove-social/openlove/internal/post"
	"github.com/openlove-social/openlove/internal/profile"
)

// ErrInvalidRange indicates a malformed period, pagination, or location
// parameter. Wrapped errors carry the offending field.
var ErrInvalidRange = errors.New("invalid range")

// Ranking types accepted by Params.Type.
const (
	TypePosts    = "posts"
	TypeUsers    = "users"
	TypeHashtags = "hashtags"
	TypeTopics   = "topics"
	TypeAll      = "all"
)

// Periods accepted by Params.Period.
const (
	Period1h  = "1h"
	Period24h = "24h"
	Period7d  = "7d"
	Period30d = "30d"
)

// periodHours maps each period to its span in hours. Used both for the
// window start and for hashtag velocity normalization.
var periodHours = map[string]float64{
	Period1h:  1,
	Period24h: 24,
	Period7d:  168,
	Period30d: 720,
}

// PeriodHours returns the span of the period in hours and whether the
// period is recognized.
func PeriodHours(period string) (float64, bool) {
	h, ok := periodHours[period]
	return h, ok
}

// Origin is the requester's coordinate pair for proximity boosting.
type Origin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Params holds the trending query parameters.
type Params struct {
	Type     string  `json:"type"`
	Period   string  `json:"period"`
	Origin   *Origin `json:"origin,omitempty"`
	RadiusKm float64 `json:"radius_km,omitempty"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

// Validate checks the parameters and returns an error wrapping
// ErrInvalidRange on the first problem found.
func (p Params) Validate() error {
	switch p.Type {
	case TypePosts, TypeUsers, TypeHashtags, TypeTopics, TypeAll:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRange, p.Type)
	}

	if _, ok := periodHours[p.Period]; !ok {
		return fmt.Errorf("%w: unknown period %q", ErrInvalidRange, p.Period)
	}

	if p.Page <= 0 {
		return fmt.Errorf("%w: page must be positive, got %d", ErrInvalidRange, p.Page)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRange, p.Limit)
	}

	if p.Origin != nil {
		if !geo.ValidCoordinates(p.Origin.Latitude, p.Origin.Longitude) {
			return fmt.Errorf("%w: coordinates out of range (%f, %f)",
				ErrInvalidRange, p.Origin.Latitude, p.Origin.Longitude)
		}
		if p.RadiusKm <= 0 {
			return fmt.Errorf("%w: radius must be positive with a location, got %f",
				ErrInvalidRange, p.RadiusKm)
		}
	}

	return nil
}

// WindowStart returns the start of the trending window for the params'
// period. Callers must have validated the period first.
func (p Params) WindowStart(now time.Time) time.Time {
	hours := periodHours[p.Period]
	return now.Add(-time.Duration(hours * float64(time.Hour)))
}

// ScoredPost is a post annotated with its trending score and the score
// components, surfaced for debugging and ranking transparency.
type ScoredPost struct {
	Post          *post.Post `json:"post"`
	Score         float64    `json:"score"`
	Engagement    float64    `json:"engagement"`
	TimeFactor    float64    `json:"time_factor"`
	Velocity      float64    `json:"velocity"`
	AuthorBoost   float64    `json:"author_boost"`
	LocationBoost float64    `json:"location_boost"`
}

// ScoredUser is a profile annotated with its follower-growth trending score.
type ScoredUser struct {
	Profile       *profile.Profile `json:"profile"`
	Score         float64          `json:"score"`
	NewFollowers  int              `json:"new_followers"`
	GrowthRate    float64          `json:"growth_rate"`
	AgeFactor     float64          `json:"age_factor"`
	UserBoost     float64          `json:"user_boost"`
	LocationBoost float64          `json:"location_boost"`
}

// HashtagTrend is an aggregated hashtag with its trend score.
type HashtagTrend struct {
	Tag        string    `json:"tag"`
	Count      int       `json:"count"`
	Engagement int       `json:"engagement"`
	LastSeen   time.Time `json:"last_seen"`
	Score      float64   `json:"score"`
}

// TopicTrend is a bag-of-words topic with its accumulated weight.
type TopicTrend struct {
	Topic  string  `json:"topic"`
	Weight float64 `json:"weight"`
}

// Result holds the combined trending response. Sections the request did
// not ask for, or that degraded on a fetch failure, are empty.
type Result struct {
	Posts    []ScoredPost   `json:"posts,omitempty"`
	Users    []ScoredUser   `json:"users,omitempty"`
	Hashtags []HashtagTrend `json:"hashtags,omitempty"`
	Topics   []TopicTrend   `json:"topics,omitempty"`
}
