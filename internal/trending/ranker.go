package trending

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/openlove-social/openlove/internal/geo"
	"github.com/openlove-social/openlove/internal/post"
	"github.com/openlove-social/openlove/internal/profile"
	"github.com/openlove-social/openlove/internal/scoring"
	"github.com/openlove-social/openlove/internal/stats"
)

// PostSource provides the post reads the ranker needs.
type PostSource interface {
	ListPublicSince(ctx context.Context, since time.Time) ([]*post.Post, error)
}

// ProfileSource provides the profile and follower-graph reads the ranker needs.
type ProfileSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]*profile.Profile, error)
	FollowerGainsSince(ctx context.Context, since time.Time) (map[string]int, error)
	FollowerCounts(ctx context.Context, userID string, since time.Time) (gained int, prior int, err error)
}

// Ranker computes trending posts, users, hashtags, and topics.
// Stateless per request; safe for concurrent use.
type Ranker struct {
	posts    PostSource
	profiles ProfileSource
	boosts   scoring.TrendingBoostConfig
	logger   *slog.Logger
	stats    *stats.RankStats
}

// NewRanker creates a trending ranker. A nil logger falls back to
// slog.Default; a nil stats sink gets a fresh one.
func NewRanker(posts PostSource, profiles ProfileSource, boosts scoring.TrendingBoostConfig, logger *slog.Logger, rankStats *stats.RankStats) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	if rankStats == nil {
		rankStats = stats.NewRankStats()
	}
	return &Ranker{
		posts:    posts,
		profiles: profiles,
		boosts:   boosts,
		logger:   logger,
		stats:    rankStats,
	}
}

// Stats exposes the section serve/degrade counters.
func (r *Ranker) Stats() *stats.RankStats {
	return r.stats
}

// RankPosts scores and ranks the public posts created within the params'
// window.
//
// Per post: trendingScore = engagement * timeFactor * velocity *
// authorBoost * locationBoost / 100, with velocity = engagement /
// max(1, hoursAgo). Sorted score descending, id ascending.
func (r *Ranker) RankPosts(ctx context.Context, params Params, now time.Time) ([]ScoredPost, error) {
	window, err := r.posts.ListPublicSince(ctx, params.WindowStart(now))
	if err != nil {
		return nil, err
	}

	authors, err := r.authorIndex(ctx, window)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredPost, 0, len(window))
	for _, p := range window {
		engagement := scoring.EngagementScore(p.LikeCount, p.CommentCount, p.ShareCount)
		timeFactor := scoring.TimeFactor(p.CreatedAt, now)
		hoursAgo := scoring.HoursSince(p.CreatedAt, now)
		velocity := engagement / maxFloat(1, hoursAgo)

		authorBoost := 1.0
		locationBoost := 1.0
		if author, ok := authors[p.AuthorID]; ok {
			authorBoost = r.boosts.AuthorBoost(author.Verified, author.Tier)
			locationBoost = r.locationBoost(r.boosts.PostProximityFactor, params, author.Location)
		}

		score := engagement * timeFactor * velocity * authorBoost * locationBoost / 100.0

		scored = append(scored, ScoredPost{
			Post:          p,
			Score:         score,
			Engagement:    engagement,
			TimeFactor:    timeFactor,
			Velocity:      velocity,
			AuthorBoost:   authorBoost,
			LocationBoost: locationBoost,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Post.ID < scored[j].Post.ID
	})

	return paginate(scored, params.Page, params.Limit), nil
}

// RankUsers ranks users by follower growth within the params' window.
//
// Per user: trendingScore = newFollowers * growthRate * ageFactor *
// userBoost * locationBoost, with growthRate = newFollowers /
// max(1, priorFollowers) and ageFactor 1.5 for accounts under 30 days.
func (r *Ranker) RankUsers(ctx context.Context, params Params, now time.Time) ([]ScoredUser, error) {
	since := params.WindowStart(now)

	gains, err := r.profiles.FollowerGainsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(gains))
	for id, gained := range gains {
		if gained > 0 {
			ids = append(ids, id)
		}
	}

	candidates, err := r.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredUser, 0, len(candidates))
	for _, candidate := range candidates {
		gained, prior, err := r.profiles.FollowerCounts(ctx, candidate.ID, since)
		if err != nil {
			return nil, err
		}
		if gained == 0 {
			continue
		}

		growthRate := float64(gained) / maxFloat(1, float64(prior))

		ageFactor := 1.0
		if now.Sub(candidate.CreatedAt) < 30*24*time.Hour {
			ageFactor = 1.5
		}

		userBoost := r.boosts.AuthorBoost(candidate.Verified, candidate.Tier)
		locationBoost := r.locationBoost(r.boosts.UserProximityFactor, params, candidate.Location)

		score := float64(gained) * growthRate * ageFactor * userBoost * locationBoost

		scored = append(scored, ScoredUser{
			Profile:       candidate,
			Score:         score,
			NewFollowers:  gained,
			GrowthRate:    growthRate,
			AgeFactor:     ageFactor,
			UserBoost:     userBoost,
			LocationBoost: locationBoost,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Profile.ID < scored[j].Profile.ID
	})

	return paginate(scored, params.Page, params.Limit), nil
}

// RankHashtags aggregates and scores hashtag use within the params'
// window, returning the top 20 tags.
func (r *Ranker) RankHashtags(ctx context.Context, params Params, now time.Time) ([]HashtagTrend, error) {
	window, err := r.posts.ListPublicSince(ctx, params.WindowStart(now))
	if err != nil {
		return nil, err
	}

	acc := newHashtagAccumulator()
	for _, p := range window {
		acc.add(p)
	}

	periodHrs, _ := PeriodHours(params.Period)
	trends := acc.trends(periodHrs, now)

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Score != trends[j].Score {
			return trends[i].Score > trends[j].Score
		}
		return trends[i].Tag < trends[j].Tag
	})

	if len(trends) > maxHashtags {
		trends = trends[:maxHashtags]
	}
	return trends, nil
}

// RankTopics extracts the top 10 weighted bag-of-words topics from the
// window's posts.
func (r *Ranker) RankTopics(ctx context.Context, params Params, now time.Time) ([]TopicTrend, error) {
	window, err := r.posts.ListPublicSince(ctx, params.WindowStart(now))
	if err != nil {
		return nil, err
	}

	weights := accumulateTopics(window)

	trends := make([]TopicTrend, 0, len(weights))
	for topic, weight := range weights {
		trends = append(trends, TopicTrend{Topic: topic, Weight: weight})
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Weight != trends[j].Weight {
			return trends[i].Weight > trends[j].Weight
		}
		return trends[i].Topic < trends[j].Topic
	})

	if len(trends) > maxTopics {
		trends = trends[:maxTopics]
	}
	return trends, nil
}

// RankAll runs the sections the params' type asks for concurrently and
// assembles the combined result. A failing section logs, counts as
// degraded, and yields an empty slice instead of aborting the others.
func (r *Ranker) RankAll(ctx context.Context, params Params, now time.Time) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	wantPosts := params.Type == TypePosts || params.Type == TypeAll
	wantUsers := params.Type == TypeUsers || params.Type == TypeAll
	wantHashtags := params.Type == TypeHashtags || params.Type == TypeAll
	wantTopics := params.Type == TypeTopics || params.Type == TypeAll

	result := &Result{}
	var wg sync.WaitGroup

	if wantPosts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := r.RankPosts(ctx, params, now)
			if err != nil {
				r.degrade("posts", err)
				return
			}
			r.stats.RecordServed()
			result.Posts = posts
		}()
	}

	if wantUsers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			users, err := r.RankUsers(ctx, params, now)
			if err != nil {
				r.degrade("users", err)
				return
			}
			r.stats.RecordServed()
			result.Users = users
		}()
	}

	if wantHashtags {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hashtags, err := r.RankHashtags(ctx, params, now)
			if err != nil {
				r.degrade("hashtags", err)
				return
			}
			r.stats.RecordServed()
			result.Hashtags = hashtags
		}()
	}

	if wantTopics {
		wg.Add(1)
		go func() {
			defer wg.Done()
			topics, err := r.RankTopics(ctx, params, now)
			if err != nil {
				r.degrade("topics", err)
				return
			}
			r.stats.RecordServed()
			result.Topics = topics
		}()
	}

	wg.Wait()
	return result, nil
}

// degrade logs a failed section and records it. The section's result
// stays empty in the combined response.
func (r *Ranker) degrade(section string, err error) {
	r.stats.RecordDegraded()
	r.logger.Error("trending section degraded",
		"section", section,
		"error", err,
	)
}

// authorIndex fetches the authors of the given posts keyed by id.
func (r *Ranker) authorIndex(ctx context.Context, posts []*post.Post) (map[string]*profile.Profile, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			ids = append(ids, p.AuthorID)
		}
	}

	authors, err := r.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*profile.Profile, len(authors))
	for _, a := range authors {
		index[a.ID] = a
	}
	return index, nil
}

// locationBoost computes the proximity multiplier for a candidate location
// against the params' origin. Returns 1.0 when either side has no location.
func (r *Ranker) locationBoost(factor float64, params Params, loc *profile.Location) float64 {
	if params.Origin == nil || loc == nil {
		return 1.0
	}
	distance := geo.DistanceKm(params.Origin.Latitude, params.Origin.Longitude, loc.Latitude, loc.Longitude)
	return r.boosts.LocationBoost(factor, distance, params.RadiusKm)
}

// paginate slices out the requested page. Pages start at 1; a page past
// the end returns an empty slice.
func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
