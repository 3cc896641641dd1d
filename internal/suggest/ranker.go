package suggest

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

// ProfileSource provides the profile and graph reads the ranker needs.
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]*profile.Profile, error)
	Following(ctx context.Context, userID string) ([]string, error)
	Blocked(ctx context.Context, userID string) ([]string, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	SecondDegreeFollows(ctx context.Context, userID string) (map[string]int, error)
	FollowerGainsSince(ctx context.Context, since time.Time) (map[string]int, error)
	FollowerCounts(ctx context.Context, userID string, since time.Time) (gained int, prior int, err error)
	ListWithLocation(ctx context.Context) ([]*profile.Profile, error)
	ListWithInterests(ctx context.Context, interests []string) ([]*profile.Profile, error)
}

// PostSource provides the recent-post previews attached to suggestions.
type PostSource interface {
	ListRecentByAuthor(ctx context.Context, authorID string, limit int) ([]*post.Post, error)
}

// candidate is one strategy's scored hit for a profile.
type candidate struct {
	score      float64
	strategy   string
	distanceKm *float64
}

// Ranker computes follow suggestions. Stateless per request; safe for
// concurrent use.
type Ranker struct {
	profiles ProfileSource
	posts    PostSource
	boosts   scoring.SuggestionBoostConfig
	logger   *slog.Logger
	stats    *stats.RankStats
}

// NewRanker creates a suggestion ranker. A nil logger falls back to
// slog.Default; a nil stats sink gets a fresh one.
func NewRanker(profiles ProfileSource, posts PostSource, boosts scoring.SuggestionBoostConfig, logger *slog.Logger, rankStats *stats.RankStats) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	if rankStats == nil {
		rankStats = stats.NewRankStats()
	}
	return &Ranker{
		profiles: profiles,
		posts:    posts,
		boosts:   boosts,
		logger:   logger,
		stats:    rankStats,
	}
}

// Stats exposes the strategy serve/degrade counters.
func (r *Ranker) Stats() *stats.RankStats {
	return r.stats
}

// Suggest returns ranked follow suggestions for the requester.
//
// Candidates come from four strategies fetched concurrently (network,
// location, interests, popular), are merged keeping the highest score per
// profile, boosted, sorted finalScore descending with id ascending
// tie-break, paginated, and re-checked against the requester's follows.
// A failing strategy degrades to no candidates instead of aborting the
// whole call. Given unchanged inputs the output is identical.
func (r *Ranker) Suggest(ctx context.Context, requesterID string, params Params, now time.Time) ([]Suggestion, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.RadiusKm == 0 {
		params.RadiusKm = DefaultRadiusKm
	}

	requester, err := r.profiles.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	exclude, err := r.excludeSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	merged := r.runStrategies(ctx, requester, params, exclude, now)

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}

	candidates, err := r.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		if exclude[c.ID] {
			continue
		}
		hit := merged[c.ID]

		boost := r.boosts.ProfileBoost(c.Verified, c.Tier, c.CreatedAt, now)

		distance := hit.distanceKm
		if requester.HasLocation() && c.HasLocation() {
			d := geo.DistanceKm(
				requester.Location.Latitude, requester.Location.Longitude,
				c.Location.Latitude, c.Location.Longitude,
			)
			distance = &d
			boost *= r.boosts.ProximityBoost(d)
		}

		suggestions = append(suggestions, Suggestion{
			Profile:    c,
			Score:      hit.score,
			FinalScore: hit.score * boost,
			Strategy:   hit.strategy,
			DistanceKm: distance,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].FinalScore != suggestions[j].FinalScore {
			return suggestions[i].FinalScore > suggestions[j].FinalScore
		}
		return suggestions[i].Profile.ID < suggestions[j].Profile.ID
	})

	page := paginate(suggestions, params.Page, params.Limit)

	// Defensive re-check: the graph may have changed between the exclude
	// snapshot and now.
	filtered := make([]Suggestion, 0, len(page))
	for _, s := range page {
		following, err := r.profiles.IsFollowing(ctx, requesterID, s.Profile.ID)
		if err != nil {
			return nil, err
		}
		if following {
			continue
		}
		filtered = append(filtered, s)
	}

	r.attachPreviews(ctx, filtered)

	return filtered, nil
}

// excludeSet builds the set of ids never suggested: the requester, their
// follows, and their blocks.
func (r *Ranker) excludeSet(ctx context.Context, requesterID string) (map[string]bool, error) {
	following, err := r.profiles.Following(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	blocked, err := r.profiles.Blocked(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(following)+len(blocked)+1)
	exclude[requesterID] = true
	for _, id := range following {
		exclude[id] = true
	}
	for _, id := range blocked {
		exclude[id] = true
	}
	return exclude, nil
}

// runStrategies fetches the four strategies concurrently and merges their
// hits keeping the highest score per candidate. Merge order is fixed so
// equal scores resolve to the same strategy label on every run.
func (r *Ranker) runStrategies(ctx context.Context, requester *profile.Profile, params Params, exclude map[string]bool, now time.Time) map[string]candidate {
	type strategyRun struct {
		name string
		fn   func(context.Context) (map[string]candidate, error)
	}

	runs := []strategyRun{
		{StrategyNetwork, func(ctx context.Context) (map[string]candidate, error) {
			return r.networkStrategy(ctx, requester.ID, exclude)
		}},
		{StrategyLocation, func(ctx context.Context) (map[string]candidate, error) {
			return r.locationStrategy(ctx, requester, params.RadiusKm, exclude)
		}},
		{StrategyInterests, func(ctx context.Context) (map[string]candidate, error) {
			return r.interestsStrategy(ctx, requester, exclude)
		}},
		{StrategyPopular, func(ctx context.Context) (map[string]candidate, error) {
			return r.popularStrategy(ctx, exclude, now)
		}},
	}

	results := make([]map[string]candidate, len(runs))
	var wg sync.WaitGroup
	for i, run := range runs {
		wg.Add(1)
		go func(i int, run strategyRun) {
			defer wg.Done()
			hits, err := run.fn(ctx)
			if err != nil {
				r.stats.RecordDegraded()
				r.logger.Error("suggestion strategy degraded",
					"strategy", run.name,
					"error", err,
				)
				return
			}
			r.stats.RecordServed()
			results[i] = hits
		}(i, run)
	}
	wg.Wait()

	merged := make(map[string]candidate)
	for _, hits := range results {
		for id, hit := range hits {
			if existing, ok := merged[id]; !ok || hit.score > existing.score {
				merged[id] = hit
			}
		}
	}
	return merged
}

// networkStrategy scores second-degree follows by mutual-connection count.
func (r *Ranker) networkStrategy(ctx context.Context, requesterID string, exclude map[string]bool) (map[string]candidate, error) {
	mutuals, err := r.profiles.SecondDegreeFollows(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]candidate)
	for id, count := range mutuals {
		if exclude[id] || count == 0 {
			continue
		}
		hits[id] = candidate{
			score:    float64(count) * 10,
			strategy: StrategyNetwork,
		}
	}
	return hits, nil
}

// locationStrategy scores nearby profiles by linear distance falloff,
// discarding anything beyond the radius. Skipped when the requester has
// no location.
func (r *Ranker) locationStrategy(ctx context.Context, requester *profile.Profile, radiusKm float64, exclude map[string]bool) (map[string]candidate, error) {
	if !requester.HasLocation() {
		return nil, nil
	}

	located, err := r.profiles.ListWithLocation(ctx)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]candidate)
	for _, c := range located {
		if exclude[c.ID] {
			continue
		}
		d := geo.DistanceKm(
			requester.Location.Latitude, requester.Location.Longitude,
			c.Location.Latitude, c.Location.Longitude,
		)
		if d > radiusKm {
			continue
		}
		score := 100 * (1 - d/radiusKm)
		if score < 0 {
			score = 0
		}
		distance := d
		hits[c.ID] = candidate{
			score:      score,
			strategy:   StrategyLocation,
			distanceKm: &distance,
		}
	}
	return hits, nil
}

// interestsStrategy scores profiles by shared interest count. Skipped when
// the requester lists no interests.
func (r *Ranker) interestsStrategy(ctx context.Context, requester *profile.Profile, exclude map[string]bool) (map[string]candidate, error) {
	if len(requester.Interests) == 0 {
		return nil, nil
	}

	matching, err := r.profiles.ListWithInterests(ctx, requester.Interests)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]candidate)
	for _, c := range matching {
		if exclude[c.ID] {
			continue
		}
		common := len(c.SharedInterests(requester.Interests))
		if common == 0 {
			continue
		}
		hits[c.ID] = candidate{
			score:    float64(common) * 20,
			strategy: StrategyInterests,
		}
	}
	return hits, nil
}

// popularStrategy scores profiles by follower growth over the last week:
// gain*5 + totalFollowers/100.
func (r *Ranker) popularStrategy(ctx context.Context, exclude map[string]bool, now time.Time) (map[string]candidate, error) {
	since := now.Add(-popularWindow)

	gains, err := r.profiles.FollowerGainsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]candidate)
	for id, gained := range gains {
		if exclude[id] || gained == 0 {
			continue
		}
		g, prior, err := r.profiles.FollowerCounts(ctx, id, since)
		if err != nil {
			return nil, err
		}
		total := g + prior
		hits[id] = candidate{
			score:    float64(gained)*5 + float64(total)/100,
			strategy: StrategyPopular,
		}
	}
	return hits, nil
}

// attachPreviews fills in up to two recent public posts per suggestion.
// A failed preview fetch logs and leaves that suggestion without posts.
func (r *Ranker) attachPreviews(ctx context.Context, suggestions []Suggestion) {
	for i := range suggestions {
		c := suggestions[i].Profile

		recent, err := r.posts.ListRecentByAuthor(ctx, c.ID, previewPostLimit)
		if err != nil {
			r.logger.Warn("suggestion preview fetch failed",
				"profile_id", c.ID,
				"error", err,
			)
			continue
		}

		previews := make([]PostPreview, 0, len(recent))
		for _, p := range recent {
			preview := PostPreview{
				ID:        p.ID,
				Text:      p.Text,
				LikeCount: p.LikeCount,
				CreatedAt: p.CreatedAt,
			}
			if c.HasLocation() {
				preview.Location = geo.CoarseLocation(c.Location.Latitude, c.Location.Longitude)
			}
			previews = append(previews, preview)
		}
		suggestions[i].RecentPosts = previews
	}
}

// paginate slices out the requested page. Pages start at 1.
func paginate(items []Suggestion, page, limit int) []Suggestion {
	start := (page - 1) * limit
	if start >= len(items) {
		return []Suggestion{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
