package suggest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/openlove-social/openlove/internal/post"
	"github.com/openlove-social/openlove/internal/profile"
	"github.com/openlove-social/openlove/internal/scoring"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultParams() Params {
	return Params{Page: 1, Limit: 20}
}

func mustCreate(t *testing.T, repo *profile.InMemoryRepository, p *profile.Profile) {
	t.Helper()
	if p.Tier == "" {
		p.Tier = scoring.TierFree
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create %s: %v", p.ID, err)
	}
}

func mustFollow(t *testing.T, repo *profile.InMemoryRepository, follower, followee string, at time.Time) {
	t.Helper()
	if err := repo.Follow(context.Background(), follower, followee, at); err != nil {
		t.Fatalf("follow %s -> %s: %v", follower, followee, err)
	}
}

func newRanker(profiles ProfileSource, posts PostSource) *Ranker {
	return NewRanker(profiles, posts, scoring.DefaultSuggestionBoosts(), quietLogger(), nil)
}

// TestSuggest_ExclusionInvariant verifies self, followed, and blocked
// accounts never appear regardless of how strongly a strategy scores them.
func TestSuggest_ExclusionInvariant(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	for _, id := range []string{"me", "friend", "candidate", "blocked"} {
		mustCreate(t, profiles, &profile.Profile{ID: id, CreatedAt: now.AddDate(-1, 0, 0)})
	}

	edge := now.Add(-time.Hour)
	mustFollow(t, profiles, "me", "friend", edge)
	mustFollow(t, profiles, "friend", "candidate", edge)
	mustFollow(t, profiles, "friend", "blocked", edge)
	if err := profiles.Block(ctx, "me", "blocked"); err != nil {
		t.Fatal(err)
	}

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}

	for _, s := range suggestions {
		switch s.Profile.ID {
		case "me", "friend", "blocked":
			t.Errorf("excluded account %s was suggested", s.Profile.ID)
		}
	}

	found := false
	for _, s := range suggestions {
		if s.Profile.ID == "candidate" {
			found = true
			if s.Strategy != StrategyNetwork {
				t.Errorf("strategy = %s, want network", s.Strategy)
			}
		}
	}
	if !found {
		t.Error("expected the second-degree candidate to be suggested")
	}
}

// TestSuggest_DedupeByMax keeps the highest strategy score, not the sum.
func TestSuggest_DedupeByMax(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Interests: []string{"surf", "samba"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	mustCreate(t, profiles, &profile.Profile{ID: "friend", CreatedAt: now.AddDate(-1, 0, 0)})
	// Hit by both network (1 mutual = 10) and interests (2 common = 40).
	mustCreate(t, profiles, &profile.Profile{
		ID: "both", Interests: []string{"surf", "samba"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})

	edge := now.Add(-time.Hour)
	mustFollow(t, profiles, "me", "friend", edge)
	mustFollow(t, profiles, "friend", "both", edge)

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}

	for _, s := range suggestions {
		if s.Profile.ID != "both" {
			continue
		}
		if math.Abs(s.Score-40) > 0.001 {
			t.Errorf("score = %f, want max 40, not the 50 sum", s.Score)
		}
		if s.Strategy != StrategyInterests {
			t.Errorf("strategy = %s, want interests", s.Strategy)
		}
		return
	}
	t.Fatal("candidate not suggested")
}

// TestSuggest_ProfileBoosts applies the verified/tier/new-account chain to
// an interests hit: 40 * 1.3 * 1.2 * 1.1 = 68.64.
func TestSuggest_ProfileBoosts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Interests: []string{"surf", "samba"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	mustCreate(t, profiles, &profile.Profile{
		ID: "shiny", Verified: true, Tier: scoring.TierGold,
		Interests: []string{"surf", "samba"},
		CreatedAt: now.AddDate(0, 0, -5),
	})

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	if math.Abs(suggestions[0].FinalScore-68.64) > 0.001 {
		t.Errorf("final score = %f, want 68.64", suggestions[0].FinalScore)
	}
}

// TestSuggest_SuperBoost doubles the final score for candidates closer
// than 10km, independent of the configured radius.
func TestSuggest_SuperBoost(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Location: &profile.Location{Latitude: 0, Longitude: 0},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	// Roughly 5km north.
	mustCreate(t, profiles, &profile.Profile{
		ID: "near", Location: &profile.Location{Latitude: 0.045, Longitude: 0},
		CreatedAt: now.AddDate(-1, 0, 0),
	})

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}

	s := suggestions[0]
	if s.DistanceKm == nil || *s.DistanceKm >= 10 {
		t.Fatalf("expected a distance under 10km, got %v", s.DistanceKm)
	}
	if ratio := s.FinalScore / s.Score; math.Abs(ratio-2.0) > 0.001 {
		t.Errorf("final/raw ratio = %f, want the flat 2.0 super-boost", ratio)
	}
}

// TestSuggest_LocationBeyondRadius discards far candidates entirely.
func TestSuggest_LocationBeyondRadius(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Location: &profile.Location{Latitude: 0, Longitude: 0},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	// Roughly 111km north, beyond the default 50km radius.
	mustCreate(t, profiles, &profile.Profile{
		ID: "far", Location: &profile.Location{Latitude: 1, Longitude: 0},
		CreatedAt: now.AddDate(-1, 0, 0),
	})

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions beyond the radius, got %d", len(suggestions))
	}
}

// TestSuggest_Idempotent returns the same ranked output for unchanged data.
func TestSuggest_Idempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Interests: []string{"surf"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	for _, id := range []string{"c1", "c2", "c3"} {
		mustCreate(t, profiles, &profile.Profile{
			ID: id, Interests: []string{"surf"},
			CreatedAt: now.AddDate(-1, 0, 0),
		})
	}

	r := newRanker(profiles, posts)

	first, err := r.Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	second, err := r.Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Profile.ID != second[i].Profile.ID ||
			first[i].FinalScore != second[i].FinalScore ||
			first[i].Strategy != second[i].Strategy {
			t.Errorf("position %d differs between runs", i)
		}
	}
}

// TestSuggest_Previews attaches at most two recent posts with a coarse
// geohash instead of raw coordinates.
func TestSuggest_Previews(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Interests: []string{"surf"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	mustCreate(t, profiles, &profile.Profile{
		ID: "author", Interests: []string{"surf"},
		Location:  &profile.Location{Latitude: -23.55, Longitude: -46.63},
		CreatedAt: now.AddDate(-1, 0, 0),
	})

	for i := 0; i < 3; i++ {
		p := &post.Post{
			AuthorID:  "author",
			Text:      "post",
			CreatedAt: now.Add(time.Duration(i-3) * time.Hour),
		}
		if err := posts.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}

	previews := suggestions[0].RecentPosts
	if len(previews) != 2 {
		t.Fatalf("expected 2 previews, got %d", len(previews))
	}
	for _, pv := range previews {
		if pv.Location == "" {
			t.Error("preview missing coarse location")
		}
		if len(pv.Location) != 6 {
			t.Errorf("coarse location %q should be 6 characters", pv.Location)
		}
	}
}

// failingLocationProfiles wraps the in-memory repository with a broken
// location listing to exercise strategy degradation.
type failingLocationProfiles struct {
	*profile.InMemoryRepository
}

func (f *failingLocationProfiles) ListWithLocation(ctx context.Context) ([]*profile.Profile, error) {
	return nil, errors.New("store down")
}

// TestSuggest_StrategyDegradation serves the other strategies when one
// fetch fails.
func TestSuggest_StrategyDegradation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inner := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, inner, &profile.Profile{
		ID: "me", Interests: []string{"surf"},
		Location:  &profile.Location{Latitude: 0, Longitude: 0},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	mustCreate(t, inner, &profile.Profile{
		ID: "match", Interests: []string{"surf"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})

	r := newRanker(&failingLocationProfiles{inner}, posts)

	suggestions, err := r.Suggest(ctx, "me", defaultParams(), now)
	if err != nil {
		t.Fatalf("suggest should not fail on one strategy: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Profile.ID != "match" {
		t.Errorf("expected the interests match to survive, got %+v", suggestions)
	}
	if r.Stats().Degraded() != 1 {
		t.Errorf("degraded = %d, want 1", r.Stats().Degraded())
	}
}

// TestSuggest_Pagination slices deterministic pages.
func TestSuggest_Pagination(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profiles := profile.NewInMemoryRepository()
	posts := post.NewInMemoryRepository()

	mustCreate(t, profiles, &profile.Profile{
		ID: "me", Interests: []string{"surf"},
		CreatedAt: now.AddDate(-1, 0, 0),
	})
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		mustCreate(t, profiles, &profile.Profile{
			ID: id, Interests: []string{"surf"},
			CreatedAt: now.AddDate(-1, 0, 0),
		})
	}

	params := defaultParams()
	params.Page = 2
	params.Limit = 2

	suggestions, err := newRanker(profiles, posts).Suggest(ctx, "me", params, now)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	// Equal scores tie-break by id: page 2 of [a b c d e] is [c d].
	if len(suggestions) != 2 || suggestions[0].Profile.ID != "c" || suggestions[1].Profile.ID != "d" {
		t.Errorf("unexpected page: %+v", suggestions)
	}

	_, err = newRanker(profiles, posts).Suggest(ctx, "me", Params{Page: 0, Limit: 10}, now)
	if err == nil {
		t.Error("expected validation error for page 0")
	}
}
