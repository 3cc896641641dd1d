package profile

import (
	"context"
	"testing"
	"time"

	"github.com/openlove-social/openlove/internal/scoring"
)

func newProfile(id, tier string) *Profile {
	return &Profile{
		ID:     id,
		Handle: id,
		Tier:   tier,
	}
}

// TestCreateAndGet tests basic profile lifecycle.
func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	p := newProfile("", scoring.TierFree)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Handle != p.Handle {
		t.Errorf("handle = %q, want %q", got.Handle, p.Handle)
	}

	// Mutating the returned copy must not affect the stored profile.
	got.Handle = "mutated"
	again, _ := repo.GetByID(ctx, p.ID)
	if again.Handle == "mutated" {
		t.Error("repository returned a shared pointer instead of a copy")
	}
}

// TestCreate_InvalidTier rejects unknown premium tiers.
func TestCreate_InvalidTier(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	if err := repo.Create(ctx, newProfile("u1", "platinum")); err != ErrInvalidTier {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
}

// TestFollowEdges tests follow/unfollow and mutual-connection counting.
func TestFollowEdges(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// me follows a and b; a and b both follow c; a follows d.
	mustFollow(t, repo, "me", "a", now)
	mustFollow(t, repo, "me", "b", now)
	mustFollow(t, repo, "a", "c", now)
	mustFollow(t, repo, "b", "c", now)
	mustFollow(t, repo, "a", "d", now)

	counts, err := repo.SecondDegreeFollows(ctx, "me")
	if err != nil {
		t.Fatalf("second degree failed: %v", err)
	}
	if counts["c"] != 2 {
		t.Errorf("mutual count for c = %d, want 2", counts["c"])
	}
	if counts["d"] != 1 {
		t.Errorf("mutual count for d = %d, want 1", counts["d"])
	}

	following, _ := repo.Following(ctx, "me")
	if len(following) != 2 {
		t.Errorf("following count = %d, want 2", len(following))
	}

	if err := repo.Unfollow(ctx, "me", "a"); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	if follows, _ := repo.IsFollowing(ctx, "me", "a"); follows {
		t.Error("expected edge removed after unfollow")
	}
}

// TestFollow_SelfRejected rejects self-follow edges.
func TestFollow_SelfRejected(t *testing.T) {
	repo := NewInMemoryRepository()
	if err := repo.Follow(context.Background(), "me", "me", time.Now()); err != ErrSelfFollow {
		t.Errorf("expected ErrSelfFollow, got %v", err)
	}
}

// TestFollow_Idempotent keeps the original edge time on repeat follows.
func TestFollow_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	early := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mustFollow(t, repo, "a", "b", early)
	mustFollow(t, repo, "a", "b", late)

	gained, prior, err := repo.FollowerCounts(ctx, "b", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("follower counts failed: %v", err)
	}
	if gained != 0 || prior != 1 {
		t.Errorf("gained=%d prior=%d, want gained=0 prior=1 (original edge time kept)", gained, prior)
	}
}

// TestFollowerCounts splits followers around the window start.
func TestFollowerCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mustFollow(t, repo, "a", "target", since.Add(-48*time.Hour))
	mustFollow(t, repo, "b", "target", since.Add(-time.Hour))
	mustFollow(t, repo, "c", "target", since)
	mustFollow(t, repo, "d", "target", since.Add(time.Hour))

	gained, prior, err := repo.FollowerCounts(ctx, "target", since)
	if err != nil {
		t.Fatalf("follower counts failed: %v", err)
	}
	if gained != 2 {
		t.Errorf("gained = %d, want 2 (edges at or after since)", gained)
	}
	if prior != 2 {
		t.Errorf("prior = %d, want 2", prior)
	}

	gains, err := repo.FollowerGainsSince(ctx, since)
	if err != nil {
		t.Fatalf("gains failed: %v", err)
	}
	if gains["target"] != 2 {
		t.Errorf("gains[target] = %d, want 2", gains["target"])
	}
}

// TestBlocked tests block edge recording.
func TestBlocked(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	if err := repo.Block(ctx, "me", "spammer"); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if err := repo.Block(ctx, "me", "me"); err != ErrSelfBlock {
		t.Errorf("expected ErrSelfBlock, got %v", err)
	}

	blocked, _ := repo.Blocked(ctx, "me")
	if len(blocked) != 1 || blocked[0] != "spammer" {
		t.Errorf("blocked = %v, want [spammer]", blocked)
	}
}

// TestListWithInterests matches profiles on shared interests.
func TestListWithInterests(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	hiker := newProfile("hiker", scoring.TierFree)
	hiker.Interests = []string{"hiking", "music"}
	gamer := newProfile("gamer", scoring.TierFree)
	gamer.Interests = []string{"games"}
	if err := repo.Create(ctx, hiker); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, gamer); err != nil {
		t.Fatal(err)
	}

	matches, err := repo.ListWithInterests(ctx, []string{"music", "cooking"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "hiker" {
		t.Errorf("expected only hiker to match, got %d results", len(matches))
	}
}

// TestSharedInterests tests interest overlap on the model.
func TestSharedInterests(t *testing.T) {
	p := &Profile{Interests: []string{"music", "hiking", "film"}}

	shared := p.SharedInterests([]string{"hiking", "film", "cooking"})
	if len(shared) != 2 {
		t.Errorf("shared = %v, want 2 entries", shared)
	}

	if shared := p.SharedInterests(nil); shared != nil {
		t.Errorf("expected nil for empty input, got %v", shared)
	}
}

func mustFollow(t *testing.T, repo *InMemoryRepository, follower, followee string, at time.Time) {
	t.Helper()
	if err := repo.Follow(context.Background(), follower, followee, at); err != nil {
		t.Fatalf("follow %s -> %s failed: %v", follower, followee, err)
	}
}
