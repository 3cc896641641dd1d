package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stripe/stripe-go/v81"

	"github.com/openlove-social/openlove/internal/profile"
	"github.com/openlove-social/openlove/internal/scoring"
)

func newSourceTestRepo(t *testing.T) *profile.InMemoryRepository {
	t.Helper()
	repo := profile.NewInMemoryRepository()
	ctx := context.Background()
	seed := []*profile.Profile{
		{ID: "free-user", Handle: "free", Tier: scoring.TierFree},
		{ID: "subscriber", Handle: "sub", Tier: scoring.TierFree, StripeCustomerID: "cus_sub"},
	}
	for _, p := range seed {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("seeding profile %s: %v", p.ID, err)
		}
	}
	return repo
}

func TestTierSource_NoCustomerIDKeepsStoredTier(t *testing.T) {
	repo := newSourceTestRepo(t)
	resolver := NewResolver(&mockClient{}, testMapping, nil)
	source := NewTierSource(repo, resolver, nil)

	p, err := source.GetByID(context.Background(), "free-user")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if p.Tier != scoring.TierFree {
		t.Errorf("tier = %s, want free", p.Tier)
	}
}

func TestTierSource_ResolvesSubscriptionTier(t *testing.T) {
	repo := newSourceTestRepo(t)
	client := &mockClient{sub: subscriptionWith(stripe.SubscriptionStatusActive, "price_diamond")}
	resolver := NewResolver(client, testMapping, nil)
	source := NewTierSource(repo, resolver, nil)

	p, err := source.GetByID(context.Background(), "subscriber")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if p.Tier != scoring.TierDiamond {
		t.Errorf("tier = %s, want diamond", p.Tier)
	}
}

func TestTierSource_ResolutionFailureFallsBack(t *testing.T) {
	repo := newSourceTestRepo(t)
	client := &mockClient{err: errors.New("stripe unavailable")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := NewResolver(client, testMapping, logger)
	source := NewTierSource(repo, resolver, logger)

	p, err := source.GetByID(context.Background(), "subscriber")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if p.Tier != scoring.TierFree {
		t.Errorf("tier = %s, want stored free tier on failure", p.Tier)
	}
}

func TestTierSource_NilResolverPassesThrough(t *testing.T) {
	repo := newSourceTestRepo(t)
	source := NewTierSource(repo, nil, nil)

	p, err := source.GetByID(context.Background(), "subscriber")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if p.Tier != scoring.TierFree {
		t.Errorf("tier = %s, want free", p.Tier)
	}
}

func TestTierSource_PropagatesNotFound(t *testing.T) {
	repo := newSourceTestRepo(t)
	source := NewTierSource(repo, nil, nil)

	_, err := source.GetByID(context.Background(), "ghost")
	if !errors.Is(err, profile.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}
