package payment

import (
	"context"
	"log/slog"

	"github.com/openlove-social/openlove/internal/profile"
)

// ProfileGetter is the profile read the tier source wraps.
type ProfileGetter interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
}

// TierSource wraps a profile source and overrides the stored tier with
// the tier the customer's live Stripe subscription grants. Profiles
// without a Stripe customer id keep their stored tier. Resolution
// failures also fall back to the stored tier so a Stripe outage never
// blocks swipes.
type TierSource struct {
	profiles ProfileGetter
	resolver *Resolver
	logger   *slog.Logger
}

// NewTierSource creates a subscription-aware profile source. A nil
// resolver passes profiles through unchanged.
func NewTierSource(profiles ProfileGetter, resolver *Resolver, logger *slog.Logger) *TierSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &TierSource{profiles: profiles, resolver: resolver, logger: logger}
}

// GetByID fetches the profile and refreshes its tier from Stripe.
func (s *TierSource) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.resolver == nil || p.StripeCustomerID == "" {
		return p, nil
	}

	tier, err := s.resolver.TierForCustomer(p.StripeCustomerID)
	if err != nil {
		s.logger.Warn("tier resolution failed, using stored tier",
			"profile_id", p.ID,
			"tier", p.Tier,
			"error", err)
		return p, nil
	}
	p.Tier = tier
	return p, nil
}
