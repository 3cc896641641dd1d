// Package payment maps Stripe subscriptions to premium tiers. Checkout,
// webhooks, and billing flows live with the payment provider; the ranking
// surfaces only need to know which tier a subscription grants.
package payment

import (
	"github.com/stripe/stripe-go/v81"

	"github.com/openlove-social/openlove/internal/scoring"
)

// PriceMapping ties the Stripe price ids of the subscription plans to
// premium tiers.
type PriceMapping struct {
	GoldPriceID    string
	DiamondPriceID string
	CouplePriceID  string
}

// TierForPrice returns the tier a price id grants, or the free tier for
// anything unrecognized.
func (m PriceMapping) TierForPrice(priceID string) string {
	switch priceID {
	case m.GoldPriceID:
		return scoring.TierGold
	case m.DiamondPriceID:
		return scoring.TierDiamond
	case m.CouplePriceID:
		return scoring.TierCouple
	default:
		return scoring.TierFree
	}
}

// tierRank orders tiers so a subscription with several items resolves to
// the strongest one.
func tierRank(tier string) int {
	switch tier {
	case scoring.TierDiamond:
		return 3
	case scoring.TierCouple:
		return 2
	case scoring.TierGold:
		return 1
	default:
		return 0
	}
}

// subscriptionGrantsTier reports whether the subscription status entitles
// the customer to a paid tier at all.
func subscriptionGrantsTier(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return true
	}
	return false
}

// TierForSubscription resolves the tier a subscription grants. A nil
// subscription, an inactive status, or unmapped prices all resolve to the
// free tier.
func TierForSubscription(sub *stripe.Subscription, mapping PriceMapping) string {
	if sub == nil || !subscriptionGrantsTier(sub.Status) {
		return scoring.TierFree
	}
	if sub.Items == nil {
		return scoring.TierFree
	}

	best := scoring.TierFree
	for _, item := range sub.Items.Data {
		if item.Price == nil {
			continue
		}
		tier := mapping.TierForPrice(item.Price.ID)
		if tierRank(tier) > tierRank(best) {
			best = tier
		}
	}
	return best
}
