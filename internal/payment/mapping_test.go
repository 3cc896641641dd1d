package payment

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stripe/stripe-go/v81"

	"github.com/openlove-social/openlove/internal/scoring"
)

var testMapping = PriceMapping{
	GoldPriceID:    "price_gold",
	DiamondPriceID: "price_diamond",
	CouplePriceID:  "price_couple",
}

func subscriptionWith(status stripe.SubscriptionStatus, priceIDs ...string) *stripe.Subscription {
	items := make([]*stripe.SubscriptionItem, len(priceIDs))
	for i, id := range priceIDs {
		items[i] = &stripe.SubscriptionItem{Price: &stripe.Price{ID: id}}
	}
	return &stripe.Subscription{
		Status: status,
		Items:  &stripe.SubscriptionItemList{Data: items},
	}
}

// TestTierForSubscription covers status gating and price mapping.
func TestTierForSubscription(t *testing.T) {
	tests := []struct {
		name     string
		sub      *stripe.Subscription
		expected string
	}{
		{"nil subscription", nil, scoring.TierFree},
		{"active gold", subscriptionWith(stripe.SubscriptionStatusActive, "price_gold"), scoring.TierGold},
		{"active diamond", subscriptionWith(stripe.SubscriptionStatusActive, "price_diamond"), scoring.TierDiamond},
		{"active couple", subscriptionWith(stripe.SubscriptionStatusActive, "price_couple"), scoring.TierCouple},
		{"trialing counts", subscriptionWith(stripe.SubscriptionStatusTrialing, "price_gold"), scoring.TierGold},
		{"canceled is free", subscriptionWith(stripe.SubscriptionStatusCanceled, "price_diamond"), scoring.TierFree},
		{"past due is free", subscriptionWith(stripe.SubscriptionStatusPastDue, "price_gold"), scoring.TierFree},
		{"unknown price is free", subscriptionWith(stripe.SubscriptionStatusActive, "price_other"), scoring.TierFree},
		{"strongest item wins", subscriptionWith(stripe.SubscriptionStatusActive, "price_gold", "price_diamond"), scoring.TierDiamond},
		{"no items", subscriptionWith(stripe.SubscriptionStatusActive), scoring.TierFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierForSubscription(tt.sub, testMapping); got != tt.expected {
				t.Errorf("tier = %s, want %s", got, tt.expected)
			}
		})
	}
}

type mockClient struct {
	sub *stripe.Subscription
	err error
}

func (m *mockClient) ActiveSubscription(customerID string) (*stripe.Subscription, error) {
	return m.sub, m.err
}

// TestResolver resolves tiers through the client.
func TestResolver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewResolver(&mockClient{sub: subscriptionWith(stripe.SubscriptionStatusActive, "price_gold")}, testMapping, logger)
	tier, err := r.TierForCustomer("cus_123")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier != scoring.TierGold {
		t.Errorf("tier = %s, want gold", tier)
	}

	// No Stripe customer id means free, without touching the client.
	r = NewResolver(&mockClient{err: errors.New("should not be called")}, testMapping, logger)
	tier, err = r.TierForCustomer("")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier != scoring.TierFree {
		t.Errorf("tier = %s, want free", tier)
	}

	// Client failures propagate.
	r = NewResolver(&mockClient{err: errors.New("stripe down")}, testMapping, logger)
	if _, err := r.TierForCustomer("cus_123"); err == nil {
		t.Error("expected an error from the client")
	}
}
