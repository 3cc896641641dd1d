package payment

import (
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/subscription"
)

// Client is an interface for the Stripe calls the tier resolver makes,
// to enable testing with mocks.
type Client interface {
	// ActiveSubscription returns the customer's current subscription, or
	// nil when they have none.
	ActiveSubscription(customerID string) (*stripe.Subscription, error)
}

// StripeClient implements Client using the real Stripe SDK.
type StripeClient struct{}

// NewStripeClient creates a new Stripe client with the given API key.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// ActiveSubscription lists the customer's active subscriptions and returns
// the first one.
func (c *StripeClient) ActiveSubscription(customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)

	iter := subscription.List(params)
	for iter.Next() {
		return iter.Subscription(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing subscriptions for %s: %w", customerID, err)
	}
	return nil, nil
}

// Resolver resolves a customer's premium tier from their subscription.
type Resolver struct {
	client  Client
	mapping PriceMapping
	logger  *slog.Logger
}

// NewResolver creates a tier resolver. A nil logger falls back to
// slog.Default.
func NewResolver(client Client, mapping PriceMapping, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, mapping: mapping, logger: logger}
}

// TierForCustomer returns the tier the customer's subscription grants.
// Customers without a Stripe id are on the free tier.
func (r *Resolver) TierForCustomer(customerID string) (string, error) {
	if customerID == "" {
		return TierForSubscription(nil, r.mapping), nil
	}

	sub, err := r.client.ActiveSubscription(customerID)
	if err != nil {
		return "", err
	}

	tier := TierForSubscription(sub, r.mapping)
	r.logger.Debug("resolved customer tier", "customer_id", customerID, "tier", tier)
	return tier, nil
}
