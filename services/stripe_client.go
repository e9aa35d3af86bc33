package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

const (
	ProviderStripe     = "stripe"
	ProviderStripeDemo = "stripe-demo"
)

// ProviderIntent is the provider-agnostic result of creating a payment
// intent.
type ProviderIntent struct {
	Provider     string
	ID           string
	ClientSecret string
}

// PaymentProvider creates payment intents. The orderID ends up in the
// intent's metadata; webhook handlers use it to find the order later.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency, orderID string) (*ProviderIntent, error)
}

// WebhookVerifier checks a webhook's signature against the raw request
// body and returns the parsed event. Verification MUST see the exact bytes
// Stripe signed, so the HTTP layer hands the unparsed body through.
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeProvider is the live Stripe client.
type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency, orderID string) (*ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Description: stripe.String("Order " + orderID),
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &ProviderIntent{
		Provider:     ProviderStripe,
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// DemoProvider synthesizes intents locally so the whole payment flow can
// be exercised without Stripe credentials.
type DemoProvider struct{}

func NewDemoProvider() *DemoProvider {
	return &DemoProvider{}
}

func (p *DemoProvider) CreateIntent(_ context.Context, _ int64, _ string, _ string) (*ProviderIntent, error) {
	now := time.Now().UnixMilli()
	return &ProviderIntent{
		Provider:     ProviderStripeDemo,
		ID:           fmt.Sprintf("pi_demo_%d", now),
		ClientSecret: fmt.Sprintf("demo_client_secret_%d", now),
	}, nil
}

// StripeWebhookVerifier verifies signatures with the shared endpoint
// secret.
type StripeWebhookVerifier struct {
	secret string
}

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{secret: secret}
}

func (v *StripeWebhookVerifier) VerifyAndParse(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, v.secret)
}
