// Package payments wraps the Stripe payment-intent API behind a small
// interface the booking flow (and its tests) can depend on.
package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"

	"github.com/shashiranjanraj/deviceexpress/config"
)

// Provider creates provider-side payment intents and returns the
// client-side secret the frontend confirms against.
type Provider interface {
	CreateIntent(ctx context.Context, amountMinor int64, idempotencyKey string) (clientSecret string, err error)
}

// Stripe is the production Provider.
type Stripe struct {
	currency string
}

// NewStripe configures the global Stripe key and returns the provider.
func NewStripe() *Stripe {
	stripe.Key = config.StripeSecretKey()
	return &Stripe{currency: config.StripeCurrency()}
}

// CreateIntent requests a card payment intent for amountMinor. The
// idempotency key makes client retries reuse the same intent instead of
// minting duplicates.
func (s *Stripe) CreateIntent(ctx context.Context, amountMinor int64, idempotencyKey string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: create intent: %w", err)
	}
	return pi.ClientSecret, nil
}

// MinorUnits converts a resale price in major currency units to the integer
// minor units the provider expects (price × 100).
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// IdempotencyKey derives a stable key from the booking id, so every retry
// of the same booking's intent maps to one provider-side intent.
func IdempotencyKey(bookingID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("booking:"+bookingID)).String()
}
