// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package payment sells the premium upgrade through Stripe Checkout.

The checkout session carries the buyer's uid in its metadata; the signed
checkout.session.completed webhook reads it back and flips the account's
premium flag. The webhook is the only path that grants premium.
*/
package payment

import (
	"context"

	"github.com/stripe/stripe-go/v81"
)

// MetadataUID is the checkout metadata key holding the buyer's uid.
const MetadataUID = "uid"

// Checkout is the hosted payment page for one purchase.
type Checkout struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Options describes the product and the redirect targets.
type Options struct {
	// ClientURL is the web app origin used for success and cancel redirects.
	ClientURL     string
	WebhookSecret string
	ProductName   string
	Currency      string
	// UnitAmount is expressed in the currency's smallest unit.
	UnitAmount int64
}

// DefaultOptions returns the lifetime premium product.
func DefaultOptions(clientURL, webhookSecret string) Options {
	return Options{
		ClientURL:     clientURL,
		WebhookSecret: webhookSecret,
		ProductName:   "Digital Life Lessons Premium - Lifetime",
		Currency:      "bdt",
		UnitAmount:    150000,
	}
}

// # Collaborators

// SessionCreator opens Stripe Checkout sessions. The checkout/session
// client implements it.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Upgrader grants premium access. The account service implements it.
type Upgrader interface {
	SetPremium(ctx context.Context, uid string) error
}
