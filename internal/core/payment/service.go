// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

// # Service Layer

// Service creates checkouts and applies webhook events.
type Service struct {
	sessions SessionCreator
	upgrader Upgrader
	options  Options
	logger   *slog.Logger
}

// NewService constructs a new payment [Service].
func NewService(sessions SessionCreator, upgrader Upgrader, options Options, logger *slog.Logger) *Service {
	options.ClientURL = strings.TrimRight(options.ClientURL, "/")
	return &Service{sessions: sessions, upgrader: upgrader, options: options, logger: logger}
}

/*
Checkout opens a Stripe Checkout session for the caller.

Returns:
  - *Checkout: Session id and hosted page URL
  - error: apperr.Conflict if the caller is already premium
*/
func (service *Service) Checkout(context context.Context, principal *sec.Principal) (*Checkout, error) {
	if principal.IsPremium {
		return nil, apperr.Conflict("Account is already premium")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(service.options.ClientURL + "/pricing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(service.options.ClientURL + "/pricing/cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(service.options.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(service.options.ProductName),
					},
					UnitAmount: stripe.Int64(service.options.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(principal.UID),
	}
	if principal.Email != "" {
		params.CustomerEmail = stripe.String(principal.Email)
	}
	params.Context = context
	params.AddMetadata(MetadataUID, principal.UID)

	session, err := service.sessions.New(params)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("payment_service_checkout_failed: %w", err))
	}

	service.logger.Info("checkout_session_created",
		slog.String("uid", principal.UID),
		slog.String("session_id", session.ID),
	)

	return &Checkout{SessionID: session.ID, URL: session.URL}, nil
}

/*
HandleWebhook verifies and applies a Stripe event.

Only checkout.session.completed is acted upon; other event types are
acknowledged and ignored so Stripe stops retrying them.

Parameters:
  - context: context.Context
  - payload: []byte (raw request body)
  - signature: string (Stripe-Signature header)

Returns:
  - error: apperr.ValidationError for bad signatures or payloads
*/
func (service *Service) HandleWebhook(context context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, service.options.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		service.logger.Warn("webhook_signature_rejected", slog.Any("error", err))
		return apperr.ValidationError("Webhook Error: " + err.Error())
	}

	if event.Type != "checkout.session.completed" {
		service.logger.Debug("webhook_event_ignored", slog.String("type", string(event.Type)))
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return apperr.ValidationError("Malformed checkout session payload")
	}

	uid := session.Metadata[MetadataUID]
	if uid == "" {
		service.logger.Warn("webhook_session_without_uid", slog.String("session_id", session.ID))
		return nil
	}

	if err := service.upgrader.SetPremium(context, uid); err != nil {
		return fmt.Errorf("payment_service_upgrade_failed: %w", err)
	}

	service.logger.Info("user_upgraded_to_premium",
		slog.String("uid", uid),
		slog.String("event_id", event.ID),
	)

	return nil
}
