// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/middleware"
	requestutil "github.com/taibuivan/lessons/internal/platform/request"
	"github.com/taibuivan/lessons/internal/platform/respond"
)

// maxWebhookBytes matches Stripe's recommended payload ceiling.
const maxWebhookBytes = 65536

// # Handler Implementation

// Handler implements the payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new payment [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes serves checkout under /payments.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/checkout", handler.createCheckout)
	router.Post("/create-checkout-session", handler.createCheckout)

	return router
}

// WebhookRoutes serves the Stripe callback under /webhooks/stripe.
func (handler *Handler) WebhookRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.receiveWebhook)
	return router
}

/*
POST /api/payments/checkout.

Response:
  - 200: {"sessionId": "...", "url": "https://checkout.stripe.com/..."}
  - 409: Already premium
*/
func (handler *Handler) createCheckout(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	checkout, err := handler.service.Checkout(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, checkout)
}

/*
POST /webhooks/stripe.

Description: Signed Stripe callback. The raw body is required for signature
verification.

Response:
  - 200: {"received": true}
  - 400: Invalid signature or payload
*/
func (handler *Handler) receiveWebhook(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, maxWebhookBytes))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Webhook payload too large"))
		return
	}

	signature := request.Header.Get(constants.HeaderStripeSignature)
	if err := handler.service.HandleWebhook(request.Context(), payload, signature); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"received": true})
}
