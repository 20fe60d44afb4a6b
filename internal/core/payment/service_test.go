// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

const testSecret = "whsec_test_secret"

type fakeSessions struct {
	params *stripe.CheckoutSessionParams
}

func (sessions *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	sessions.params = params
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

type fakeUpgrader struct {
	upgraded []string
}

func (upgrader *fakeUpgrader) SetPremium(_ context.Context, uid string) error {
	upgrader.upgraded = append(upgrader.upgraded, uid)
	return nil
}

func newTestService() (*Service, *fakeSessions, *fakeUpgrader) {
	sessions := &fakeSessions{}
	upgrader := &fakeUpgrader{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(sessions, upgrader, DefaultOptions("http://localhost:5173/", testSecret), logger), sessions, upgrader
}

func signed(t *testing.T, payload string) (string, string) {
	t.Helper()
	result := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(payload),
		Secret:  testSecret,
	})
	return string(result.Payload), result.Header
}

const completedEvent = `{
  "id": "evt_test_1",
  "object": "event",
  "type": "checkout.session.completed",
  "api_version": "2020-08-27",
  "data": {"object": {"id": "cs_test_1", "object": "checkout.session", "metadata": {"uid": "uid-buyer"}}}
}`

func TestCheckout(t *testing.T) {
	service, sessions, _ := newTestService()
	buyer := &sec.Principal{UID: "uid-buyer", Email: "buyer@example.com"}

	checkout, err := service.Checkout(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", checkout.SessionID)

	require.NotNil(t, sessions.params)
	assert.Equal(t, "uid-buyer", sessions.params.Metadata[MetadataUID])
	assert.Equal(t, "http://localhost:5173/pricing/cancel", *sessions.params.CancelURL)
	assert.Equal(t, int64(150000), *sessions.params.LineItems[0].PriceData.UnitAmount)

	buyer.IsPremium = true
	_, err = service.Checkout(context.Background(), buyer)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

func TestHandleWebhook_Completed(t *testing.T) {
	service, _, upgrader := newTestService()
	payload, header := signed(t, completedEvent)

	require.NoError(t, service.HandleWebhook(context.Background(), []byte(payload), header))
	assert.Equal(t, []string{"uid-buyer"}, upgrader.upgraded)
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	service, _, upgrader := newTestService()

	err := service.HandleWebhook(context.Background(), []byte(completedEvent), "t=1,v1=deadbeef")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	assert.Empty(t, upgrader.upgraded)
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	service, _, upgrader := newTestService()
	payload, header := signed(t, strings.Replace(completedEvent, "checkout.session.completed", "payment_intent.created", 1))

	require.NoError(t, service.HandleWebhook(context.Background(), []byte(payload), header))
	assert.Empty(t, upgrader.upgraded)
}

func TestHandler_Routes(t *testing.T) {
	service, _, upgrader := newTestService()
	handler := NewHandler(service)

	router := chi.NewRouter()
	router.Mount("/payments", handler.Routes())
	router.Mount("/webhooks/stripe", handler.WebhookRoutes())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/payments/checkout", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodPost, "/payments/checkout", nil)
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), &sec.Principal{UID: "uid-buyer"}))
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "checkout.stripe.com")

	payload, header := signed(t, completedEvent)
	request = httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	request.Header.Set(constants.HeaderStripeSignature, header)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{"uid-buyer"}, upgrader.upgraded)
}
