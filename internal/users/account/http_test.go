// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  struct {
		Code string `json:"code"`
	} `json:"errors"`
}

func serve(t *testing.T, router http.Handler, method, path, body string, principal *sec.Principal) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if principal != nil {
		request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func TestHandler_Me(t *testing.T) {
	service, _ := newTestService()
	handler := NewHandler(service)
	router := chi.NewRouter()
	router.Mount("/users", handler.Routes())

	principal, err := service.Provision(context.Background(), &sec.Identity{UID: "uid-a", Email: "a@example.com"})
	require.NoError(t, err)

	recorder, body := serve(t, router, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, body.Success)

	recorder, body = serve(t, router, http.MethodGet, "/users/me", "", principal)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var user User
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, "uid-a", user.UID)
}

func TestHandler_UpdateMe(t *testing.T) {
	service, _ := newTestService()
	router := chi.NewRouter()
	router.Mount("/users", NewHandler(service).Routes())

	principal, err := service.Provision(context.Background(), &sec.Identity{UID: "uid-a", Email: "a@example.com"})
	require.NoError(t, err)

	recorder, body := serve(t, router, http.MethodPatch, "/users/me", `{"displayName":"Alice"}`, principal)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Profile updated", body.Message)

	recorder, body = serve(t, router, http.MethodPatch, "/users/me", `{not json`, principal)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Errors.Code)
}

func TestHandler_UpdateRoleRejectsMalformedID(t *testing.T) {
	service, _ := newTestService()
	router := chi.NewRouter()
	router.Route("/admin", NewHandler(service).RegisterAdminRoutes)

	admin := &sec.Principal{UID: "root", Role: sec.RoleAdmin}
	recorder, body := serve(t, router, http.MethodPatch, "/admin/users/xyz/role", `{"role":"admin"}`, admin)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Errors.Code)
}
