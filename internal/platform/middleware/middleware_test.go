// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/internal/platform/middleware"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

// # Fakes

type fakeVerifier struct {
	identity *sec.Identity
	err      error
}

func (verifier fakeVerifier) VerifyToken(string) (*sec.Identity, error) {
	return verifier.identity, verifier.err
}

type fakeProvisioner struct {
	calls int
	role  sec.UserRole
	err   error
}

func (provisioner *fakeProvisioner) Provision(_ context.Context, identity *sec.Identity) (*sec.Principal, error) {
	provisioner.calls++
	if provisioner.err != nil {
		return nil, provisioner.err
	}
	return &sec.Principal{UID: identity.UID, Email: identity.Email, Role: provisioner.role}, nil
}

func okHandler(seen **sec.Principal) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

// # Authentication

func TestAuthenticate(t *testing.T) {
	identity := &sec.Identity{UID: "uid-1", Email: "a@example.com"}

	tests := []struct {
		name       string
		header     string
		verifier   fakeVerifier
		provision  error
		wantStatus int
		wantUID    string
	}{
		{"anonymous", "", fakeVerifier{}, nil, http.StatusOK, ""},
		{"bad_scheme", "Basic abc", fakeVerifier{identity: identity}, nil, http.StatusUnauthorized, ""},
		{"empty_token", "Bearer ", fakeVerifier{identity: identity}, nil, http.StatusUnauthorized, ""},
		{"rejected", "Bearer tok", fakeVerifier{err: errors.New("expired")}, nil, http.StatusUnauthorized, ""},
		{"provision_failure", "Bearer tok", fakeVerifier{identity: identity}, apperr.Internal(errors.New("db")), http.StatusInternalServerError, ""},
		{"verified", "Bearer tok", fakeVerifier{identity: identity}, nil, http.StatusOK, "uid-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Principal
			provisioner := &fakeProvisioner{role: sec.RoleUser, err: tt.provision}
			handler := middleware.Authenticate(tt.verifier, provisioner)(okHandler(&seen))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantUID == "" {
				assert.Nil(t, seen)
			} else {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantUID, seen.UID)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		principal  *sec.Principal
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", &sec.Principal{UID: "u", Role: sec.RoleUser}, http.StatusForbidden},
		{"admin", &sec.Principal{UID: "a", Role: sec.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Principal
			handler := middleware.RequireRole(sec.RoleAdmin)(okHandler(&seen))

			request := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.principal != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), tt.principal))
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	var seen *sec.Principal
	recorder := httptest.NewRecorder()
	middleware.RequireAuth(okHandler(&seen)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Authorization token missing")
}

// # Infrastructure

func TestRequestID(t *testing.T) {
	var captured string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		captured = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-id", captured)
}

func TestPanicRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	t.Run("production_hides_stack", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		middleware.Debug(false)(middleware.PanicRecovery()(panicking)).
			ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "stack")
	})

	t.Run("debug_exposes_stack", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		middleware.Debug(true)(middleware.PanicRecovery()(panicking)).
			ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"stack"`)
		assert.Contains(t, recorder.Body.String(), "panic: boom")
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 1, 2)
	handler := limiter.Handler(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type corsConfig struct {
	dev    bool
	origin string
}

func (cfg corsConfig) IsDevelopment() bool   { return cfg.dev }
func (cfg corsConfig) AllowedOrigin() string { return cfg.origin }

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		cfg     corsConfig
		origin  string
		allowed bool
	}{
		{"dev_any", corsConfig{dev: true}, "http://localhost:5173", true},
		{"prod_match", corsConfig{origin: "https://lessons.example.com"}, "https://lessons.example.com", true},
		{"prod_mismatch", corsConfig{origin: "https://lessons.example.com"}, "https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodOptions, "/api/lessons", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()
			middleware.CORS(tt.cfg)(next).ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			assert.Equal(t, tt.allowed, recorder.Header().Get("Access-Control-Allow-Origin") != "")
			if tt.allowed {
				assert.True(t, strings.Contains(recorder.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key"))
			}
		})
	}
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}
