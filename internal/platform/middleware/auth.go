// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/internal/platform/respond"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

// TokenVerifier verifies a bearer credential with the identity provider.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.Identity, error)
}

// Provisioner resolves a verified identity into a directory account,
// creating the account on first sight.
type Provisioner interface {
	Provision(ctx context.Context, identity *sec.Identity) (*sec.Principal, error)
}

/*
Authenticate extracts and verifies the bearer token from the Authorization header.

Flow:
 1. No header: the request proceeds as anonymous.
 2. Malformed header or rejected token: 401.
 3. Verified identity is provisioned into the directory.
 4. The resulting [*sec.Principal] is injected into the request context.

Parameters:
  - verifier: TokenVerifier
  - provisioner: Provisioner

Returns:
  - func(http.Handler) http.Handler
*/
func Authenticate(verifier TokenVerifier, provisioner Provisioner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// 1. Anonymous
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Format
			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// 3. Verification
			identity, err := verifier.VerifyToken(token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).Debug("token_rejected", slog.Any("error", err))
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// 4. Provisioning
			principal, err := provisioner.Provision(request.Context(), identity)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			recordPrincipal(request.Context(), principal.UID)
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
// Must be registered AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authorization token missing"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose principal does not hold at least role.
// It implies [RequireAuth].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authorization token missing"))
				return
			}

			if !principal.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Admin access only"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
