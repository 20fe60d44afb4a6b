// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides identity verification and authorization primitives.
//
// # Architecture
//
// Token issuance is delegated to Firebase Authentication. This package only
// verifies ID tokens (RS256, Google-published keys) and turns them into an
// [Identity]; the user directory then provisions a [Principal] from it.
// Authorization decisions go through [Authorize] and its [Capability] variants.
package sec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// FirebaseIssuerPrefix is prepended to the project id to form the expected 'iss'.
	FirebaseIssuerPrefix = "https://securetoken.google.com/"

	// DefaultJWKSURL publishes the signing keys of Firebase ID tokens.
	DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// FirebaseClaims is the payload of a Firebase ID token.
type FirebaseClaims struct {
	jwt.RegisteredClaims

	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IdentityVerifier verifies Firebase ID tokens.
type IdentityVerifier struct {
	keyfunc   jwt.Keyfunc
	projectID string
	stop      func()
}

// NewIdentityVerifier creates a verifier from an arbitrary key source.
func NewIdentityVerifier(keySource jwt.Keyfunc, projectID string) *IdentityVerifier {
	return &IdentityVerifier{keyfunc: keySource, projectID: projectID}
}

// NewJWKSVerifier fetches the remote key set and keeps it refreshed in the
// background until [IdentityVerifier.Close] is called or ctx is cancelled.
func NewJWKSVerifier(ctx context.Context, jwksURL, projectID string, logger *slog.Logger) (*IdentityVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("jwks_refresh_failed", slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sec: failed to load jwks from %s: %w", jwksURL, err)
	}

	return &IdentityVerifier{
		keyfunc:   jwks.Keyfunc,
		projectID: projectID,
		stop:      jwks.EndBackground,
	}, nil
}

// NewPEMVerifier reads a single RSA public key from disk. Used against the
// auth emulator and in local development.
func NewPEMVerifier(publicKeyPath, projectID string) (*IdentityVerifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewIdentityVerifier(func(*jwt.Token) (interface{}, error) {
		return publicKey, nil
	}, projectID), nil
}

// VerifyToken checks signature, issuer, audience and expiry of an ID token.
func (verifier *IdentityVerifier) VerifyToken(tokenString string) (*Identity, error) {
	claims := &FirebaseClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, verifier.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(FirebaseIssuerPrefix+verifier.projectID),
		jwt.WithAudience(verifier.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	uid := claims.Subject
	if uid == "" {
		uid = claims.UserID
	}
	if uid == "" {
		return nil, errors.New("sec: token has no subject")
	}

	return &Identity{
		UID:     uid,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// Close stops the background key refresh, if any.
func (verifier *IdentityVerifier) Close() {
	if verifier.stop != nil {
		verifier.stop()
	}
}
