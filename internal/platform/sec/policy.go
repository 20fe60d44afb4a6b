// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "github.com/taibuivan/lessons/internal/platform/apperr"

// # Capabilities

// Capability is a single authorization predicate evaluated against a principal.
//
// Protected operations list the capabilities that grant access and call
// [Authorize] once; the first capability that allows wins.
type Capability interface {
	Allows(principal *Principal) bool
}

// Owner grants access when the principal created the resource.
type Owner struct {
	// CreatorUID is the uid stored on the resource.
	CreatorUID string
}

// Allows implements [Capability].
func (o Owner) Allows(principal *Principal) bool {
	return principal != nil && o.CreatorUID != "" && principal.UID == o.CreatorUID
}

// Admin grants access to administrators.
type Admin struct{}

// Allows implements [Capability].
func (Admin) Allows(principal *Principal) bool {
	return principal.IsAdmin()
}

// Self grants access when the principal is the subject being addressed,
// matched by uid or by email.
type Self struct {
	UID   string
	Email string
}

// Allows implements [Capability].
func (s Self) Allows(principal *Principal) bool {
	if principal == nil {
		return false
	}
	if s.UID != "" && principal.UID == s.UID {
		return true
	}
	return s.Email != "" && principal.Email == s.Email
}

// Premium grants access to principals with an active premium upgrade.
type Premium struct{}

// Allows implements [Capability].
func (Premium) Allows(principal *Principal) bool {
	return principal != nil && principal.IsPremium
}

// Authorize returns nil if any capability allows the principal, otherwise a
// FORBIDDEN error carrying msg. A nil principal yields UNAUTHORIZED.
func Authorize(principal *Principal, msg string, capabilities ...Capability) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}

	for _, capability := range capabilities {
		if capability.Allows(principal) {
			return nil
		}
	}

	return apperr.Forbidden(msg)
}
