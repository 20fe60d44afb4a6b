// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

/*
TestAuthorize evaluates the Owner/Admin/Self capability variants.
*/
func TestAuthorize(t *testing.T) {
	owner := &sec.Principal{UID: "owner", Email: "owner@example.com", Role: sec.RoleUser}
	stranger := &sec.Principal{UID: "stranger", Role: sec.RoleUser}
	admin := &sec.Principal{UID: "root", Role: sec.RoleAdmin}

	tests := []struct {
		name      string
		principal *sec.Principal
		caps      []sec.Capability
		code      string
	}{
		{"owner_allowed", owner, []sec.Capability{sec.Owner{CreatorUID: "owner"}, sec.Admin{}}, ""},
		{"admin_allowed", admin, []sec.Capability{sec.Owner{CreatorUID: "owner"}, sec.Admin{}}, ""},
		{"stranger_forbidden", stranger, []sec.Capability{sec.Owner{CreatorUID: "owner"}, sec.Admin{}}, "FORBIDDEN"},
		{"self_by_email", owner, []sec.Capability{sec.Self{Email: "owner@example.com"}}, ""},
		{"self_mismatch", stranger, []sec.Capability{sec.Self{Email: "owner@example.com"}}, "FORBIDDEN"},
		{"empty_owner_never_matches", &sec.Principal{}, []sec.Capability{sec.Owner{}}, "FORBIDDEN"},
		{"anonymous", nil, []sec.Capability{sec.Admin{}}, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sec.Authorize(tt.principal, "denied", tt.caps...)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.HasCode(err, tt.code))
		})
	}
}

/*
TestUserRole_AtLeast verifies the role hierarchy.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleUser))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("ghost").Valid())
}
