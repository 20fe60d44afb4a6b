// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Identity is the verified claim returned by the identity provider.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Principal is the provisioned account acting on a request.
//
// It is built once per request by the authentication middleware, after the
// identity has been verified and upserted into the user directory.
type Principal struct {
	// UserID is the directory row id (UUID).
	UserID      string   `json:"id"`
	UID         string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	PhotoURL    string   `json:"photoURL"`
	Role        UserRole `json:"role"`
	IsPremium   bool     `json:"isPremium"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role.AtLeast(RoleAdmin)
}
