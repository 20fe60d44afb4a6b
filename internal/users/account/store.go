// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"

	"github.com/taibuivan/lessons/internal/platform/sec"
)

// # Repository Contracts

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		Provision creates the account on first sight, keyed by uid.

		Existing accounts only have empty profile fields back-filled from the
		identity; edits made through UpdateProfile are never overwritten.

		Parameters:
		  - context: context.Context
		  - id: string (UUID used only when a row is inserted)
		  - identity: *sec.Identity

		Returns:
		  - *User: The stored account
		  - error: apperr.Conflict when the email is already claimed
	*/
	Provision(context context.Context, id string, identity *sec.Identity) (*User, error)

	// FindByUID retrieves an account by identity subject.
	FindByUID(context context.Context, uid string) (*User, error)

	// FindByEmail retrieves an account by email.
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		RecountTotals recomputes the denormalized counters from the lesson and
		favorite ledgers.

		Parameters:
		  - context: context.Context
		  - uid: string

		Returns:
		  - *User: The repaired account
		  - error: apperr.NotFound or storage failures
	*/
	RecountTotals(context context.Context, uid string) (*User, error)

	// UpdateProfile applies the non-nil fields of input.
	UpdateProfile(context context.Context, uid string, input UpdateProfileInput) (*User, error)

	// Dashboard computes live totals and the most recent lessons of uid.
	Dashboard(context context.Context, uid string, recent int) (*Dashboard, error)

	// List returns a page of accounts, newest first, with live lesson counts.
	List(context context.Context, limit, offset int) ([]*User, int, error)

	// UpdateRole sets the role of the account with the given row id.
	UpdateRole(context context.Context, id string, role sec.UserRole) (*User, error)

	// SetPremium flags the account as premium.
	SetPremium(context context.Context, uid string) error
}
