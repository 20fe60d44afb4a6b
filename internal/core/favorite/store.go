// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package favorite

import "context"

// # Repository Contracts

// Repository defines the persistence contract for the favorite ledger.
type Repository interface {
	/*
		Toggle removes the (uid, lessonID) pair if present and inserts it
		otherwise, adjusting both counters in the same transaction.

		Parameters:
		  - context: context.Context
		  - id: string (row id used when inserting)
		  - uid: string
		  - lessonID: string (canonical UUID)

		Returns:
		  - *ToggleResult: Membership after the toggle and the re-read lesson counter
		  - error: apperr.NotFound if the lesson does not exist
	*/
	Toggle(context context.Context, id, uid, lessonID string) (*ToggleResult, error)

	// ListByUser returns the caller's favorites joined with their lessons,
	// newest first.
	ListByUser(context context.Context, uid string) ([]*Entry, error)
}
