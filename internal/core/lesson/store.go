// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import "context"

// # Repository Contracts

// Repository defines the persistence contract for lessons.
type Repository interface {
	/*
		Create inserts the lesson and increments the creator's totalLessons in
		the same transaction.

		Parameters:
		  - context: context.Context
		  - lesson: *Lesson (ID and creator populated by the service)

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, lesson *Lesson) error

	// FindByID retrieves a lesson or apperr.NotFound.
	FindByID(context context.Context, id string) (*Lesson, error)

	// ListPublic returns a page of public lessons and the total match count.
	ListPublic(context context.Context, filter Filter, limit, offset int) ([]*Lesson, int, error)

	// ListFeatured returns the newest featured public lessons.
	ListFeatured(context context.Context, limit int) ([]*Lesson, error)

	// TopContributors ranks creators by authored lessons, ties broken by uid.
	TopContributors(context context.Context, limit int) ([]Contributor, error)

	// ListByCreator returns every lesson of uid, newest first.
	ListByCreator(context context.Context, uid string) ([]*Lesson, error)

	// Update applies the non-nil fields of input.
	Update(context context.Context, id string, input UpdateInput) (*Lesson, error)

	/*
		ToggleLike adds uid to the like set if absent, removes it otherwise, and
		adjusts likesCount in the same single-row statement.

		Returns:
		  - *LikeResult: Membership after the toggle and the current count
		  - error: apperr.NotFound if the lesson does not exist
	*/
	ToggleLike(context context.Context, id, uid string) (*LikeResult, error)

	/*
		Delete removes the lesson and, in the same transaction, every favorite
		and report referencing it. Favoriters' totalFavorites and the creator's
		totalLessons are decremented.

		Returns:
		  - *CascadeResult: Number of dependent rows removed
		  - error: apperr.NotFound if the lesson does not exist
	*/
	Delete(context context.Context, id string) (*CascadeResult, error)

	// ListAdmin returns a page of lessons with their creators joined.
	ListAdmin(context context.Context, filter AdminFilter, limit, offset int) ([]*AdminLesson, int, error)

	// Moderate sets the editorial flags.
	Moderate(context context.Context, id string, input ModerationInput) (*Lesson, error)

	// RepairCounters recomputes favoritesCount and reportsCount from the ledgers.
	RepairCounters(context context.Context, id string) (*Lesson, error)
}
