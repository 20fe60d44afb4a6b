// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lesson is the content store of the platform.

A lesson carries three denormalized counters next to its content:

  - likesCount: size of the inline like set, kept equal by a single UPDATE.
  - favoritesCount: cache of the favorite ledger, adjusted by the favorite package.
  - reportsCount: cache of the report ledger, adjusted by the moderation package.

Deleting a lesson cascades to every favorite and report referencing it in one
transaction. Counters can be recomputed from the ledgers at any time.
*/
package lesson

import (
	"context"
	"time"

	"github.com/taibuivan/lessons/internal/platform/sec"
)

// # Enumerations

// Visibility controls who can discover a lesson.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// AccessLevel marks lessons reserved for premium readers.
type AccessLevel string

const (
	AccessFree    AccessLevel = "free"
	AccessPremium AccessLevel = "premium"
)

// Sort orders for the public catalogue.
const (
	SortNewest    = "newest"
	SortMostSaved = "mostSaved"
)

const (
	// DefaultPublicLimit is the page size of the public catalogue.
	DefaultPublicLimit = 9
	// FeaturedLimit caps the featured strip.
	FeaturedLimit = 6
	// TopContributorsLimit caps the public contributor board.
	TopContributorsLimit = 5
)

// # Domain Entities

// Lesson is a short piece of authored content.
type Lesson struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	EmotionalTone  string      `json:"emotionalTone"`
	ImageURL       string      `json:"imageUrl"`
	Visibility     Visibility  `json:"visibility"`
	AccessLevel    AccessLevel `json:"accessLevel"`
	CreatorUID     string      `json:"creatorId"`
	CreatorName    string      `json:"creatorName"`
	CreatorPhoto   string      `json:"creatorPhoto"`
	Likes          []string    `json:"likes"`
	LikesCount     int         `json:"likesCount"`
	FavoritesCount int         `json:"favoritesCount"`
	ReportsCount   int         `json:"reportsCount"`
	IsFeatured     bool        `json:"isFeatured"`
	IsReviewed     bool        `json:"isReviewed"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Detail is a lesson as seen by a specific caller.
type Detail struct {
	Lesson  *Lesson `json:"lesson"`
	IsOwner bool    `json:"isOwner"`
}

// LikeResult is the membership state after a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// Contributor is an entry of the public contributor board.
type Contributor struct {
	UID          string `json:"uid"`
	Name         string `json:"name"`
	PhotoURL     string `json:"photoURL"`
	TotalLessons int    `json:"totalLessons"`
}

// Creator is the account joined onto admin lesson listings.
// It is nil when the creator has no directory row.
type Creator struct {
	ID          string       `json:"id"`
	UID         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	PhotoURL    string       `json:"photoURL"`
	Role        sec.UserRole `json:"role"`
	IsPremium   bool         `json:"isPremium"`
}

// AdminLesson is a lesson with its creator profile.
type AdminLesson struct {
	*Lesson
	Creator *Creator `json:"creator"`
}

// CascadeResult reports what a lesson deletion removed.
type CascadeResult struct {
	FavoritesRemoved int64 `json:"favoritesRemoved"`
	ReportsRemoved   int64 `json:"reportsRemoved"`
}

// # Inputs & Filters

// Filter narrows the public catalogue.
type Filter struct {
	Category      string
	EmotionalTone string
	Search        string
	Sort          string
}

// AdminFilter narrows the admin lesson listing.
type AdminFilter struct {
	Visibility  string
	Category    string
	AccessLevel string
	// Flagged keeps only lessons with at least one report.
	Flagged bool
}

// CreateInput is the payload of a new lesson.
type CreateInput struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	EmotionalTone string      `json:"emotionalTone"`
	ImageURL      string      `json:"imageUrl"`
	Visibility    Visibility  `json:"visibility"`
	AccessLevel   AccessLevel `json:"accessLevel"`
}

// UpdateInput is a partial lesson update. Nil fields are left untouched.
type UpdateInput struct {
	Title         *string      `json:"title"`
	Description   *string      `json:"description"`
	Category      *string      `json:"category"`
	EmotionalTone *string      `json:"emotionalTone"`
	ImageURL      *string      `json:"imageUrl"`
	Visibility    *Visibility  `json:"visibility"`
	AccessLevel   *AccessLevel `json:"accessLevel"`
}

// ModerationInput toggles the editorial flags.
type ModerationInput struct {
	IsFeatured *bool `json:"isFeatured"`
	IsReviewed *bool `json:"isReviewed"`
}

// # Collaborators

// Reporter records a moderation report against a lesson. The moderation
// ledger implements it.
type Reporter interface {
	SubmitReport(ctx context.Context, principal *sec.Principal, lessonID, reason string) error
}
