// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package favorite owns the favorite ledger: the set of (user, lesson) pairs a
reader has saved.

The ledger is the source of truth. A lesson's favoritesCount and a user's
totalFavorites are caches adjusted by atomic increments in the same
transaction as the ledger write, and can be recomputed from it.
*/
package favorite

import (
	"time"

	"github.com/taibuivan/lessons/internal/core/lesson"
)

// # Domain Entities

// Favorite is one row of the ledger.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	LessonID  string    `json:"lessonId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry is a favorite joined with the lesson it points to.
type Entry struct {
	Favorite
	Lesson *lesson.Lesson `json:"lesson"`
}

// ToggleResult is the membership state after a toggle, with the lesson's
// counter as stored after the write.
type ToggleResult struct {
	Favorited      bool `json:"favorited"`
	FavoritesCount int  `json:"favoritesCount"`
}

// ToggleInput is the body of POST /favorites/toggle.
type ToggleInput struct {
	LessonID string `json:"lessonId"`
}
