// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreFavoriteTable represents the 'core.favorite' table
type CoreFavoriteTable struct {
	Table     string
	ID        string
	UserID    string
	LessonID  string
	CreatedAt string
}

// CoreFavorite is the schema definition for core.favorite
var CoreFavorite = CoreFavoriteTable{
	Table:     "core.favorite",
	ID:        "id",
	UserID:    "userid",
	LessonID:  "lessonid",
	CreatedAt: "createdat",
}
