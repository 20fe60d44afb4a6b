// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreLessonTable represents the 'core.lesson' table
type CoreLessonTable struct {
	Table          string
	ID             string
	Title          string
	Description    string
	Category       string
	EmotionalTone  string
	ImageURL       string
	Visibility     string
	AccessLevel    string
	CreatorUID     string
	CreatorName    string
	CreatorPhoto   string
	Likes          string
	LikesCount     string
	FavoritesCount string
	ReportsCount   string
	IsFeatured     string
	IsReviewed     string
	CreatedAt      string
	UpdatedAt      string
}

// CoreLesson is the schema definition for core.lesson
var CoreLesson = CoreLessonTable{
	Table:          "core.lesson",
	ID:             "id",
	Title:          "title",
	Description:    "description",
	Category:       "category",
	EmotionalTone:  "emotionaltone",
	ImageURL:       "imageurl",
	Visibility:     "visibility",
	AccessLevel:    "accesslevel",
	CreatorUID:     "creatoruid",
	CreatorName:    "creatorname",
	CreatorPhoto:   "creatorphoto",
	Likes:          "likes",
	LikesCount:     "likescount",
	FavoritesCount: "favoritescount",
	ReportsCount:   "reportscount",
	IsFeatured:     "isfeatured",
	IsReviewed:     "isreviewed",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

// Columns returns all standard column names
func (t CoreLessonTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Description, t.Category, t.EmotionalTone, t.ImageURL,
		t.Visibility, t.AccessLevel, t.CreatorUID, t.CreatorName, t.CreatorPhoto,
		t.Likes, t.LikesCount, t.FavoritesCount, t.ReportsCount,
		t.IsFeatured, t.IsReviewed, t.CreatedAt, t.UpdatedAt,
	}
}
