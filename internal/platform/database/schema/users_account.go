// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table          string
	ID             string
	UID            string
	Email          string
	DisplayName    string
	PhotoURL       string
	Role           string
	IsPremium      string
	TotalLessons   string
	TotalFavorites string
	CreatedAt      string
	UpdatedAt      string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:          "users.account",
	ID:             "id",
	UID:            "uid",
	Email:          "email",
	DisplayName:    "displayname",
	PhotoURL:       "photourl",
	Role:           "role",
	IsPremium:      "ispremium",
	TotalLessons:   "totallessons",
	TotalFavorites: "totalfavorites",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.UID, t.Email, t.DisplayName, t.PhotoURL, t.Role, t.IsPremium,
		t.TotalLessons, t.TotalFavorites, t.CreatedAt, t.UpdatedAt,
	}
}
