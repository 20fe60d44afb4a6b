// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account is the user directory of the lessons platform.

Every verified identity is mapped to exactly one account row, created on first
sight. The account carries the role and premium flag used for authorization and
two denormalized counters (lessons authored, lessons favorited) that are
recomputed from the ledgers whenever the owner loads their profile.

# Architecture

  - Entities: User, Dashboard, RecentLesson.
  - Provisioning: implements middleware.Provisioner for the auth chain.
  - Security: role changes are admin-only; the premium flag is only flipped by
    the payment webhook.
*/
package account

import (
	"time"

	"github.com/taibuivan/lessons/internal/platform/sec"
)

// # Domain Entities

// User is a provisioned account.
type User struct {
	ID             string       `json:"id"`
	UID            string       `json:"uid"`
	Email          string       `json:"email"`
	DisplayName    string       `json:"displayName"`
	PhotoURL       string       `json:"photoURL"`
	Role           sec.UserRole `json:"role"`
	IsPremium      bool         `json:"isPremium"`
	TotalLessons   int          `json:"totalLessons"`
	TotalFavorites int          `json:"totalFavorites"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Principal projects the account into the authorization subject.
func (u *User) Principal() *sec.Principal {
	return &sec.Principal{
		UserID:      u.ID,
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Role:        u.Role,
		IsPremium:   u.IsPremium,
	}
}

// RecentLesson is the compact lesson row shown on the personal dashboard.
type RecentLesson struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dashboard aggregates the caller's own activity.
type Dashboard struct {
	TotalLessons   int            `json:"totalLessons"`
	TotalFavorites int            `json:"totalFavorites"`
	RecentLessons  []RecentLesson `json:"recentLessons"`
}

// UpdateProfileInput defines the mutable subset of profile fields.
// Nil pointers leave the stored value untouched.
type UpdateProfileInput struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

// DashboardRecentLimit bounds the recent lessons on the dashboard.
const DashboardRecentLimit = 10
