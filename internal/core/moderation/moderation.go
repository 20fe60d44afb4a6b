// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package moderation owns the report ledger and the admin dashboard.

Report lifecycle:

	unresolved --(admin bulk resolve, per lesson)--> resolved(status)

Resolution is terminal. Every report of a lesson that is still unresolved when
an admin resolves it receives the same status, handler and timestamp; reports
filed afterwards start unresolved again.

The aggregator reads across users, lessons and reports without mutating them.
Each query sees its own snapshot; the dashboard as a whole is best-effort.
*/
package moderation

import (
	"time"

	"github.com/taibuivan/lessons/internal/users/account"
)

// # Enumerations

// Status is the outcome recorded on a resolved report.
type Status string

const (
	StatusIgnored Status = "ignored"
	StatusRemoved Status = "removed"
	StatusWarned  Status = "warned"
)

// Valid reports whether s is a known moderation outcome.
func (s Status) Valid() bool {
	switch s {
	case StatusIgnored, StatusRemoved, StatusWarned:
		return true
	}
	return false
}

const (
	// TopContributorsLimit caps the dashboard leaderboard.
	TopContributorsLimit = 5
)

// # Domain Entities

// Report is one row of the report ledger.
type Report struct {
	ID            string     `json:"id"`
	LessonID      string     `json:"lessonId"`
	ReporterUID   string     `json:"reporterId"`
	ReporterEmail string     `json:"reporterEmail"`
	Reason        string     `json:"reason"`
	Resolved      bool       `json:"resolved"`
	Status        *Status    `json:"status"`
	HandledBy     *string    `json:"handledBy"`
	HandledAt     *time.Time `json:"handledAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ResolveResult is returned by a bulk resolution.
type ResolveResult struct {
	ModifiedCount int64  `json:"modifiedCount"`
	Status        Status `json:"status"`
}

// # Read Models

// Contributor is a leaderboard entry joined with the author's profile.
type Contributor struct {
	UID          string `json:"uid"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoURL"`
	TotalLessons int    `json:"totalLessons"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers             int           `json:"totalUsers"`
	TotalLessons           int           `json:"totalLessons"`
	TotalPublicLessons     int           `json:"totalPublicLessons"`
	TotalReportedLessons   int           `json:"totalReportedLessons"`
	TodaysNewLessons       int           `json:"todaysNewLessons"`
	MostActiveContributors []Contributor `json:"mostActiveContributors"`
	GeneratedAt            time.Time     `json:"generatedAt"`
}

// ReportedLesson summarizes the reports filed against one lesson.
type ReportedLesson struct {
	LessonID       string    `json:"lessonId"`
	LessonTitle    string    `json:"lessonTitle"`
	ReportCount    int       `json:"reportCount"`
	PendingCount   int       `json:"pendingCount"`
	LastReportedAt time.Time `json:"lastReportedAt"`
}

// LessonRef identifies the lesson of a report detail view.
type LessonRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LessonReports is the triage view of a single lesson.
type LessonReports struct {
	Lesson  LessonRef `json:"lesson"`
	Reports []*Report `json:"reports"`
}

// Activity counts what a moderator has resolved.
type Activity struct {
	ModeratedLessons int `json:"moderatedLessons"`
	TotalActions     int `json:"totalActions"`
}

// AdminProfile is the acting admin's profile with moderation activity.
type AdminProfile struct {
	Profile    *account.User `json:"profile"`
	Moderation Activity      `json:"moderation"`
}
