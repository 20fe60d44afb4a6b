// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package moderation

import (
	"context"
	"time"

	"github.com/taibuivan/lessons/internal/users/account"
)

// # Repository Contracts

// Ledger defines the write side of the report ledger.
type Ledger interface {
	/*
		Submit inserts an unresolved report and increments the lesson's
		reportsCount in the same transaction.

		Returns:
		  - error: apperr.NotFound if the lesson does not exist
	*/
	Submit(context context.Context, report *Report) error

	// Resolve transitions every unresolved report of a lesson and returns how
	// many rows changed.
	Resolve(context context.Context, lessonID, handledBy string, status Status) (int64, error)
}

// Aggregator defines the read side used by the admin dashboard.
type Aggregator interface {
	CountUsers(context context.Context) (int, error)
	CountLessons(context context.Context) (int, error)
	CountPublicLessons(context context.Context) (int, error)

	// CountReportedLessons counts distinct lessons with at least one report.
	CountReportedLessons(context context.Context) (int, error)

	CountLessonsSince(context context.Context, since time.Time) (int, error)

	// TopContributors ranks creators with a directory row by lesson count,
	// ties broken by uid.
	TopContributors(context context.Context, limit int) ([]Contributor, error)

	// ReportedLessons groups reports by lesson, most reported first.
	ReportedLessons(context context.Context, limit, offset int) ([]*ReportedLesson, int, error)

	// LessonReports returns the lesson reference and its reports, newest
	// first, or apperr.NotFound.
	LessonReports(context context.Context, lessonID string) (*LessonReports, error)

	// Activity counts distinct lessons and reports resolved by uid.
	Activity(context context.Context, uid string) (*Activity, error)
}

// Repository is the full persistence contract of the package.
type Repository interface {
	Ledger
	Aggregator
}

// Directory resolves account profiles.
type Directory interface {
	FindByUID(context context.Context, uid string) (*account.User, error)
}

// StatsCache holds the most recent dashboard summary.
type StatsCache interface {
	// Get returns nil, nil on a miss.
	Get(context context.Context) (*Stats, error)
	Set(context context.Context, stats *Stats, ttl time.Duration) error
	Invalidate(context context.Context) error
}
