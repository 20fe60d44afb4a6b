// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/pkg/uuid"
)

// Options tunes the dashboard.
type Options struct {
	// StatsTTL is how long a computed summary is served from cache. Zero disables caching.
	StatsTTL time.Duration
	// Location defines local midnight for the new-lessons counter.
	Location *time.Location
}

// # Service Layer

// Service runs report intake, resolution and the admin dashboard.
type Service struct {
	repository Repository
	directory  Directory
	cache      StatsCache
	options    Options
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new moderation [Service].
func NewService(repository Repository, directory Directory, cache StatsCache, options Options, logger *slog.Logger) *Service {
	if options.Location == nil {
		options.Location = time.Local
	}
	return &Service{
		repository: repository,
		directory:  directory,
		cache:      cache,
		options:    options,
		logger:     logger,
		now:        time.Now,
	}
}

// # Report Ledger

/*
SubmitReport files an unresolved report against a lesson.

Multiple reports by the same user on the same lesson are accepted; each one
is kept as moderation history.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (the reporter)
  - lessonID: string (canonical UUID)
  - reason: string

Returns:
  - error: apperr.ValidationError, apperr.NotFound or storage failures
*/
func (service *Service) SubmitReport(context context.Context, principal *sec.Principal, lessonID, reason string) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.ValidationError("Report reason is required", apperr.FieldError{
			Field:   "reason",
			Message: "This field is required",
		})
	}

	item := &Report{
		ID:            uuid.New(),
		LessonID:      lessonID,
		ReporterUID:   principal.UID,
		ReporterEmail: principal.Email,
		Reason:        reason,
	}

	if err := service.repository.Submit(context, item); err != nil {
		return fmt.Errorf("moderation_service_submit_failed: %w", err)
	}

	service.logger.Info("report_submitted",
		slog.String("report_id", item.ID),
		slog.String("lesson_id", lessonID),
		slog.String("reporter_uid", principal.UID),
	)

	return nil
}

/*
Resolve closes every unresolved report of a lesson with one outcome.

An empty status defaults to "ignored". Reports already resolved keep their
original outcome.

Returns:
  - *ResolveResult: Number of reports transitioned and the applied status
  - error: apperr.Forbidden for non-admins, apperr.ValidationError for unknown statuses
*/
func (service *Service) Resolve(context context.Context, actor *sec.Principal, lessonID string, status Status) (*ResolveResult, error) {
	if err := sec.Authorize(actor, "Admin access only", sec.Admin{}); err != nil {
		return nil, err
	}

	if status == "" {
		status = StatusIgnored
	}
	if !status.Valid() {
		return nil, apperr.ValidationError("Invalid status value", apperr.FieldError{
			Field:   "status",
			Message: "Must be one of: ignored, removed, warned",
		})
	}

	modified, err := service.repository.Resolve(context, lessonID, actor.UID, status)
	if err != nil {
		return nil, fmt.Errorf("moderation_service_resolve_failed: %w", err)
	}

	service.logger.Info("reports_resolved",
		slog.String("lesson_id", lessonID),
		slog.String("status", string(status)),
		slog.String("handled_by", actor.UID),
		slog.Int64("modified", modified),
	)

	return &ResolveResult{ModifiedCount: modified, Status: status}, nil
}

// # Dashboard

/*
Stats returns the dashboard summary, served from cache when fresh.

The counters are computed concurrently; the first failing query cancels the
rest. Cache failures are logged and never fail the request.
*/
func (service *Service) Stats(context context.Context) (*Stats, error) {
	if service.cacheEnabled() {
		cached, err := service.cache.Get(context)
		if err != nil {
			service.logger.Warn("stats_cache_read_failed", slog.Any("error", err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	now := service.now().In(service.options.Location)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, service.options.Location)

	stats := &Stats{GeneratedAt: now}
	group, groupContext := errgroup.WithContext(context)

	group.Go(func() (err error) {
		stats.TotalUsers, err = service.repository.CountUsers(groupContext)
		return err
	})
	group.Go(func() (err error) {
		stats.TotalLessons, err = service.repository.CountLessons(groupContext)
		return err
	})
	group.Go(func() (err error) {
		stats.TotalPublicLessons, err = service.repository.CountPublicLessons(groupContext)
		return err
	})
	group.Go(func() (err error) {
		stats.TotalReportedLessons, err = service.repository.CountReportedLessons(groupContext)
		return err
	})
	group.Go(func() (err error) {
		stats.TodaysNewLessons, err = service.repository.CountLessonsSince(groupContext, midnight)
		return err
	})
	group.Go(func() (err error) {
		stats.MostActiveContributors, err = service.repository.TopContributors(groupContext, TopContributorsLimit)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("moderation_service_stats_failed: %w", err)
	}

	if service.cacheEnabled() {
		if err := service.cache.Set(context, stats, service.options.StatsTTL); err != nil {
			service.logger.Warn("stats_cache_write_failed", slog.Any("error", err))
		}
	}

	return stats, nil
}

func (service *Service) cacheEnabled() bool {
	return service.cache != nil && service.options.StatsTTL > 0
}

// RefreshStats drops the cached summary and recomputes it.
func (service *Service) RefreshStats(context context.Context) (*Stats, error) {
	if service.cache != nil {
		if err := service.cache.Invalidate(context); err != nil {
			service.logger.Warn("stats_cache_invalidate_failed", slog.Any("error", err))
		}
	}
	return service.Stats(context)
}

// ReportedLessons returns a page of the triage queue.
func (service *Service) ReportedLessons(context context.Context, limit, offset int) ([]*ReportedLesson, int, error) {
	summaries, total, err := service.repository.ReportedLessons(context, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("moderation_service_reported_lessons_failed: %w", err)
	}
	return summaries, total, nil
}

// LessonReports returns every report of one lesson, newest first.
func (service *Service) LessonReports(context context.Context, lessonID string) (*LessonReports, error) {
	detail, err := service.repository.LessonReports(context, lessonID)
	if err != nil {
		return nil, fmt.Errorf("moderation_service_lesson_reports_failed: %w", err)
	}
	return detail, nil
}

/*
Profile returns the acting admin's account with a summary of their
moderation work.
*/
func (service *Service) Profile(context context.Context, actor *sec.Principal) (*AdminProfile, error) {
	if err := sec.Authorize(actor, "Admin access only", sec.Admin{}); err != nil {
		return nil, err
	}

	profile := &AdminProfile{}
	group, groupContext := errgroup.WithContext(context)

	group.Go(func() (err error) {
		profile.Profile, err = service.directory.FindByUID(groupContext, actor.UID)
		return err
	})
	group.Go(func() error {
		activity, err := service.repository.Activity(groupContext, actor.UID)
		if err != nil {
			return err
		}
		profile.Moderation = *activity
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("moderation_service_profile_failed: %w", err)
	}

	return profile, nil
}
