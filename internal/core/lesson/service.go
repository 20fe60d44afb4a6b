// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/internal/platform/validate"
	"github.com/taibuivan/lessons/pkg/pointer"
	"github.com/taibuivan/lessons/pkg/slug"
	"github.com/taibuivan/lessons/pkg/uuid"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxTagLength         = 50
	maxReasonLength      = 1000
)

// # Service Layer

// Service orchestrates lesson authoring, discovery and moderation.
type Service struct {
	repository Repository
	reporter   Reporter
	logger     *slog.Logger
}

// NewService constructs a new [Service]. Reports are forwarded to reporter.
func NewService(repository Repository, reporter Reporter, logger *slog.Logger) *Service {
	return &Service{repository: repository, reporter: reporter, logger: logger}
}

// # Authoring

/*
Create publishes a new lesson for the caller.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (the author)
  - input: CreateInput

Returns:
  - *Lesson: The stored lesson
  - error: Validation, premium guard or storage failures
*/
func (service *Service) Create(context context.Context, principal *sec.Principal, input CreateInput) (*Lesson, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.EmotionalTone = strings.TrimSpace(input.EmotionalTone)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	if input.Visibility == "" {
		input.Visibility = VisibilityPublic
	}
	if input.AccessLevel == "" {
		input.AccessLevel = AccessFree
	}

	validator := &validate.Validator{}
	validator.
		Required("title", input.Title).MaxLen("title", input.Title, maxTitleLength).
		Required("description", input.Description).MaxLen("description", input.Description, maxDescriptionLength).
		MaxLen("category", input.Category, maxTagLength).
		MaxLen("emotionalTone", input.EmotionalTone, maxTagLength).
		OneOf("visibility", string(input.Visibility), string(VisibilityPublic), string(VisibilityPrivate)).
		OneOf("accessLevel", string(input.AccessLevel), string(AccessFree), string(AccessPremium))

	validator.OptionalURL("imageUrl", input.ImageURL)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.AccessLevel == AccessPremium {
		if err := sec.Authorize(principal, "Upgrade to Premium to create premium lessons", sec.Premium{}); err != nil {
			return nil, err
		}
	}

	lesson := &Lesson{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		Category:      slug.Category(input.Category),
		EmotionalTone: input.EmotionalTone,
		ImageURL:      input.ImageURL,
		Visibility:    input.Visibility,
		AccessLevel:   input.AccessLevel,
		CreatorUID:    principal.UID,
		CreatorName:   creatorName(principal),
		CreatorPhoto:  principal.PhotoURL,
		Likes:         []string{},
	}

	if err := service.repository.Create(context, lesson); err != nil {
		return nil, fmt.Errorf("lesson_service_create_failed: %w", err)
	}

	service.logger.Info("lesson_created",
		slog.String("lesson_id", lesson.ID),
		slog.String("creator_uid", lesson.CreatorUID),
	)

	return lesson, nil
}

// creatorName snapshots the author's public name onto the lesson.
func creatorName(principal *sec.Principal) string {
	if name := strings.TrimSpace(principal.DisplayName); name != "" {
		return name
	}
	return principal.Email
}

/*
Update applies a partial edit. Only the owner or an administrator may edit,
and switching to premium access requires a premium author or an admin.
*/
func (service *Service) Update(context context.Context, principal *sec.Principal, id string, input UpdateInput) (*Lesson, error) {
	existing, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_update_failed: %w", err)
	}

	if err := sec.Authorize(principal, "Only owner or admin can update", sec.Owner{CreatorUID: existing.CreatorUID}, sec.Admin{}); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
		validator.Required("title", trimmed).MaxLen("title", trimmed, maxTitleLength)
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		input.Description = &trimmed
		validator.Required("description", trimmed).MaxLen("description", trimmed, maxDescriptionLength)
	}
	if input.Category != nil {
		validator.MaxLen("category", *input.Category, maxTagLength)
		normalized := slug.Category(*input.Category)
		input.Category = &normalized
	}
	if input.EmotionalTone != nil {
		validator.MaxLen("emotionalTone", *input.EmotionalTone, maxTagLength)
	}
	if input.ImageURL != nil {
		validator.OptionalURL("imageUrl", *input.ImageURL)
	}
	if input.Visibility != nil {
		validator.OneOf("visibility", string(*input.Visibility), string(VisibilityPublic), string(VisibilityPrivate))
	}
	if input.AccessLevel != nil {
		validator.OneOf("accessLevel", string(*input.AccessLevel), string(AccessFree), string(AccessPremium))
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if pointer.Fallback(input.AccessLevel, existing.AccessLevel) == AccessPremium && existing.AccessLevel != AccessPremium {
		if err := sec.Authorize(principal, "Upgrade to Premium to create premium lessons", sec.Premium{}, sec.Admin{}); err != nil {
			return nil, err
		}
	}

	updated, err := service.repository.Update(context, id, input)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_update_failed: %w", err)
	}

	service.logger.Info("lesson_updated",
		slog.String("lesson_id", id),
		slog.String("actor_uid", principal.UID),
	)

	return updated, nil
}

/*
Delete removes a lesson together with its favorites and reports.
Only the owner or an administrator may delete.
*/
func (service *Service) Delete(context context.Context, principal *sec.Principal, id string) (*CascadeResult, error) {
	existing, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_delete_failed: %w", err)
	}

	if err := sec.Authorize(principal, "Only owner or admin can delete", sec.Owner{CreatorUID: existing.CreatorUID}, sec.Admin{}); err != nil {
		return nil, err
	}

	return service.cascade(context, principal, id)
}

func (service *Service) cascade(context context.Context, principal *sec.Principal, id string) (*CascadeResult, error) {
	result, err := service.repository.Delete(context, id)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_delete_failed: %w", err)
	}

	service.logger.Warn("lesson_deleted",
		slog.String("lesson_id", id),
		slog.String("actor_uid", principal.UID),
		slog.Int64("favorites_removed", result.FavoritesRemoved),
		slog.Int64("reports_removed", result.ReportsRemoved),
	)

	return result, nil
}

// # Discovery

/*
Get returns a lesson as seen by the caller.

Private lessons are only visible to their owner and to administrators; any
other caller gets NotFound so their existence is not disclosed.
*/
func (service *Service) Get(context context.Context, principal *sec.Principal, id string) (*Detail, error) {
	lesson, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_get_failed: %w", err)
	}

	isOwner := sec.Owner{CreatorUID: lesson.CreatorUID}.Allows(principal)

	if lesson.Visibility != VisibilityPublic && !isOwner && !principal.IsAdmin() {
		return nil, apperr.NotFound("Lesson")
	}

	return &Detail{Lesson: lesson, IsOwner: isOwner}, nil
}

// ListPublic returns a filtered page of the public catalogue.
func (service *Service) ListPublic(context context.Context, filter Filter, limit, offset int) ([]*Lesson, int, error) {
	if filter.Sort != SortMostSaved {
		filter.Sort = SortNewest
	}
	if filter.Category != "" {
		filter.Category = slug.Category(filter.Category)
	}
	filter.Search = strings.TrimSpace(filter.Search)

	lessons, total, err := service.repository.ListPublic(context, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("lesson_service_list_public_failed: %w", err)
	}
	return lessons, total, nil
}

// Featured returns the featured strip of the home page.
func (service *Service) Featured(context context.Context) ([]*Lesson, error) {
	lessons, err := service.repository.ListFeatured(context, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_featured_failed: %w", err)
	}
	return lessons, nil
}

// TopContributors returns the most prolific authors.
func (service *Service) TopContributors(context context.Context) ([]Contributor, error) {
	contributors, err := service.repository.TopContributors(context, TopContributorsLimit)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_top_contributors_failed: %w", err)
	}
	return contributors, nil
}

// MyLessons returns every lesson authored by the caller.
func (service *Service) MyLessons(context context.Context, principal *sec.Principal) ([]*Lesson, error) {
	lessons, err := service.repository.ListByCreator(context, principal.UID)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_my_lessons_failed: %w", err)
	}
	return lessons, nil
}

// # Engagement

/*
ToggleLike flips the caller's membership in the lesson's like set.

Returns:
  - *LikeResult: Membership after the toggle and the current likesCount
  - error: apperr.NotFound if the lesson does not exist
*/
func (service *Service) ToggleLike(context context.Context, principal *sec.Principal, id string) (*LikeResult, error) {
	result, err := service.repository.ToggleLike(context, id, principal.UID)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_toggle_like_failed: %w", err)
	}

	service.logger.Debug("lesson_like_toggled",
		slog.String("lesson_id", id),
		slog.String("uid", principal.UID),
		slog.Bool("liked", result.Liked),
	)

	return result, nil
}

// Report files a moderation report against a lesson.
func (service *Service) Report(context context.Context, principal *sec.Principal, id, reason string) error {
	reason = strings.TrimSpace(reason)

	validator := &validate.Validator{}
	validator.Required("reason", reason).MaxLen("reason", reason, maxReasonLength)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.reporter.SubmitReport(context, principal, id, reason); err != nil {
		return fmt.Errorf("lesson_service_report_failed: %w", err)
	}
	return nil
}

// # Administration

// ListAdmin returns a page of all lessons with their creators.
func (service *Service) ListAdmin(context context.Context, filter AdminFilter, limit, offset int) ([]*AdminLesson, int, error) {
	validator := &validate.Validator{}
	validator.
		OptionalOneOf("visibility", filter.Visibility, string(VisibilityPublic), string(VisibilityPrivate)).
		OptionalOneOf("accessLevel", filter.AccessLevel, string(AccessFree), string(AccessPremium))
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	if filter.Category != "" {
		filter.Category = slug.Category(filter.Category)
	}

	lessons, total, err := service.repository.ListAdmin(context, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("lesson_service_list_admin_failed: %w", err)
	}
	return lessons, total, nil
}

// Moderate sets the featured/reviewed flags of a lesson.
func (service *Service) Moderate(context context.Context, actor *sec.Principal, id string, input ModerationInput) (*Lesson, error) {
	validator := &validate.Validator{}
	validator.Custom("isFeatured", input.IsFeatured == nil && input.IsReviewed == nil, "Provide isFeatured or isReviewed")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	lesson, err := service.repository.Moderate(context, id, input)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_moderate_failed: %w", err)
	}

	service.logger.Info("lesson_moderated",
		slog.String("lesson_id", id),
		slog.String("actor_uid", actor.UID),
		slog.Bool("featured", lesson.IsFeatured),
		slog.Bool("reviewed", lesson.IsReviewed),
	)

	return lesson, nil
}

// AdminDelete removes any lesson with its dependents.
func (service *Service) AdminDelete(context context.Context, actor *sec.Principal, id string) (*CascadeResult, error) {
	if err := sec.Authorize(actor, "Admin access only", sec.Admin{}); err != nil {
		return nil, err
	}
	return service.cascade(context, actor, id)
}

// RepairCounters recomputes a lesson's cached counters from the ledgers.
func (service *Service) RepairCounters(context context.Context, actor *sec.Principal, id string) (*Lesson, error) {
	lesson, err := service.repository.RepairCounters(context, id)
	if err != nil {
		return nil, fmt.Errorf("lesson_service_repair_failed: %w", err)
	}

	service.logger.Info("lesson_counters_repaired",
		slog.String("lesson_id", id),
		slog.String("actor_uid", actor.UID),
		slog.Int("favorites", lesson.FavoritesCount),
		slog.Int("reports", lesson.ReportsCount),
	)

	return lesson, nil
}
