// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package favorite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/pkg/uuid"
)

// # Service Layer

// Service orchestrates the favorite ledger.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

/*
Toggle saves or unsaves a lesson for the caller.

The lesson id is validated before anything is read or written, so a
malformed id never touches the ledger or the counters.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - lessonID: string (raw, as supplied by the client)

Returns:
  - *ToggleResult: Membership after the toggle and the lesson's counter
  - error: apperr.InvalidID, apperr.NotFound or storage failures
*/
func (service *Service) Toggle(context context.Context, principal *sec.Principal, lessonID string) (*ToggleResult, error) {
	canonical, ok := uuid.Canonical(strings.TrimSpace(lessonID))
	if !ok {
		return nil, apperr.InvalidID("lesson")
	}

	result, err := service.repository.Toggle(context, uuid.New(), principal.UID, canonical)
	if err != nil {
		return nil, fmt.Errorf("favorite_service_toggle_failed: %w", err)
	}

	service.logger.Info("favorite_toggled",
		slog.String("uid", principal.UID),
		slog.String("lesson_id", canonical),
		slog.Bool("favorited", result.Favorited),
		slog.Int("favorites_count", result.FavoritesCount),
	)

	return result, nil
}

// Mine lists the caller's favorites, newest first.
func (service *Service) Mine(context context.Context, principal *sec.Principal) ([]*Entry, error) {
	entries, err := service.repository.ListByUser(context, principal.UID)
	if err != nil {
		return nil, fmt.Errorf("favorite_service_list_failed: %w", err)
	}
	return entries, nil
}
