// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package favorite

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lessons/internal/platform/idempotency"
	"github.com/taibuivan/lessons/internal/platform/middleware"
	requestutil "github.com/taibuivan/lessons/internal/platform/request"
	"github.com/taibuivan/lessons/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer of the favorite ledger.
type Handler struct {
	service *Service
	replay  idempotency.Store
}

// NewHandler constructs a new favorite [Handler].
func NewHandler(service *Service, replay idempotency.Store) *Handler {
	return &Handler{service: service, replay: replay}
}

// Routes serves the favorite endpoints under /favorites.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/my", handler.listMine)

	router.Group(func(toggles chi.Router) {
		toggles.Use(idempotency.Middleware(handler.replay))
		toggles.Post("/toggle", handler.toggleFromBody)
		toggles.Post("/{lessonId}/toggle", handler.toggleFromPath)
	})

	return router
}

/*
POST /api/favorites/toggle.

Request:
  - lessonId: string (UUID)

Response:
  - 200: ToggleResult
  - 400: Malformed lesson id
  - 404: Lesson not found
*/
func (handler *Handler) toggleFromBody(writer http.ResponseWriter, request *http.Request) {
	var input ToggleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.toggle(writer, request, input.LessonID)
}

// POST /api/favorites/{lessonId}/toggle.
func (handler *Handler) toggleFromPath(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, requestutil.Param(request, "lessonId"))
}

func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request, lessonID string) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Toggle(request.Context(), principal, lessonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := "Removed from favorites"
	if result.Favorited {
		message = "Added to favorites"
	}

	respond.Message(writer, http.StatusOK, message, result)
}

// GET /api/favorites/my.
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.Mine(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}
