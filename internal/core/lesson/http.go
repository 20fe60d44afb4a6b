// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lessons/internal/platform/idempotency"
	"github.com/taibuivan/lessons/internal/platform/middleware"
	requestutil "github.com/taibuivan/lessons/internal/platform/request"
	"github.com/taibuivan/lessons/internal/platform/respond"
	"github.com/taibuivan/lessons/pkg/pagination"
)

const maxPublicLimit = 50

// # Handler Implementation

// Handler implements the HTTP layer of the content store.
type Handler struct {
	service *Service
	replay  idempotency.Store
}

// NewHandler constructs a new lesson [Handler]. Toggle and report routes
// honour Idempotency-Key through replay.
func NewHandler(service *Service, replay idempotency.Store) *Handler {
	return &Handler{service: service, replay: replay}
}

// Routes serves the lesson endpoints under /lessons.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public catalogue
	router.Get("/public", handler.listPublic)
	router.Get("/public/featured", handler.listFeatured)
	router.Get("/public/top-contributors", handler.listTopContributors)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)

		protected.Post("/", handler.createLesson)
		protected.Get("/my/all", handler.listMine)

		protected.Get("/{id}", handler.getLesson)
		protected.Patch("/{id}", handler.updateLesson)
		protected.Delete("/{id}", handler.deleteLesson)

		protected.With(idempotency.Middleware(handler.replay)).Post("/{id}/like", handler.toggleLike)
		protected.With(idempotency.Middleware(handler.replay)).Post("/{id}/report", handler.reportLesson)
	})

	return router
}

// # Public Endpoints

/*
GET /api/lessons/public.

Query:
  - category, emotionalTone, search: optional filters
  - sort: "newest" (default) | "mostSaved"
  - page, limit: pagination (default limit 9)

Response:
  - 200: []Lesson with pagination meta
*/
func (handler *Handler) listPublic(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequestWithLimits(request, DefaultPublicLimit, maxPublicLimit)
	query := request.URL.Query()

	filter := Filter{
		Category:      query.Get("category"),
		EmotionalTone: query.Get("emotionalTone"),
		Search:        query.Get("search"),
		Sort:          query.Get("sort"),
	}

	lessons, total, err := handler.service.ListPublic(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, lessons, pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/lessons/public/featured.
func (handler *Handler) listFeatured(writer http.ResponseWriter, request *http.Request) {
	lessons, err := handler.service.Featured(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lessons)
}

// GET /api/lessons/public/top-contributors.
func (handler *Handler) listTopContributors(writer http.ResponseWriter, request *http.Request) {
	contributors, err := handler.service.TopContributors(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contributors)
}

// # Authoring Endpoints

/*
POST /api/lessons.

Request:
  - title, description: required
  - category, emotionalTone, imageUrl: optional
  - visibility: "public" (default) | "private"
  - accessLevel: "free" (default) | "premium" (premium authors only)

Response:
  - 201: Lesson
  - 400: Validation failure
  - 403: Premium lesson by a non-premium author
*/
func (handler *Handler) createLesson(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	lesson, err := handler.service.Create(request.Context(), principal, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Lesson created", lesson)
}

// GET /api/lessons/my/all.
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lessons, err := handler.service.MyLessons(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, lessons)
}

/*
GET /api/lessons/{id}.

Response:
  - 200: Detail
  - 400: Malformed id
  - 404: Lesson not found (or private and not visible to the caller)
*/
func (handler *Handler) getLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.Get(request.Context(), requestutil.Principal(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

// PATCH /api/lessons/{id}.
func (handler *Handler) updateLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	lesson, err := handler.service.Update(request.Context(), requestutil.Principal(request), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Lesson updated", lesson)
}

/*
DELETE /api/lessons/{id}.

Description: Removes the lesson with every favorite and report referencing it.

Response:
  - 200: CascadeResult
  - 403: Caller is neither the owner nor an admin
  - 404: Lesson not found
*/
func (handler *Handler) deleteLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Delete(request.Context(), requestutil.Principal(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Lesson deleted", result)
}

// # Engagement Endpoints

/*
POST /api/lessons/{id}/like.

Response:
  - 200: LikeResult
  - 400: Malformed id
  - 404: Lesson not found
*/
func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.ToggleLike(request.Context(), requestutil.Principal(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

type reportRequest struct {
	Reason string `json:"reason"`
}

/*
POST /api/lessons/{id}/report.

Request:
  - reason: string (required)

Response:
  - 201: Report submitted
  - 400: Malformed id or empty reason
  - 404: Lesson not found
*/
func (handler *Handler) reportLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body reportRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Report(request.Context(), requestutil.Principal(request), id, body.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Report submitted", nil)
}

// # Admin Endpoints

// RegisterAdminRoutes mounts lesson moderation on an admin-guarded router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/lessons", handler.listAdmin)
	router.Patch("/lessons/{lessonId}", handler.moderateLesson)
	router.Delete("/lessons/{lessonId}", handler.adminDeleteLesson)
	router.Post("/lessons/{lessonId}/repair", handler.repairLesson)
}

/*
GET /api/admin/lessons.

Query:
  - visibility, category, accessLevel: optional filters
  - flagged: "true" keeps only reported lessons
  - page, limit: pagination
*/
func (handler *Handler) listAdmin(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	flagged, _ := strconv.ParseBool(query.Get("flagged"))
	filter := AdminFilter{
		Visibility:  query.Get("visibility"),
		Category:    query.Get("category"),
		AccessLevel: query.Get("accessLevel"),
		Flagged:     flagged,
	}

	lessons, total, err := handler.service.ListAdmin(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, lessons, pagination.NewMeta(params.Page, params.Limit, total))
}

// PATCH /api/admin/lessons/{lessonId}.
func (handler *Handler) moderateLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "lessonId", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ModerationInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	lesson, err := handler.service.Moderate(request.Context(), requestutil.Principal(request), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Lesson updated", lesson)
}

// DELETE /api/admin/lessons/{lessonId}.
func (handler *Handler) adminDeleteLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "lessonId", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.AdminDelete(request.Context(), requestutil.Principal(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Lesson deleted", result)
}

// POST /api/admin/lessons/{lessonId}/repair.
func (handler *Handler) repairLesson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "lessonId", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lesson, err := handler.service.RepairCounters(request.Context(), requestutil.Principal(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Counters repaired", lesson)
}
