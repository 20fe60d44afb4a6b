// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package moderation

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lessons/internal/platform/idempotency"
	requestutil "github.com/taibuivan/lessons/internal/platform/request"
	"github.com/taibuivan/lessons/internal/platform/respond"
	"github.com/taibuivan/lessons/pkg/pagination"
)

// # Handler Implementation

// Handler implements the admin moderation endpoints.
type Handler struct {
	service *Service
	replay  idempotency.Store
}

// NewHandler constructs a new moderation [Handler].
func NewHandler(service *Service, replay idempotency.Store) *Handler {
	return &Handler{service: service, replay: replay}
}

// RegisterAdminRoutes mounts moderation on an admin-guarded router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/stats", handler.getStats)
	router.Get("/profile", handler.getProfile)

	router.Get("/reports", handler.listReportedLessons)
	router.Get("/reports/{lessonId}", handler.getLessonReports)
	router.With(idempotency.Middleware(handler.replay)).Patch("/reports/{lessonId}/resolve", handler.resolveReports)
}

/*
GET /api/admin/stats.

Query:
  - refresh: "true" bypasses the cached summary

Response:
  - 200: Stats
*/
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	compute := handler.service.Stats
	if refresh, _ := strconv.ParseBool(request.URL.Query().Get("refresh")); refresh {
		compute = handler.service.RefreshStats
	}

	stats, err := compute(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

// GET /api/admin/profile.
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.service.Profile(request.Context(), requestutil.Principal(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
GET /api/admin/reports.

Description: Lessons with reports, most reported first, then most recently
reported.

Response:
  - 200: []ReportedLesson with pagination meta
*/
func (handler *Handler) listReportedLessons(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	summaries, total, err := handler.service.ReportedLessons(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, summaries, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/admin/reports/{lessonId}.

Response:
  - 200: LessonReports
  - 400: Malformed id
  - 404: Lesson not found
*/
func (handler *Handler) getLessonReports(writer http.ResponseWriter, request *http.Request) {
	lessonID, err := requestutil.UUIDParam(request, "lessonId", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.LessonReports(request.Context(), lessonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

type resolveRequest struct {
	Status Status `json:"status"`
}

/*
PATCH /api/admin/reports/{lessonId}/resolve.

Request (optional body):
  - status: "ignored" (default) | "removed" | "warned"

Response:
  - 200: {"modifiedCount": n, "status": "..."}
  - 400: Malformed id or unknown status
*/
func (handler *Handler) resolveReports(writer http.ResponseWriter, request *http.Request) {
	lessonID, err := requestutil.UUIDParam(request, "lessonId", "lesson")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body resolveRequest
	if err := requestutil.DecodeOptionalJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Resolve(request.Context(), requestutil.Principal(request), lessonID, body.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Reports resolved", result)
}
