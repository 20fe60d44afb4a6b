// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lessons/internal/platform/middleware"
	requestutil "github.com/taibuivan/lessons/internal/platform/request"
	"github.com/taibuivan/lessons/internal/platform/respond"
	"github.com/taibuivan/lessons/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer of the user directory.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AuthRoutes serves the session lookup under /auth.
func (handler *Handler) AuthRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getPrincipal)

	return router
}

// Routes serves the self-service profile endpoints under /users.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Get("/me/dashboard", handler.getDashboard)
	router.Get("/{email}/role", handler.getRole)

	return router
}

// RegisterAdminRoutes mounts user administration on an admin-guarded router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/users", handler.listUsers)
	router.Patch("/users/{userId}/role", handler.updateRole)
}

// # Self-Service Endpoints

/*
GET /api/auth/me.

Description: Returns the principal resolved by the auth chain, without
touching the counters.

Response:
  - 200: sec.Principal
  - 401: Missing or invalid token
*/
func (handler *Handler) getPrincipal(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, requestutil.Principal(request))
}

/*
GET /api/users/me.

Description: Returns the caller's profile with counters recomputed from the
ledgers.

Response:
  - 200: User
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Me(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/users/me.

Request:
  - displayName: string (optional)
  - photoURL: string (optional)

Response:
  - 200: User
  - 400: Validation failure
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateProfileInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateProfile(request.Context(), principal, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Profile updated", user)
}

// GET /api/users/me/dashboard.
func (handler *Handler) getDashboard(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	dashboard, err := handler.service.Dashboard(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, dashboard)
}

/*
GET /api/users/{email}/role.

Response:
  - 200: {"role": "user"|"admin"}
  - 403: Caller is neither the account nor an admin
  - 404: No account under that email
*/
func (handler *Handler) getRole(writer http.ResponseWriter, request *http.Request) {
	email := strings.TrimSpace(requestutil.Param(request, "email"))

	role, err := handler.service.RoleByEmail(request.Context(), requestutil.Principal(request), email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"role": string(role)})
}

// # Admin Endpoints

// GET /api/admin/users.
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.service.ListUsers(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

/*
PATCH /api/admin/users/{userId}/role.

Request:
  - role: "user" | "admin"

Response:
  - 200: User
  - 400: Invalid id or role
  - 404: User not found
*/
func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.UUIDParam(request, "userId", "user")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body updateRoleRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateRole(request.Context(), requestutil.Principal(request), userID, body.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "User role updated", user)
}
