// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/internal/platform/idempotency"
	"github.com/taibuivan/lessons/internal/platform/middleware"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/pkg/pagination"
)

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Meta    *pagination.Meta `json:"meta"`
	Errors  struct {
		Code string `json:"code"`
	} `json:"errors"`
}

func newTestRouter(t *testing.T) (http.Handler, *Service, *memoryRepository, *recordingReporter) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	service, repository, reporter := newTestService()
	handler := NewHandler(service, idempotency.NewRedisStore(client))

	router := chi.NewRouter()
	router.Mount("/lessons", handler.Routes())
	router.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		handler.RegisterAdminRoutes(admin)
	})

	return router, service, repository, reporter
}

func serve(t *testing.T, router http.Handler, request *http.Request, principal *sec.Principal) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if principal != nil {
		request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func TestHandler_PublicCatalogue(t *testing.T) {
	router, service, _, _ := newTestRouter(t)
	for _, title := range []string{"One", "Two", "Three"} {
		mustCreate(t, service, alice, title)
	}

	recorder, body := serve(t, router, httptest.NewRequest(http.MethodGet, "/lessons/public?limit=2", nil), nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 3, body.Meta.Total)
	assert.Equal(t, 2, body.Meta.TotalPages)
	assert.True(t, body.Meta.HasNextPage)

	var lessons []Lesson
	require.NoError(t, json.Unmarshal(body.Data, &lessons))
	assert.Len(t, lessons, 2)
}

func TestHandler_CreateRequiresAuth(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	payload := `{"title":"Trust","description":"Earned slowly"}`

	recorder, _ := serve(t, router, httptest.NewRequest(http.MethodPost, "/lessons/", strings.NewReader(payload)), nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder, body := serve(t, router, httptest.NewRequest(http.MethodPost, "/lessons/", strings.NewReader(payload)), alice)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "Lesson created", body.Message)
}

func TestHandler_MalformedID(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	for _, path := range []string{"/lessons/xyz", "/lessons/xyz/like"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "/like") {
			method = http.MethodPost
		}
		recorder, body := serve(t, router, httptest.NewRequest(method, path, nil), bob)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, path)
		assert.Equal(t, "VALIDATION_ERROR", body.Errors.Code, path)
	}
}

func TestHandler_LikeReplay(t *testing.T) {
	router, service, repository, _ := newTestRouter(t)
	lesson := mustCreate(t, service, alice, "Humility")

	like := func(key string) (*httptest.ResponseRecorder, LikeResult) {
		request := httptest.NewRequest(http.MethodPost, "/lessons/"+lesson.ID+"/like", nil)
		request.Header.Set(constants.HeaderIdempotencyKey, key)
		recorder, body := serve(t, router, request, bob)
		require.Equal(t, http.StatusOK, recorder.Code)

		var result LikeResult
		require.NoError(t, json.Unmarshal(body.Data, &result))
		return recorder, result
	}

	_, first := like("retry-1")
	assert.True(t, first.Liked)

	recorder, replayed := like("retry-1")
	assert.Equal(t, "true", recorder.Header().Get(constants.HeaderIdempotentReplayed))
	assert.Equal(t, first, replayed)

	stored, err := repository.FindByID(t.Context(), lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount)

	_, second := like("retry-2")
	assert.False(t, second.Liked)
	assert.Equal(t, 0, second.LikesCount)
}

func TestHandler_Report(t *testing.T) {
	router, service, _, reporter := newTestRouter(t)
	lesson := mustCreate(t, service, alice, "Fairness")

	request := httptest.NewRequest(http.MethodPost, "/lessons/"+lesson.ID+"/report", strings.NewReader(`{"reason":"spam"}`))
	recorder, body := serve(t, router, request, bob)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "Report submitted", body.Message)
	assert.Equal(t, []string{"spam"}, reporter.reasons)

	request = httptest.NewRequest(http.MethodPost, "/lessons/"+lesson.ID+"/report", strings.NewReader(`{"reason":""}`))
	recorder, _ = serve(t, router, request, bob)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_AdminRoutes(t *testing.T) {
	router, service, _, _ := newTestRouter(t)
	lesson := mustCreate(t, service, alice, "Balance")

	request := httptest.NewRequest(http.MethodPatch, "/admin/lessons/"+lesson.ID, strings.NewReader(`{"isReviewed":true}`))
	recorder, _ := serve(t, router, request, bob)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	request = httptest.NewRequest(http.MethodPatch, "/admin/lessons/"+lesson.ID, strings.NewReader(`{"isReviewed":true}`))
	recorder, body := serve(t, router, request, admin)
	require.Equal(t, http.StatusOK, recorder.Code)

	var moderated Lesson
	require.NoError(t, json.Unmarshal(body.Data, &moderated))
	assert.True(t, moderated.IsReviewed)

	recorder, body = serve(t, router, httptest.NewRequest(http.MethodDelete, "/admin/lessons/"+lesson.ID, nil), admin)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Lesson deleted", body.Message)

	recorder, _ = serve(t, router, httptest.NewRequest(http.MethodGet, "/admin/lessons?flagged=true", nil), admin)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
