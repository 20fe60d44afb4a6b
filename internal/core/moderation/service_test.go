// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package moderation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/internal/users/account"
)

// # In-Memory Store

type storedLesson struct {
	title        string
	public       bool
	creatorUID   string
	createdAt    time.Time
	reportsCount int
}

type memoryRepository struct {
	mu      sync.Mutex
	users   map[string]*account.User
	lessons map[string]*storedLesson
	reports []*Report
	clock   time.Time
	failOn  string
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users:   make(map[string]*account.User),
		lessons: make(map[string]*storedLesson),
		clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (repository *memoryRepository) tick() time.Time {
	repository.clock = repository.clock.Add(time.Minute)
	return repository.clock
}

func (repository *memoryRepository) Submit(_ context.Context, item *Report) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	stored, ok := repository.lessons[item.LessonID]
	if !ok {
		return apperr.NotFound("Lesson")
	}
	stored.reportsCount++
	item.CreatedAt = repository.tick()
	copied := *item
	repository.reports = append(repository.reports, &copied)
	return nil
}

func (repository *memoryRepository) Resolve(_ context.Context, lessonID, handledBy string, status Status) (int64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	var modified int64
	now := repository.tick()
	for _, item := range repository.reports {
		if item.LessonID == lessonID && !item.Resolved {
			applied, by := status, handledBy
			item.Resolved, item.Status, item.HandledBy, item.HandledAt = true, &applied, &by, &now
			modified++
		}
	}
	return modified, nil
}

func (repository *memoryRepository) fail(name string) error {
	if repository.failOn == name {
		return errors.New(name + " unavailable")
	}
	return nil
}

func (repository *memoryRepository) CountUsers(context.Context) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.users), repository.fail("users")
}

func (repository *memoryRepository) CountLessons(context.Context) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.lessons), repository.fail("lessons")
}

func (repository *memoryRepository) CountPublicLessons(context.Context) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	count := 0
	for _, stored := range repository.lessons {
		if stored.public {
			count++
		}
	}
	return count, nil
}

func (repository *memoryRepository) CountReportedLessons(context.Context) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	distinct := map[string]struct{}{}
	for _, item := range repository.reports {
		distinct[item.LessonID] = struct{}{}
	}
	return len(distinct), nil
}

func (repository *memoryRepository) CountLessonsSince(_ context.Context, since time.Time) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	count := 0
	for _, stored := range repository.lessons {
		if !stored.createdAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (repository *memoryRepository) TopContributors(_ context.Context, limit int) ([]Contributor, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	counts := map[string]int{}
	for _, stored := range repository.lessons {
		counts[stored.creatorUID]++
	}
	contributors := make([]Contributor, 0)
	for uid, total := range counts {
		if user, ok := repository.users[uid]; ok {
			contributors = append(contributors, Contributor{UID: uid, DisplayName: user.DisplayName, TotalLessons: total})
		}
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].TotalLessons != contributors[j].TotalLessons {
			return contributors[i].TotalLessons > contributors[j].TotalLessons
		}
		return contributors[i].UID < contributors[j].UID
	})
	return contributors[:min(limit, len(contributors))], nil
}

func (repository *memoryRepository) ReportedLessons(_ context.Context, limit, offset int) ([]*ReportedLesson, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	grouped := map[string]*ReportedLesson{}
	for _, item := range repository.reports {
		stored, ok := repository.lessons[item.LessonID]
		if !ok {
			continue
		}
		summary, ok := grouped[item.LessonID]
		if !ok {
			summary = &ReportedLesson{LessonID: item.LessonID, LessonTitle: stored.title}
			grouped[item.LessonID] = summary
		}
		summary.ReportCount++
		if !item.Resolved {
			summary.PendingCount++
		}
		if item.CreatedAt.After(summary.LastReportedAt) {
			summary.LastReportedAt = item.CreatedAt
		}
	}
	summaries := make([]*ReportedLesson, 0, len(grouped))
	for _, summary := range grouped {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].ReportCount != summaries[j].ReportCount {
			return summaries[i].ReportCount > summaries[j].ReportCount
		}
		return summaries[i].LastReportedAt.After(summaries[j].LastReportedAt)
	})
	total := len(summaries)
	if offset >= total {
		return []*ReportedLesson{}, total, nil
	}
	return summaries[offset:min(offset+limit, total)], total, nil
}

func (repository *memoryRepository) LessonReports(_ context.Context, lessonID string) (*LessonReports, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	stored, ok := repository.lessons[lessonID]
	if !ok {
		return nil, apperr.NotFound("Lesson")
	}
	detail := &LessonReports{Lesson: LessonRef{ID: lessonID, Title: stored.title}, Reports: []*Report{}}
	for i := len(repository.reports) - 1; i >= 0; i-- {
		if repository.reports[i].LessonID == lessonID {
			detail.Reports = append(detail.Reports, repository.reports[i])
		}
	}
	return detail, nil
}

func (repository *memoryRepository) Activity(_ context.Context, uid string) (*Activity, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	activity := &Activity{}
	lessons := map[string]struct{}{}
	for _, item := range repository.reports {
		if item.HandledBy != nil && *item.HandledBy == uid {
			activity.TotalActions++
			lessons[item.LessonID] = struct{}{}
		}
	}
	activity.ModeratedLessons = len(lessons)
	return activity, nil
}

func (repository *memoryRepository) FindByUID(_ context.Context, uid string) (*account.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if user, ok := repository.users[uid]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

// # Fixtures

const (
	lessonL = "0190c8a0-0000-7000-8000-00000000000a"
	lessonM = "0190c8a0-0000-7000-8000-00000000000b"
)

var (
	reporter = &sec.Principal{UID: "uid-reader", Email: "reader@example.com", Role: sec.RoleUser}
	admin    = &sec.Principal{UID: "uid-admin", Email: "admin@example.com", Role: sec.RoleAdmin}
)

func seed(repository *memoryRepository) {
	midnight := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repository.users["uid-author"] = &account.User{UID: "uid-author", DisplayName: "Author"}
	repository.users["uid-admin"] = &account.User{UID: "uid-admin", DisplayName: "Admin", Role: sec.RoleAdmin}
	repository.lessons[lessonL] = &storedLesson{title: "Patience", public: true, creatorUID: "uid-author", createdAt: midnight.Add(time.Hour)}
	repository.lessons[lessonM] = &storedLesson{title: "Draft", creatorUID: "uid-author", createdAt: midnight.Add(-time.Hour)}
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *memoryRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repository := newMemoryRepository()
	seed(repository)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repository, repository, NewRedisStatsCache(client), Options{StatsTTL: ttl, Location: time.UTC}, logger)
	service.now = func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }

	return service, repository, mr
}

// # Tests

func TestReportScenario_ResolveAll(t *testing.T) {
	service, repository, _ := newTestService(t, 0)
	ctx := context.Background()

	for _, reason := range []string{"spam", "spam", "abuse"} {
		require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, reason))
	}
	assert.Equal(t, 3, repository.lessons[lessonL].reportsCount)

	result, err := service.Resolve(ctx, admin, lessonL, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ModifiedCount)
	assert.Equal(t, StatusIgnored, result.Status)

	for _, item := range repository.reports {
		assert.True(t, item.Resolved)
		require.NotNil(t, item.Status)
		assert.Equal(t, StatusIgnored, *item.Status)
		require.NotNil(t, item.HandledBy)
		assert.Equal(t, "uid-admin", *item.HandledBy)
	}
}

func TestResolve_IsOneWay(t *testing.T) {
	service, repository, _ := newTestService(t, 0)
	ctx := context.Background()

	require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, "spam"))
	_, err := service.Resolve(ctx, admin, lessonL, StatusRemoved)
	require.NoError(t, err)

	// A second pass only touches reports filed since.
	require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, "abuse"))
	result, err := service.Resolve(ctx, admin, lessonL, StatusWarned)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ModifiedCount)

	assert.Equal(t, StatusRemoved, *repository.reports[0].Status)
	assert.Equal(t, StatusWarned, *repository.reports[1].Status)

	result, err = service.Resolve(ctx, admin, lessonL, StatusIgnored)
	require.NoError(t, err)
	assert.Zero(t, result.ModifiedCount)
	for _, item := range repository.reports {
		assert.True(t, item.Resolved)
	}
	assert.Equal(t, 2, repository.lessons[lessonL].reportsCount)
}

func TestResolve_Guards(t *testing.T) {
	service, _, _ := newTestService(t, 0)
	ctx := context.Background()

	_, err := service.Resolve(ctx, reporter, lessonL, StatusIgnored)
	assert.True(t, apperr.HasCode(err, "FORBIDDEN"))

	_, err = service.Resolve(ctx, admin, lessonL, "deleted")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestSubmitReport_Validation(t *testing.T) {
	service, repository, _ := newTestService(t, 0)
	ctx := context.Background()

	err := service.SubmitReport(ctx, reporter, lessonL, "  ")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	err = service.SubmitReport(ctx, reporter, "0190c8a0-0000-7000-8000-0000000000ff", "spam")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	assert.Empty(t, repository.reports)
	assert.Zero(t, repository.lessons[lessonL].reportsCount)
}

func TestStats(t *testing.T) {
	service, _, _ := newTestService(t, 0)
	ctx := context.Background()

	require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, "spam"))
	require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, "spam"))
	require.NoError(t, service.SubmitReport(ctx, reporter, lessonM, "abuse"))

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalLessons)
	assert.Equal(t, 1, stats.TotalPublicLessons)
	assert.Equal(t, 2, stats.TotalReportedLessons)
	assert.Equal(t, 1, stats.TodaysNewLessons)

	require.Len(t, stats.MostActiveContributors, 1)
	assert.Equal(t, Contributor{UID: "uid-author", DisplayName: "Author", TotalLessons: 2}, stats.MostActiveContributors[0])
}

func TestStats_FailureCancelsAggregation(t *testing.T) {
	service, repository, _ := newTestService(t, 0)
	repository.failOn = "lessons"

	_, err := service.Stats(context.Background())
	assert.ErrorContains(t, err, "lessons unavailable")
}

func TestStats_Cache(t *testing.T) {
	service, repository, mr := newTestService(t, time.Minute)
	ctx := context.Background()

	first, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("moderation:stats"))

	repository.users["uid-new"] = &account.User{UID: "uid-new"}

	cached, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TotalUsers, cached.TotalUsers)

	refreshed, err := service.RefreshStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TotalUsers+1, refreshed.TotalUsers)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("moderation:stats"))
}

func TestStats_CacheOutageIsNotFatal(t *testing.T) {
	service, _, mr := newTestService(t, time.Minute)
	mr.SetError("LOADING server is loading")

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLessons)
}

func TestReportedLessonsAndDetail(t *testing.T) {
	service, _, _ := newTestService(t, 0)
	ctx := context.Background()

	require.NoError(t, service.SubmitReport(ctx, reporter, lessonM, "abuse"))
	require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, "spam"))
	require.NoError(t, service.SubmitReport(ctx, reporter, lessonL, "off-topic"))

	summaries, total, err := service.ReportedLessons(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, lessonL, summaries[0].LessonID)
	assert.Equal(t, 2, summaries[0].ReportCount)
	assert.Equal(t, 2, summaries[0].PendingCount)
	assert.Equal(t, "Patience", summaries[0].LessonTitle)

	detail, err := service.LessonReports(ctx, lessonL)
	require.NoError(t, err)
	require.Len(t, detail.Reports, 2)
	assert.Equal(t, "off-topic", detail.Reports[0].Reason)
	assert.Equal(t, "Patience", detail.Lesson.Title)

	_, err = service.LessonReports(ctx, "0190c8a0-0000-7000-8000-0000000000ff")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestProfile(t *testing.T) {
	service, _, _ := newTestService(t, 0)
	ctx := context.Background()

	for _, lessonID := range []string{lessonL, lessonL, lessonM} {
		require.NoError(t, service.SubmitReport(ctx, reporter, lessonID, "spam"))
	}
	_, err := service.Resolve(ctx, admin, lessonL, StatusRemoved)
	require.NoError(t, err)
	_, err = service.Resolve(ctx, admin, lessonM, StatusWarned)
	require.NoError(t, err)

	profile, err := service.Profile(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "Admin", profile.Profile.DisplayName)
	assert.Equal(t, Activity{ModeratedLessons: 2, TotalActions: 3}, profile.Moderation)

	_, err = service.Profile(ctx, reporter)
	assert.True(t, apperr.HasCode(err, "FORBIDDEN"))
}
