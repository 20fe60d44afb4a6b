// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package favorite

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/internal/core/lesson"
	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

// # In-Memory Ledger

type pair struct{ uid, lessonID string }

type memoryRepository struct {
	mu             sync.Mutex
	ledger         map[pair]*Favorite
	lessons        map[string]*lesson.Lesson
	userFavorites  map[string]int
	toggleAttempts int
}

func newMemoryRepository(lessonIDs ...string) *memoryRepository {
	repository := &memoryRepository{
		ledger:        make(map[pair]*Favorite),
		lessons:       make(map[string]*lesson.Lesson),
		userFavorites: make(map[string]int),
	}
	for _, id := range lessonIDs {
		repository.lessons[id] = &lesson.Lesson{ID: id, Title: "Lesson " + id[len(id)-4:]}
	}
	return repository
}

func (repository *memoryRepository) Toggle(_ context.Context, id, uid, lessonID string) (*ToggleResult, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.toggleAttempts++

	item, ok := repository.lessons[lessonID]
	if !ok {
		return nil, apperr.NotFound("Lesson")
	}

	key := pair{uid, lessonID}
	if _, present := repository.ledger[key]; present {
		delete(repository.ledger, key)
		item.FavoritesCount = max(0, item.FavoritesCount-1)
		repository.userFavorites[uid] = max(0, repository.userFavorites[uid]-1)
		return &ToggleResult{Favorited: false, FavoritesCount: item.FavoritesCount}, nil
	}

	repository.ledger[key] = &Favorite{ID: id, UserID: uid, LessonID: lessonID, CreatedAt: time.Now()}
	item.FavoritesCount++
	repository.userFavorites[uid]++
	return &ToggleResult{Favorited: true, FavoritesCount: item.FavoritesCount}, nil
}

func (repository *memoryRepository) ListByUser(_ context.Context, uid string) ([]*Entry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	entries := make([]*Entry, 0)
	for key, row := range repository.ledger {
		if key.uid == uid {
			entries = append(entries, &Entry{Favorite: *row, Lesson: repository.lessons[key.lessonID]})
		}
	}
	return entries, nil
}

// countFor returns the ledger size for a lesson.
func (repository *memoryRepository) countFor(lessonID string) int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	count := 0
	for key := range repository.ledger {
		if key.lessonID == lessonID {
			count++
		}
	}
	return count
}

const lessonL = "0190c8a0-0000-7000-8000-00000000000a"

var (
	userA = &sec.Principal{UID: "uid-a"}
	userB = &sec.Principal{UID: "uid-b"}
)

func newTestService(lessonIDs ...string) (*Service, *memoryRepository) {
	repository := newMemoryRepository(lessonIDs...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, logger), repository
}

// # Tests

func TestToggle_Idempotence(t *testing.T) {
	service, repository := newTestService(lessonL)
	ctx := context.Background()

	first, err := service.Toggle(ctx, userA, lessonL)
	require.NoError(t, err)
	assert.True(t, first.Favorited)
	assert.Equal(t, 1, first.FavoritesCount)

	second, err := service.Toggle(ctx, userA, lessonL)
	require.NoError(t, err)
	assert.False(t, second.Favorited)
	assert.Equal(t, 0, second.FavoritesCount)

	assert.Equal(t, 0, repository.countFor(lessonL))
	assert.Equal(t, 0, repository.userFavorites["uid-a"])
}

func TestToggle_TwoUsersScenario(t *testing.T) {
	service, repository := newTestService(lessonL)
	ctx := context.Background()

	result, err := service.Toggle(ctx, userA, lessonL)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FavoritesCount)

	result, err = service.Toggle(ctx, userB, lessonL)
	require.NoError(t, err)
	assert.Equal(t, 2, result.FavoritesCount)

	result, err = service.Toggle(ctx, userA, lessonL)
	require.NoError(t, err)
	assert.False(t, result.Favorited)
	assert.Equal(t, 1, result.FavoritesCount)

	assert.Len(t, repository.ledger, 1)
	assert.Contains(t, repository.ledger, pair{"uid-b", lessonL})
	assert.Equal(t, repository.countFor(lessonL), repository.lessons[lessonL].FavoritesCount)
}

func TestToggle_CounterMatchesLedger(t *testing.T) {
	service, repository := newTestService(lessonL)
	ctx := context.Background()

	users := []*sec.Principal{userA, userB, {UID: "uid-c"}}
	for round := 0; round < 5; round++ {
		for i, user := range users {
			if (round+i)%2 == 0 {
				_, err := service.Toggle(ctx, user, lessonL)
				require.NoError(t, err)
			}
		}
		assert.Equal(t, repository.countFor(lessonL), repository.lessons[lessonL].FavoritesCount)
	}
}

func TestToggle_Validation(t *testing.T) {
	service, repository := newTestService(lessonL)
	ctx := context.Background()

	_, err := service.Toggle(ctx, userA, "xyz")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	assert.Zero(t, repository.toggleAttempts)

	_, err = service.Toggle(ctx, userA, "0190c8a0-0000-7000-8000-0000000000ff")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	// Upper-case ids resolve to the same pair.
	result, err := service.Toggle(ctx, userA, "0190C8A0-0000-7000-8000-00000000000A")
	require.NoError(t, err)
	assert.True(t, result.Favorited)
	assert.Contains(t, repository.ledger, pair{"uid-a", lessonL})
}

func TestMine(t *testing.T) {
	other := "0190c8a0-0000-7000-8000-00000000000b"
	service, _ := newTestService(lessonL, other)
	ctx := context.Background()

	_, err := service.Toggle(ctx, userA, lessonL)
	require.NoError(t, err)
	_, err = service.Toggle(ctx, userB, other)
	require.NoError(t, err)

	entries, err := service.Mine(ctx, userA)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, lessonL, entries[0].Lesson.ID)
}
