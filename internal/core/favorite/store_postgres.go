// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package favorite

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lessons/internal/core/lesson"
	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/database/schema"
	"github.com/taibuivan/lessons/internal/platform/dberr"
	"github.com/taibuivan/lessons/internal/platform/postgres"
	"github.com/taibuivan/lessons/pkg/uuid"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres favorite ledger.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	favorite    = schema.CoreFavorite
	lessonTable = schema.CoreLesson
	account     = schema.UserAccount
)

func (repository *PostgresRepository) Toggle(context context.Context, id, uid, lessonID string) (*ToggleResult, error) {
	exists := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, lessonTable.Table, lessonTable.ID)

	remove := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		favorite.Table, favorite.UserID, favorite.LessonID)

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		favorite.Table, favorite.ID, favorite.UserID, favorite.LessonID,
		favorite.UserID, favorite.LessonID,
	)

	bumpLesson := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = GREATEST(0, %[2]s + $2), %[3]s = NOW()
		WHERE %[4]s = $1`,
		lessonTable.Table, lessonTable.FavoritesCount, lessonTable.UpdatedAt, lessonTable.ID,
	)

	// The caller is provisioned, so the insert branch only covers a missing row.
	bumpUser := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s) VALUES ($1, $2, GREATEST(0, $3::int))
		ON CONFLICT (%[3]s) DO UPDATE
		SET %[4]s = GREATEST(0, %[1]s.%[4]s + $3::int), %[5]s = NOW()`,
		account.Table, account.ID, account.UID, account.TotalFavorites, account.UpdatedAt,
	)

	reread := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		lessonTable.FavoritesCount, lessonTable.Table, lessonTable.ID)

	result := &ToggleResult{}

	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {

		// 1. Existence
		var found bool
		if err := transaction.QueryRow(context, exists, lessonID).Scan(&found); err != nil {
			return dberr.Wrap(err, "check_lesson_exists")
		}
		if !found {
			return apperr.NotFound("Lesson")
		}

		// 2. Membership
		delta := 0
		tag, err := transaction.Exec(context, remove, uid, lessonID)
		if err != nil {
			return dberr.Wrap(err, "delete_favorite")
		}

		if tag.RowsAffected() > 0 {
			delta = -1
		} else {
			tag, err = transaction.Exec(context, insert, id, uid, lessonID)
			if err != nil {
				return dberr.Wrap(err, "insert_favorite")
			}
			result.Favorited = true

			// A concurrent toggle already inserted the pair and counted it.
			if tag.RowsAffected() > 0 {
				delta = 1
			}
		}

		// 3. Counters
		if delta != 0 {
			if _, err := transaction.Exec(context, bumpLesson, lessonID, delta); err != nil {
				return dberr.Wrap(err, "adjust_lesson_favorites")
			}
			if _, err := transaction.Exec(context, bumpUser, uuid.New(), uid, delta); err != nil {
				return dberr.Wrap(err, "adjust_user_favorites")
			}
		}

		// 4. Re-read
		if err := transaction.QueryRow(context, reread, lessonID).Scan(&result.FavoritesCount); err != nil {
			return dberr.WrapNotFound(err, "reread_lesson_favorites", "Lesson")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (repository *PostgresRepository) ListByUser(context context.Context, uid string) ([]*Entry, error) {
	query := fmt.Sprintf(`
		SELECT f.%s, f.%s, f.%s, f.%s, %s
		FROM %s f
		JOIN %s l ON l.%s = f.%s
		WHERE f.%s = $1
		ORDER BY f.%s DESC`,
		favorite.ID, favorite.UserID, favorite.LessonID, favorite.CreatedAt,
		schema.Prefixed("l", lessonTable.Columns()),
		favorite.Table, lessonTable.Table, lessonTable.ID, favorite.LessonID,
		favorite.UserID, favorite.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, uid)
	if err != nil {
		return nil, dberr.Wrap(err, "list_user_favorites")
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry := &Entry{Lesson: &lesson.Lesson{}}
		item := entry.Lesson

		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.LessonID, &entry.CreatedAt,
			&item.ID, &item.Title, &item.Description, &item.Category, &item.EmotionalTone,
			&item.ImageURL, &item.Visibility, &item.AccessLevel,
			&item.CreatorUID, &item.CreatorName, &item.CreatorPhoto,
			&item.Likes, &item.LikesCount, &item.FavoritesCount, &item.ReportsCount,
			&item.IsFeatured, &item.IsReviewed, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_user_favorite")
		}
		entries = append(entries, entry)
	}

	return entries, dberr.Wrap(rows.Err(), "iterate_user_favorites")
}
