// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/database/schema"
	"github.com/taibuivan/lessons/internal/platform/dberr"
	"github.com/taibuivan/lessons/internal/platform/postgres"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/pkg/pointer"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres lesson store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	lessonTable = schema.CoreLesson
	account     = schema.UserAccount
	favorite    = schema.CoreFavorite
	report      = schema.CoreReport

	// lessonColumns matches the order expected by scanLesson.
	lessonColumns = schema.Prefixed("l", lessonTable.Columns())
)

// scanLesson hydrates a [Lesson] selected with lessonColumns, followed by any
// extra destinations.
func scanLesson(row pgx.Row, extra ...any) (*Lesson, error) {
	lesson := &Lesson{}
	destinations := append([]any{
		&lesson.ID, &lesson.Title, &lesson.Description, &lesson.Category, &lesson.EmotionalTone,
		&lesson.ImageURL, &lesson.Visibility, &lesson.AccessLevel,
		&lesson.CreatorUID, &lesson.CreatorName, &lesson.CreatorPhoto,
		&lesson.Likes, &lesson.LikesCount, &lesson.FavoritesCount, &lesson.ReportsCount,
		&lesson.IsFeatured, &lesson.IsReviewed, &lesson.CreatedAt, &lesson.UpdatedAt,
	}, extra...)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return lesson, nil
}

// collectLessons drains rows selected with lessonColumns.
func collectLessons(rows pgx.Rows, action string) ([]*Lesson, error) {
	defer rows.Close()

	lessons := make([]*Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		lessons = append(lessons, lesson)
	}

	return lessons, dberr.Wrap(rows.Err(), action)
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(input string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(input)
}

// # Creation

func (repository *PostgresRepository) Create(context context.Context, lesson *Lesson) error {
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s, %s, %s`,
		lessonTable.Table,
		lessonTable.ID, lessonTable.Title, lessonTable.Description, lessonTable.Category, lessonTable.EmotionalTone,
		lessonTable.ImageURL, lessonTable.Visibility, lessonTable.AccessLevel,
		lessonTable.CreatorUID, lessonTable.CreatorName, lessonTable.CreatorPhoto,
		lessonTable.Likes, lessonTable.CreatedAt, lessonTable.UpdatedAt,
	)

	bump := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = NOW() WHERE %s = $1`,
		account.Table, account.TotalLessons, account.TotalLessons, account.UpdatedAt, account.UID)

	return postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {
		err := transaction.QueryRow(context, insert,
			lesson.ID, lesson.Title, lesson.Description, lesson.Category, lesson.EmotionalTone,
			lesson.ImageURL, lesson.Visibility, lesson.AccessLevel,
			lesson.CreatorUID, lesson.CreatorName, lesson.CreatorPhoto,
		).Scan(&lesson.Likes, &lesson.CreatedAt, &lesson.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "insert_lesson")
		}

		if _, err := transaction.Exec(context, bump, lesson.CreatorUID); err != nil {
			return dberr.Wrap(err, "increment_creator_lessons")
		}

		return nil
	})
}

// # Reads

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s l WHERE l.%s = $1`, lessonColumns, lessonTable.Table, lessonTable.ID)

	lesson, err := scanLesson(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "find_lesson", "Lesson")
	}
	return lesson, nil
}

func (repository *PostgresRepository) ListPublic(context context.Context, filter Filter, limit, offset int) ([]*Lesson, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s l WHERE l.%s = '%s'`,
		lessonColumns, lessonTable.Table, lessonTable.Visibility, VisibilityPublic))

	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", lessonTable.Category, argID))
		args = append(args, filter.Category)
		argID++
	}

	if filter.EmotionalTone != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", lessonTable.EmotionalTone, argID))
		args = append(args, filter.EmotionalTone)
		argID++
	}

	// Case-insensitive title search
	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s ILIKE '%%' || $%d || '%%'", lessonTable.Title, argID))
		args = append(args, escapeLike(filter.Search))
		argID++
	}

	order := fmt.Sprintf("l.%s DESC, l.%s DESC", lessonTable.CreatedAt, lessonTable.ID)
	if filter.Sort == SortMostSaved {
		order = fmt.Sprintf("l.%s DESC, ", lessonTable.FavoritesCount) + order
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", order, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_public_lessons")
	}
	defer rows.Close()

	lessons := make([]*Lesson, 0, limit)
	total := 0
	for rows.Next() {
		lesson, err := scanLesson(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_public_lesson")
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_public_lessons")
	}

	// An offset past the end yields no rows and therefore no window count.
	if len(lessons) == 0 && offset > 0 {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM (%s) AS page`,
			strings.SplitN(queryBuilder.String(), " ORDER BY ", 2)[0])
		if err := repository.pool.QueryRow(context, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, dberr.Wrap(err, "count_public_lessons")
		}
	}

	return lessons, total, nil
}

func (repository *PostgresRepository) ListFeatured(context context.Context, limit int) ([]*Lesson, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s l
		WHERE l.%s = '%s' AND l.%s
		ORDER BY l.%s DESC
		LIMIT $1`,
		lessonColumns, lessonTable.Table,
		lessonTable.Visibility, VisibilityPublic, lessonTable.IsFeatured,
		lessonTable.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_featured_lessons")
	}
	return collectLessons(rows, "scan_featured_lesson")
}

func (repository *PostgresRepository) TopContributors(context context.Context, limit int) ([]Contributor, error) {
	// Current profile wins; the snapshot on the lesson is the fallback.
	query := fmt.Sprintf(`
		SELECT l.%[1]s,
		       COALESCE(NULLIF(MAX(a.%[2]s), ''), MAX(l.%[3]s)),
		       COALESCE(NULLIF(MAX(a.%[4]s), ''), MAX(l.%[5]s)),
		       COUNT(*) AS total
		FROM %[6]s l
		LEFT JOIN %[7]s a ON a.%[8]s = l.%[1]s
		GROUP BY l.%[1]s
		ORDER BY total DESC, l.%[1]s ASC
		LIMIT $1`,
		lessonTable.CreatorUID, account.DisplayName, lessonTable.CreatorName,
		account.PhotoURL, lessonTable.CreatorPhoto,
		lessonTable.Table, account.Table, account.UID,
	)

	rows, err := repository.pool.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_top_contributors")
	}
	defer rows.Close()

	contributors := make([]Contributor, 0, limit)
	for rows.Next() {
		var contributor Contributor
		if err := rows.Scan(&contributor.UID, &contributor.Name, &contributor.PhotoURL, &contributor.TotalLessons); err != nil {
			return nil, dberr.Wrap(err, "scan_top_contributor")
		}
		contributors = append(contributors, contributor)
	}

	return contributors, dberr.Wrap(rows.Err(), "iterate_top_contributors")
}

func (repository *PostgresRepository) ListByCreator(context context.Context, uid string) ([]*Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s l WHERE l.%s = $1 ORDER BY l.%s DESC`,
		lessonColumns, lessonTable.Table, lessonTable.CreatorUID, lessonTable.CreatedAt)

	rows, err := repository.pool.Query(context, query, uid)
	if err != nil {
		return nil, dberr.Wrap(err, "list_creator_lessons")
	}
	return collectLessons(rows, "scan_creator_lesson")
}

// # Mutations

func (repository *PostgresRepository) Update(context context.Context, id string, input UpdateInput) (*Lesson, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s AS l SET %s = NOW()", lessonTable.Table, lessonTable.UpdatedAt))

	var args []any
	argID := 1

	set := func(column string, value any) {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if input.Title != nil {
		set(lessonTable.Title, *input.Title)
	}
	if input.Description != nil {
		set(lessonTable.Description, *input.Description)
	}
	if input.Category != nil {
		set(lessonTable.Category, *input.Category)
	}
	if input.EmotionalTone != nil {
		set(lessonTable.EmotionalTone, *input.EmotionalTone)
	}
	if input.ImageURL != nil {
		set(lessonTable.ImageURL, *input.ImageURL)
	}
	if input.Visibility != nil {
		set(lessonTable.Visibility, string(*input.Visibility))
	}
	if input.AccessLevel != nil {
		set(lessonTable.AccessLevel, string(*input.AccessLevel))
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE l.%s = $%d RETURNING %s", lessonTable.ID, argID, lessonColumns))
	args = append(args, id)

	lesson, err := scanLesson(repository.pool.QueryRow(context, queryBuilder.String(), args...))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "update_lesson", "Lesson")
	}
	return lesson, nil
}

func (repository *PostgresRepository) ToggleLike(context context.Context, id, uid string) (*LikeResult, error) {
	// SET expressions see the old row; RETURNING sees the new one.
	query := fmt.Sprintf(`
		UPDATE %[1]s SET
			%[2]s = CASE WHEN $2::text = ANY(%[2]s) THEN array_remove(%[2]s, $2::text) ELSE array_append(%[2]s, $2::text) END,
			%[3]s = CASE WHEN $2::text = ANY(%[2]s) THEN %[3]s - 1 ELSE %[3]s + 1 END,
			%[4]s = NOW()
		WHERE %[5]s = $1
		RETURNING $2::text = ANY(%[2]s), %[3]s`,
		lessonTable.Table, lessonTable.Likes, lessonTable.LikesCount, lessonTable.UpdatedAt, lessonTable.ID,
	)

	result := &LikeResult{}
	if err := repository.pool.QueryRow(context, query, id, uid).Scan(&result.Liked, &result.LikesCount); err != nil {
		return nil, dberr.WrapNotFound(err, "toggle_lesson_like", "Lesson")
	}
	return result, nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) (*CascadeResult, error) {
	removeLesson := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		lessonTable.Table, lessonTable.ID, lessonTable.CreatorUID)

	releaseFavoriters := fmt.Sprintf(`
		UPDATE %[1]s AS a SET %[2]s = GREATEST(0, a.%[2]s - 1), %[3]s = NOW()
		FROM %[4]s f
		WHERE f.%[5]s = $1 AND f.%[6]s = a.%[7]s`,
		account.Table, account.TotalFavorites, account.UpdatedAt,
		favorite.Table, favorite.LessonID, favorite.UserID, account.UID,
	)

	removeFavorites := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, favorite.Table, favorite.LessonID)
	removeReports := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, report.Table, report.LessonID)

	releaseCreator := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = GREATEST(0, %[2]s - 1), %[3]s = NOW() WHERE %[4]s = $1`,
		account.Table, account.TotalLessons, account.UpdatedAt, account.UID)

	result := &CascadeResult{}

	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {

		// 1. Existence gate
		var creatorUID string
		if err := transaction.QueryRow(context, removeLesson, id).Scan(&creatorUID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Lesson")
			}
			return dberr.Wrap(err, "delete_lesson")
		}

		// 2. Dependents, in one round trip
		batch := &pgx.Batch{}
		batch.Queue(releaseFavoriters, id)
		batch.Queue(removeFavorites, id)
		batch.Queue(removeReports, id)
		batch.Queue(releaseCreator, creatorUID)

		results := transaction.SendBatch(context, batch)

		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "release_favoriter_counters")
		}

		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "delete_lesson_favorites")
		}
		result.FavoritesRemoved = tag.RowsAffected()

		tag, err = results.Exec()
		if err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "delete_lesson_reports")
		}
		result.ReportsRemoved = tag.RowsAffected()

		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return dberr.Wrap(err, "release_creator_counter")
		}

		return dberr.Wrap(results.Close(), "close_cascade_batch")
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// # Administration

func (repository *PostgresRepository) ListAdmin(context context.Context, filter AdminFilter, limit, offset int) ([]*AdminLesson, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
		       a.%s, a.%s, a.%s, a.%s, a.%s, a.%s, a.%s,
		       COUNT(*) OVER() AS total_count
		FROM %s l
		LEFT JOIN %s a ON a.%s = l.%s
		WHERE TRUE`,
		lessonColumns,
		account.ID, account.UID, account.Email, account.DisplayName, account.PhotoURL, account.Role, account.IsPremium,
		lessonTable.Table, account.Table, account.UID, lessonTable.CreatorUID,
	))

	if filter.Visibility != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", lessonTable.Visibility, argID))
		args = append(args, filter.Visibility)
		argID++
	}

	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", lessonTable.Category, argID))
		args = append(args, filter.Category)
		argID++
	}

	if filter.AccessLevel != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", lessonTable.AccessLevel, argID))
		args = append(args, filter.AccessLevel)
		argID++
	}

	if filter.Flagged {
		queryBuilder.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM %s r WHERE r.%s = l.%s)",
			report.Table, report.LessonID, lessonTable.ID))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY l.%s DESC, l.%s DESC LIMIT $%d OFFSET $%d",
		lessonTable.CreatedAt, lessonTable.ID, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_admin_lessons")
	}
	defer rows.Close()

	lessons := make([]*AdminLesson, 0, limit)
	total := 0
	for rows.Next() {
		var (
			creatorID, creatorUID, email, displayName, photoURL, role *string
			isPremium                                                 *bool
		)

		lesson, err := scanLesson(rows, &creatorID, &creatorUID, &email, &displayName, &photoURL, &role, &isPremium, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_admin_lesson")
		}

		item := &AdminLesson{Lesson: lesson}
		if creatorID != nil {
			item.Creator = &Creator{
				ID:          *creatorID,
				UID:         pointer.Val(creatorUID),
				Email:       pointer.Val(email),
				DisplayName: pointer.Val(displayName),
				PhotoURL:    pointer.Val(photoURL),
				Role:        sec.UserRole(pointer.Val(role)),
				IsPremium:   isPremium != nil && *isPremium,
			}
		}
		lessons = append(lessons, item)
	}

	return lessons, total, dberr.Wrap(rows.Err(), "iterate_admin_lessons")
}

func (repository *PostgresRepository) Moderate(context context.Context, id string, input ModerationInput) (*Lesson, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s AS l SET
			%[2]s = COALESCE($2, l.%[2]s),
			%[3]s = COALESCE($3, l.%[3]s),
			%[4]s = NOW()
		WHERE l.%[5]s = $1
		RETURNING %[6]s`,
		lessonTable.Table, lessonTable.IsFeatured, lessonTable.IsReviewed, lessonTable.UpdatedAt, lessonTable.ID, lessonColumns,
	)

	lesson, err := scanLesson(repository.pool.QueryRow(context, query, id, input.IsFeatured, input.IsReviewed))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "moderate_lesson", "Lesson")
	}
	return lesson, nil
}

func (repository *PostgresRepository) RepairCounters(context context.Context, id string) (*Lesson, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s AS l SET
			%[2]s = (SELECT COUNT(*) FROM %[4]s f WHERE f.%[5]s = l.%[8]s),
			%[3]s = (SELECT COUNT(*) FROM %[6]s r WHERE r.%[7]s = l.%[8]s),
			%[9]s = NOW()
		WHERE l.%[8]s = $1
		RETURNING %[10]s`,
		lessonTable.Table, lessonTable.FavoritesCount, lessonTable.ReportsCount,
		favorite.Table, favorite.LessonID, report.Table, report.LessonID,
		lessonTable.ID, lessonTable.UpdatedAt, lessonColumns,
	)

	lesson, err := scanLesson(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "repair_lesson_counters", "Lesson")
	}
	return lesson, nil
}
