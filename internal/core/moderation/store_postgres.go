// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/database/schema"
	"github.com/taibuivan/lessons/internal/platform/dberr"
	"github.com/taibuivan/lessons/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres moderation store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	report       = schema.CoreReport
	lessonTable  = schema.CoreLesson
	accountTable = schema.UserAccount

	reportColumns = schema.Prefixed("r", report.Columns())
)

func scanReport(row pgx.Row) (*Report, error) {
	item := &Report{}
	err := row.Scan(
		&item.ID, &item.LessonID, &item.ReporterUID, &item.ReporterEmail, &item.Reason,
		&item.Resolved, &item.Status, &item.HandledBy, &item.HandledAt, &item.CreatedAt,
	)
	return item, err
}

// # Ledger

func (repository *PostgresRepository) Submit(context context.Context, item *Report) error {
	bump := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[2]s + 1, %[3]s = NOW() WHERE %[4]s = $1`,
		lessonTable.Table, lessonTable.ReportsCount, lessonTable.UpdatedAt, lessonTable.ID)

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`,
		report.Table, report.ID, report.LessonID, report.ReporterUID, report.ReporterEmail, report.Reason,
		report.CreatedAt,
	)

	return postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {

		// The counter update doubles as the existence gate and locks the lesson row.
		tag, err := transaction.Exec(context, bump, item.LessonID)
		if err != nil {
			return dberr.Wrap(err, "increment_lesson_reports")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Lesson")
		}

		err = transaction.QueryRow(context, insert,
			item.ID, item.LessonID, item.ReporterUID, item.ReporterEmail, item.Reason,
		).Scan(&item.CreatedAt)
		return dberr.Wrap(err, "insert_report")
	})
}

func (repository *PostgresRepository) Resolve(context context.Context, lessonID, handledBy string, status Status) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE, %s = $3, %s = $2, %s = NOW()
		WHERE %s = $1 AND NOT %s`,
		report.Table, report.Resolved, report.Status, report.HandledBy, report.HandledAt,
		report.LessonID, report.Resolved,
	)

	tag, err := repository.pool.Exec(context, query, lessonID, handledBy, string(status))
	if err != nil {
		return 0, dberr.Wrap(err, "resolve_reports")
	}
	return tag.RowsAffected(), nil
}

// # Aggregator

func (repository *PostgresRepository) count(context context.Context, action, query string, args ...any) (int, error) {
	var total int
	if err := repository.pool.QueryRow(context, query, args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, action)
	}
	return total, nil
}

func (repository *PostgresRepository) CountUsers(context context.Context) (int, error) {
	return repository.count(context, "count_users", fmt.Sprintf(`SELECT COUNT(*) FROM %s`, accountTable.Table))
}

func (repository *PostgresRepository) CountLessons(context context.Context) (int, error) {
	return repository.count(context, "count_lessons", fmt.Sprintf(`SELECT COUNT(*) FROM %s`, lessonTable.Table))
}

func (repository *PostgresRepository) CountPublicLessons(context context.Context) (int, error) {
	return repository.count(context, "count_public_lessons",
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = 'public'`, lessonTable.Table, lessonTable.Visibility))
}

func (repository *PostgresRepository) CountReportedLessons(context context.Context) (int, error) {
	return repository.count(context, "count_reported_lessons",
		fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s`, report.LessonID, report.Table))
}

func (repository *PostgresRepository) CountLessonsSince(context context.Context, since time.Time) (int, error) {
	return repository.count(context, "count_lessons_since",
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s >= $1`, lessonTable.Table, lessonTable.CreatedAt), since)
}

func (repository *PostgresRepository) TopContributors(context context.Context, limit int) ([]Contributor, error) {
	query := fmt.Sprintf(`
		SELECT a.%[1]s, a.%[2]s, a.%[3]s, ranked.total
		FROM (
			SELECT %[4]s AS uid, COUNT(*) AS total
			FROM %[5]s
			GROUP BY %[4]s
		) ranked
		JOIN %[6]s a ON a.%[1]s = ranked.uid
		ORDER BY ranked.total DESC, a.%[1]s ASC
		LIMIT $1`,
		accountTable.UID, accountTable.DisplayName, accountTable.PhotoURL,
		lessonTable.CreatorUID, lessonTable.Table, accountTable.Table,
	)

	rows, err := repository.pool.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_top_contributors")
	}
	defer rows.Close()

	contributors := make([]Contributor, 0, limit)
	for rows.Next() {
		var contributor Contributor
		if err := rows.Scan(&contributor.UID, &contributor.DisplayName, &contributor.PhotoURL, &contributor.TotalLessons); err != nil {
			return nil, dberr.Wrap(err, "scan_top_contributor")
		}
		contributors = append(contributors, contributor)
	}

	return contributors, dberr.Wrap(rows.Err(), "iterate_top_contributors")
}

func (repository *PostgresRepository) ReportedLessons(context context.Context, limit, offset int) ([]*ReportedLesson, int, error) {
	// Reports whose lesson is gone are left out of the summary.
	query := fmt.Sprintf(`
		SELECT r.%[1]s, l.%[2]s,
		       COUNT(*) AS reportcount,
		       COUNT(*) FILTER (WHERE NOT r.%[3]s),
		       MAX(r.%[4]s) AS lastreportedat,
		       COUNT(*) OVER() AS total_count
		FROM %[5]s r
		JOIN %[6]s l ON l.%[7]s = r.%[1]s
		GROUP BY r.%[1]s, l.%[2]s
		ORDER BY reportcount DESC, lastreportedat DESC
		LIMIT $1 OFFSET $2`,
		report.LessonID, lessonTable.Title, report.Resolved, report.CreatedAt,
		report.Table, lessonTable.Table, lessonTable.ID,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reported_lessons")
	}
	defer rows.Close()

	summaries := make([]*ReportedLesson, 0, limit)
	total := 0
	for rows.Next() {
		summary := &ReportedLesson{}
		err := rows.Scan(&summary.LessonID, &summary.LessonTitle, &summary.ReportCount,
			&summary.PendingCount, &summary.LastReportedAt, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_reported_lesson")
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, dberr.Wrap(rows.Err(), "iterate_reported_lessons")
}

func (repository *PostgresRepository) LessonReports(context context.Context, lessonID string) (*LessonReports, error) {
	lookup := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		lessonTable.ID, lessonTable.Title, lessonTable.Table, lessonTable.ID)

	detail := &LessonReports{Reports: make([]*Report, 0)}
	if err := repository.pool.QueryRow(context, lookup, lessonID).Scan(&detail.Lesson.ID, &detail.Lesson.Title); err != nil {
		return nil, dberr.WrapNotFound(err, "find_reported_lesson", "Lesson")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s r WHERE r.%s = $1 ORDER BY r.%s DESC, r.%s DESC`,
		reportColumns, report.Table, report.LessonID, report.CreatedAt, report.ID)

	rows, err := repository.pool.Query(context, query, lessonID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_lesson_reports")
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanReport(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_lesson_report")
		}
		detail.Reports = append(detail.Reports, item)
	}

	return detail, dberr.Wrap(rows.Err(), "iterate_lesson_reports")
}

func (repository *PostgresRepository) Activity(context context.Context, uid string) (*Activity, error) {
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s), COUNT(*) FROM %s WHERE %s = $1`,
		report.LessonID, report.Table, report.HandledBy)

	activity := &Activity{}
	if err := repository.pool.QueryRow(context, query, uid).Scan(&activity.ModeratedLessons, &activity.TotalActions); err != nil {
		return nil, dberr.Wrap(err, "count_moderation_activity")
	}
	return activity, nil
}
