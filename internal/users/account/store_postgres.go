// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for the user directory.

# Schema Table Mapping
  - users.account: identity, role, premium flag and denormalized counters.
  - core.lesson / core.favorite: ledgers read when counters are recomputed.
*/
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/database/schema"
	"github.com/taibuivan/lessons/internal/platform/dberr"
	"github.com/taibuivan/lessons/internal/platform/sec"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the directory.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	account = schema.UserAccount
	lesson  = schema.CoreLesson
	fav     = schema.CoreFavorite

	// accountColumns matches the order expected by scanUser.
	accountColumns = fmt.Sprintf(`a.%s, a.%s, COALESCE(a.%s, ''), a.%s, a.%s, a.%s, a.%s, a.%s, a.%s, a.%s, a.%s`,
		account.ID, account.UID, account.Email, account.DisplayName, account.PhotoURL, account.Role,
		account.IsPremium, account.TotalLessons, account.TotalFavorites, account.CreatedAt, account.UpdatedAt)
)

// scanUser hydrates a [User] from a row selected with accountColumns.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.UID, &user.Email, &user.DisplayName, &user.PhotoURL, &user.Role,
		&user.IsPremium, &user.TotalLessons, &user.TotalFavorites, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # Provisioning

// Provision only fills empty columns of an existing row; stored values belong to UpdateProfile.
func (repository *PostgresRepository) Provision(context context.Context, id string, identity *sec.Identity) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS a (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[4]s = COALESCE(a.%[4]s, EXCLUDED.%[4]s),
			%[5]s = CASE WHEN a.%[5]s = '' THEN EXCLUDED.%[5]s ELSE a.%[5]s END,
			%[6]s = CASE WHEN a.%[6]s = '' THEN EXCLUDED.%[6]s ELSE a.%[6]s END,
			%[7]s = NOW()
		WHERE (a.%[4]s IS NULL AND EXCLUDED.%[4]s IS NOT NULL)
		   OR (a.%[5]s = '' AND EXCLUDED.%[5]s <> '')
		   OR (a.%[6]s = '' AND EXCLUDED.%[6]s <> '')
		RETURNING %[8]s`,
		account.Table, account.ID, account.UID, account.Email, account.DisplayName, account.PhotoURL,
		account.UpdatedAt, accountColumns,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query,
		id, identity.UID, identity.Email, identity.Name, identity.Picture))

	// Nothing to back-fill: the conflict branch returned no row.
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.FindByUID(context, identity.UID)
	}
	if err != nil {
		return nil, dberr.Wrap(err, "provision_account")
	}

	return user, nil
}

// # Lookups

func (repository *PostgresRepository) FindByUID(context context.Context, uid string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s a WHERE a.%s = $1`, accountColumns, account.Table, account.UID)

	user, err := scanUser(repository.pool.QueryRow(context, query, uid))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "find_account_by_uid", "User")
	}
	return user, nil
}

func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s a WHERE a.%s = $1`, accountColumns, account.Table, account.Email)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "find_account_by_email", "User")
	}
	return user, nil
}

// # Counters

func (repository *PostgresRepository) RecountTotals(context context.Context, uid string) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s AS a SET
			%[2]s = (SELECT COUNT(*) FROM %[5]s l WHERE l.%[6]s = a.%[4]s),
			%[3]s = (SELECT COUNT(*) FROM %[7]s f WHERE f.%[8]s = a.%[4]s),
			%[9]s = NOW()
		WHERE a.%[4]s = $1
		RETURNING %[10]s`,
		account.Table, account.TotalLessons, account.TotalFavorites, account.UID,
		lesson.Table, lesson.CreatorUID, fav.Table, fav.UserID,
		account.UpdatedAt, accountColumns,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, uid))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "recount_account_totals", "User")
	}
	return user, nil
}

func (repository *PostgresRepository) Dashboard(context context.Context, uid string, recent int) (*Dashboard, error) {
	dashboard := &Dashboard{RecentLessons: make([]RecentLesson, 0, recent)}

	countQuery := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s WHERE %s = $1),
			(SELECT COUNT(*) FROM %s WHERE %s = $1)`,
		lesson.Table, lesson.CreatorUID, fav.Table, fav.UserID,
	)
	if err := repository.pool.QueryRow(context, countQuery, uid).Scan(&dashboard.TotalLessons, &dashboard.TotalFavorites); err != nil {
		return nil, dberr.Wrap(err, "dashboard_counts")
	}

	recentQuery := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2`,
		lesson.ID, lesson.Title, lesson.CreatedAt, lesson.Table, lesson.CreatorUID, lesson.CreatedAt)

	rows, err := repository.pool.Query(context, recentQuery, uid, recent)
	if err != nil {
		return nil, dberr.Wrap(err, "dashboard_recent_lessons")
	}
	defer rows.Close()

	for rows.Next() {
		var item RecentLesson
		if err := rows.Scan(&item.ID, &item.Title, &item.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_recent_lesson")
		}
		dashboard.RecentLessons = append(dashboard.RecentLessons, item)
	}

	return dashboard, dberr.Wrap(rows.Err(), "iterate_recent_lessons")
}

// # Mutations

func (repository *PostgresRepository) UpdateProfile(context context.Context, uid string, input UpdateProfileInput) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s AS a SET
			%[2]s = COALESCE($2, a.%[2]s),
			%[3]s = COALESCE($3, a.%[3]s),
			%[4]s = NOW()
		WHERE a.%[5]s = $1
		RETURNING %[6]s`,
		account.Table, account.DisplayName, account.PhotoURL, account.UpdatedAt, account.UID, accountColumns,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, uid, input.DisplayName, input.PhotoURL))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "update_account_profile", "User")
	}
	return user, nil
}

func (repository *PostgresRepository) UpdateRole(context context.Context, id string, role sec.UserRole) (*User, error) {
	query := fmt.Sprintf(`UPDATE %s AS a SET %s = $2, %s = NOW() WHERE a.%s = $1 RETURNING %s`,
		account.Table, account.Role, account.UpdatedAt, account.ID, accountColumns)

	user, err := scanUser(repository.pool.QueryRow(context, query, id, string(role)))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "update_account_role", "User")
	}
	return user, nil
}

func (repository *PostgresRepository) SetPremium(context context.Context, uid string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1`,
		account.Table, account.IsPremium, account.UpdatedAt, account.UID)

	tag, err := repository.pool.Exec(context, query, uid)
	if err != nil {
		return dberr.Wrap(err, "set_account_premium")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// # Listing

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, account.Table)
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_accounts")
	}

	// totallessons is replaced by a live count from the ledger.
	query := fmt.Sprintf(`
		SELECT a.%[1]s, a.%[2]s, COALESCE(a.%[3]s, ''), a.%[4]s, a.%[5]s, a.%[6]s, a.%[7]s,
		       (SELECT COUNT(*) FROM %[12]s l WHERE l.%[13]s = a.%[2]s),
		       a.%[8]s, a.%[9]s, a.%[10]s
		FROM %[11]s a
		ORDER BY a.%[9]s DESC, a.%[1]s DESC
		LIMIT $1 OFFSET $2`,
		account.ID, account.UID, account.Email, account.DisplayName, account.PhotoURL, account.Role,
		account.IsPremium, account.TotalFavorites, account.CreatedAt, account.UpdatedAt,
		account.Table, lesson.Table, lesson.CreatorUID,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_accounts")
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_account")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_accounts")
	}

	return users, total, nil
}
