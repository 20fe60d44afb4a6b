// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pgtest opens the integration database used by store tests.

Tests run only when DATABASE_URL is set. Every caller gets a freshly
migrated, empty schema. A session advisory lock serializes callers across
packages that share the database.
*/
package pgtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/internal/platform/database/schema"
	"github.com/taibuivan/lessons/internal/platform/migration"
	"github.com/taibuivan/lessons/internal/platform/postgres"
)

// lockKey identifies the advisory lock shared by all store tests.
const lockKey = 7_310_2026

// Open returns a pool on an empty, migrated database, or skips t.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Held on a dedicated connection until the test ends.
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		conn.Release()
	})

	require.NoError(t, migration.RunUp(dsn, "", logger))

	_, err = pool.Exec(ctx, fmt.Sprintf(`TRUNCATE %s, %s, %s, %s`,
		schema.CoreReport.Table, schema.CoreFavorite.Table, schema.CoreLesson.Table, schema.UserAccount.Table))
	require.NoError(t, err)

	return pool
}

// Count runs a single-value COUNT query.
func Count(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()

	var total int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&total))
	return total
}
