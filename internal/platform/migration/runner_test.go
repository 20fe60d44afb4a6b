// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lessons/data"
)

/*
TestConvertToPgx5DSN rewrites libpq URLs to the driver scheme.
*/
func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"postgres://u:p@db:5432/lessons", "pgx5://u:p@db:5432/lessons"},
		{"postgresql://db/lessons?sslmode=disable", "pgx5://db/lessons?sslmode=disable"},
		{"pgx5://db/lessons", "pgx5://db/lessons"},
		{"host=db dbname=lessons", "host=db dbname=lessons"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, convertToPgx5DSN(tt.in))
	}
}

/*
TestEmbeddedMigrations checks the binary carries a paired initial migration.
*/
func TestEmbeddedMigrations(t *testing.T) {
	source, err := iofs.New(data.Migrations, embeddedDir)
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, _, err := source.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()

	down, _, err := source.ReadDown(first)
	require.NoError(t, err)
	defer down.Close()
}
