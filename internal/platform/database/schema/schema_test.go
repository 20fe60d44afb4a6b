// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lessons/internal/platform/database/schema"
)

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "l.id, l.title", schema.Prefixed("l", []string{"id", "title"}))
	assert.Equal(t, "", schema.Prefixed("l", nil))
}

func TestColumns_MatchTable(t *testing.T) {
	assert.Len(t, schema.CoreLesson.Columns(), 19)
	assert.Contains(t, schema.CoreLesson.Columns(), "likescount")
	assert.Contains(t, schema.CoreReport.Columns(), "handledby")
	assert.Contains(t, schema.UserAccount.Columns(), "totalfavorites")
}
