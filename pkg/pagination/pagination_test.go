// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lessons/pkg/pagination"
)

/*
TestNewMeta checks page arithmetic and navigation flags.
*/
func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int
		totalPages int
		hasPrev    bool
		hasNext    bool
	}{
		{"empty_result", 1, 20, 0, 1, false, false},
		{"single_page", 1, 20, 5, 1, false, false},
		{"first_of_many", 1, 10, 25, 3, false, true},
		{"middle_page", 2, 10, 25, 3, true, true},
		{"last_page", 3, 10, 25, 3, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := pagination.NewMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
			assert.Equal(t, tt.hasPrev, meta.HasPrevPage)
			assert.Equal(t, tt.hasNext, meta.HasNextPage)
		})
	}
}

/*
TestFromRequestWithLimits verifies fallback and clamping of query values.
*/
func TestFromRequestWithLimits(t *testing.T) {
	tests := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", 1, 9},
		{"explicit", "?page=3&limit=5", 3, 5},
		{"garbage", "?page=abc&limit=xyz", 1, 9},
		{"negative", "?page=-2&limit=-1", 1, 9},
		{"over_max", "?limit=500", 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/lessons"+tt.query, nil)
			params := pagination.FromRequestWithLimits(request, 9, 50)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
		})
	}

	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
}
