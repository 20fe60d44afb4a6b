// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lessons/pkg/slug"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces", "Self Growth", "self-growth"},
		{"padding", "  Mindset  ", "mindset"},
		{"accents", "Café & Résumé", "cafe-resume"},
		{"punctuation", "Relationships!!!", "relationships"},
		{"already_slug", "self-growth", "self-growth"},
		{"full_width", "ＳＥＬＦ　ＧＲＯＷＴＨ", "self-growth"},
		{"non_latin_separates", "work→life", "work-life"},
		{"only_separators", "---", ""},
		{"empty", "", ""},
		{"cut_at_word", "Mindfulness and emotional resilience at work and at home", "mindfulness-and-emotional-resilience-at"},
		{"cut_on_hyphen", strings.Repeat("a", slug.MaxLength) + " b", strings.Repeat("a", slug.MaxLength)},
		{"single_long_word", strings.Repeat("z", slug.MaxLength+10), strings.Repeat("z", slug.MaxLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slug.Category(tt.input)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), slug.MaxLength)
		})
	}
}
