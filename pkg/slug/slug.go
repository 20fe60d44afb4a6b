// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slug folds free-form category labels into the stored vocabulary.

Lessons are filtered by exact category match, so "Self Growth", "self-growth"
and "ＳＥＬＦ　ＧＲＯＷＴＨ" must all land on the same key.
*/
package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps a category slug. Longer labels are cut at the last word boundary.
const MaxLength = 40

/*
Category converts a label into a lowercase ASCII slug.

Compatibility forms (full-width, ligatures) are folded and accents dropped.
Any run of other characters becomes a single hyphen. The result never starts
or ends with a hyphen and is at most [MaxLength] bytes.
*/
func Category(label string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, transform.RemoveFunc(isMark)), label)
	if err != nil {
		folded = label
	}

	var builder strings.Builder
	separate := false
	for _, r := range strings.ToLower(folded) {
		if r >= utf8.RuneSelf || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			separate = true
			continue
		}
		if separate && builder.Len() > 0 {
			builder.WriteByte('-')
		}
		separate = false
		builder.WriteRune(r)
	}

	return truncate(builder.String(), MaxLength)
}

// truncate shortens an ASCII slug, preferring to drop whole words.
func truncate(slug string, limit int) string {
	if len(slug) <= limit {
		return slug
	}
	if slug[limit] == '-' {
		return slug[:limit]
	}

	cut := slug[:limit]
	if boundary := strings.LastIndexByte(cut, '-'); boundary > 0 {
		return cut[:boundary]
	}
	return cut
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
