// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column the stores touch, so SQL is
// assembled from one source of truth instead of scattered string literals.
package schema

import "strings"

// Prefixed qualifies columns with a table alias and joins them for a SELECT list.
//
//	Prefixed("l", []string{"id", "title"}) // "l.id, l.title"
func Prefixed(alias string, columns []string) string {
	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
