// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fold normalizes member display names for case-insensitive comparison.

Display names are unique regardless of case, so every lookup key derived from a
name (throttle buckets, in-memory indexes) must go through [Key] first.

Transformation Pipeline:

  - NFKC normalization (compatibility forms such as full-width letters collapse).
  - Unicode case folding rather than plain lower-casing.
  - Surrounding whitespace is trimmed.
*/
package fold

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key returns the canonical comparison form of a display name.
func Key(name string) string {
	normalized := norm.NFKC.String(strings.TrimSpace(name))
	return cases.Fold().String(normalized)
}

// Equal reports whether two display names are the same under case folding.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
