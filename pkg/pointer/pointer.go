// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer bridges nullable store columns and plain values.
package pointer

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, yielding the zero value for nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Present reports whether p is non-nil and points at a non-zero value.
// A NULL column and an empty string are treated alike.
func Present[T comparable](p *T) bool {
	var zero T
	return p != nil && *p != zero
}
