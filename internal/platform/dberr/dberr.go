// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Wrap inspects a database error and classifies it.
//
// A missing row becomes notFound so that callers can map it to their own
// domain sentinel. Anything else is annotated with the failed action and
// returned with its cause intact.
func Wrap(err error, action string, notFound error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	// 2. Unknown query errors propagate as infrastructure failures
	return fmt.Errorf("%s: %w", action, err)
}
