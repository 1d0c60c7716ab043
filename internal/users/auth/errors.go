// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"fmt"

	"github.com/taibuivan/rankboard/internal/platform/apperr"
)

// # Error Taxonomy

var (
	// ErrUnauthorized is the single outward signal for every credential
	// problem: bad or expired token, unknown member, CSRF mismatch, wrong
	// password. It is never wrapped or specialised so that responses cannot
	// reveal which check failed.
	ErrUnauthorized = apperr.Unauthorized("Authorization required")

	// ErrMalformedCredentialState marks a member row with neither a complete
	// password credential nor a complete federated one, or whose permissions
	// do not fit the bitfield. It indicates data corruption, not a bad request.
	ErrMalformedCredentialState = errors.New("auth: malformed credential state")

	// ErrUserNotFound is returned by [UserStore] implementations when no row matches.
	ErrUserNotFound = errors.New("auth: user not found")
)

func malformed(memberID int32) error {
	return fmt.Errorf("%w: member %d", ErrMalformedCredentialState, memberID)
}
