// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # Member Data Access

// Row is the member record as the store returns it. Credential columns are
// nullable; [IdentityFromRow] decides which variant the row describes.
type Row struct {
	ID                int32
	DisplayName       string
	Permissions       int32 // 16-bit field; wider values are rejected as malformed
	VerifiedEmail     *string
	PasswordDigest    *string
	ExternalAccountID *string
}

// UserStore defines the data access contract the authentication core needs.
//
// Implementations must report a missing member with [ErrUserNotFound] (wrapped
// or bare). Any other error is treated as an infrastructure failure and
// propagated unchanged.
type UserStore interface {

	/*
		FetchByID returns the member row with the given id.

		Parameters:
		  - ctx: context.Context
		  - id: int32

		Returns:
		  - Row: Member record
		  - error: ErrUserNotFound or retrieval failures
	*/
	FetchByID(ctx context.Context, id int32) (Row, error)

	/*
		FetchByName returns the member row with the given display name,
		compared case-insensitively.

		Parameters:
		  - ctx: context.Context
		  - name: string

		Returns:
		  - Row: Member record
		  - error: ErrUserNotFound or retrieval failures
	*/
	FetchByName(ctx context.Context, name string) (Row, error)

	/*
		PersistPasswordDigest replaces the member's password digest.

		Parameters:
		  - ctx: context.Context
		  - id: int32
		  - digest: string

		Returns:
		  - error: ErrUserNotFound or persistence failures
	*/
	PersistPasswordDigest(ctx context.Context, id int32, digest string) error
}

// # Password Hashing

// PasswordHasher produces and checks password digests. Digests must embed a
// random salt: they double as key material for [DeriveSigningSecret].
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// # Login Throttling

// LoginThrottle counts failed password logins per display name.
type LoginThrottle interface {

	/*
		Allow reports whether another login attempt may be made for name.

		Parameters:
		  - ctx: context.Context
		  - name: string

		Returns:
		  - bool: false while the name is locked out
		  - error: Backend failures
	*/
	Allow(ctx context.Context, name string) (bool, error)

	// RecordFailure counts one failed attempt for name.
	RecordFailure(ctx context.Context, name string) error

	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, name string) error
}
