// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultAccessTokenTTL is how long an access token stays valid when no
	// TTL is configured. Long enough that members rarely have to log in again;
	// credential changes are what actually revoke tokens.
	DefaultAccessTokenTTL = 30 * 24 * time.Hour

	// DefaultTokenLeeway absorbs clock skew between API replicas.
	DefaultTokenLeeway = 30 * time.Second

	// LoginFailureLimit is the number of failed password logins that locks a name.
	LoginFailureLimit = 7

	// LoginLockout is the window failures are counted in, and the lockout length.
	LoginLockout = 15 * time.Minute

	// MinPasswordLength applies to new passwords only.
	MinPasswordLength = 10

	// MaxPasswordLength is the bcrypt input limit.
	MaxPasswordLength = 72
)

// # Field Identifiers

const (
	FieldName            = "name"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)
