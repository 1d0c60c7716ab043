// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys a request accumulates on its way to a
// handler: the correlation id, the request logger, and the member resolved
// from its access token.
package ctxkey

// key is unexported so no other package can read or overwrite these values.
type key string

const (
	// KeyRequestID carries the X-Request-ID value.
	KeyRequestID key = "request_id"

	// KeyPrincipal carries the resolved member ([sec.Principal]). Absent for
	// anonymous requests.
	KeyPrincipal key = "principal"

	// KeyLogger carries the request logger, tagged with member_id once a token
	// has resolved.
	KeyLogger key = "logger"
)
