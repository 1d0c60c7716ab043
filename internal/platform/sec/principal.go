// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Principal is the view of an authenticated member that cross-cutting code
// (middleware, request helpers, logging) is allowed to depend on.
type Principal interface {
	ID() int32
	DisplayName() string
	Permissions() Permissions
}

// TokenCredentials are the raw tokens presented with a request.
type TokenCredentials struct {
	// AccessToken is the bearer token or access token cookie value.
	AccessToken string

	// CSRFToken is the double-submit token, empty when none was sent.
	CSRFToken string

	// RequireCSRF makes a missing CSRF token an authentication failure.
	RequireCSRF bool
}
