// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away token transport and common body decoding patterns, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taibuivan/rankboard/internal/platform/apperr"
	"github.com/taibuivan/rankboard/internal/platform/constants"
	"github.com/taibuivan/rankboard/internal/platform/ctxutil"
	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if len(header) < len(constants.BearerPrefix) || !strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(constants.BearerPrefix):])
}

// CookieToken returns the access token cookie value, or "".
func CookieToken(request *http.Request) string {
	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// IsSafeMethod reports whether the method cannot change server state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

/*
Credentials collects the tokens presented with a request.

Description: A bearer header takes precedence over the cookie. Cookie-borne
tokens are sent by browsers automatically, so an unsafe method carrying one
must also present the CSRF header.

Returns:
  - sec.TokenCredentials: AccessToken is empty for anonymous requests
*/
func Credentials(request *http.Request) sec.TokenCredentials {
	credentials := sec.TokenCredentials{
		CSRFToken: strings.TrimSpace(request.Header.Get(constants.CSRFTokenHeader)),
	}

	if token := BearerToken(request); token != "" {
		credentials.AccessToken = token
		return credentials
	}

	if token := CookieToken(request); token != "" {
		credentials.AccessToken = token
		credentials.RequireCSRF = !IsSafeMethod(request.Method)
	}

	return credentials
}

/*
Principal extracts the authenticated member from the request context.

Returns nil if the request is not authenticated.
*/
func Principal(request *http.Request) sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns the member.

Returns:
  - sec.Principal: The authenticated member
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredPrincipal(request *http.Request) (sec.Principal, error) {

	// Get the member
	principal := ctxutil.GetPrincipal(request.Context())

	// If the member is not authenticated, return an error
	if principal == nil {
		return nil, apperr.Unauthorized("Authorization required")
	}

	return principal, nil
}
