// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/rankboard/internal/platform/apperr"
	"github.com/taibuivan/rankboard/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/rankboard/internal/platform/request"
	"github.com/taibuivan/rankboard/internal/platform/respond"
	"github.com/taibuivan/rankboard/internal/platform/sec"
)

// PrincipalResolver turns presented tokens into an authenticated member.
//
// # Why an interface?
//
// Defining PrincipalResolver here decouples the middleware from the `auth`
// service implementation, allowing us to inject fakes during unit testing.
type PrincipalResolver interface {
	Resolve(ctx context.Context, credentials sec.TokenCredentials) (sec.Principal, error)
}

// Authenticate resolves the member behind the request's tokens.
//
// # Flow
//  1. Collect the bearer header or access token cookie, plus the CSRF header.
//  2. If no access token is present, the request proceeds as anonymous.
//  3. Otherwise resolve it via [PrincipalResolver]. Any failure ends the request.
//  4. Inject the [sec.Principal] into the request context for downstream use.
//
// Mount it only on routes that need a member. Routes that must work with a
// stale cookie attached, such as login and logout, stay outside it.
func Authenticate(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			credentials := requestutil.Credentials(request)

			// 1. Anonymous Access
			if credentials.AccessToken == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Token Resolution
			principal, err := resolver.Resolve(request.Context(), credentials)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// 3. Context Injection
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			logger := ctxutil.GetLogger(ctx).With(slog.Int("member_id", int(principal.ID())))
			ctx = ctxutil.WithLogger(ctx, logger)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authorization required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequirePermission blocks requests whose member does not hold every bit in required.
//
// It implies [RequireAuth], so there is no need to mount both.
func RequirePermission(required sec.Permissions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// 1. Authentication Check
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authorization required"))
				return
			}

			// 2. Authorization Check
			if !principal.Permissions().Has(required) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
