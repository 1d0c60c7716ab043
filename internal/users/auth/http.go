// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/rankboard/internal/platform/constants"
	"github.com/taibuivan/rankboard/internal/platform/middleware"
	requestutil "github.com/taibuivan/rankboard/internal/platform/request"
	"github.com/taibuivan/rankboard/internal/platform/respond"
	"github.com/taibuivan/rankboard/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Password login, the current member's profile, password changes and logout.
// Only the /me routes resolve tokens; /login and /logout ignore any
// credentials the client still carries.
type Handler struct {
	authenticator *Authenticator
	cookieSecure  bool
}

// NewHandler constructs a new [Handler]. cookieSecure marks the access token
// cookie as HTTPS-only.
func NewHandler(authenticator *Authenticator, cookieSecure bool) *Handler {
	return &Handler{authenticator: authenticator, cookieSecure: cookieSecure}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST  /login       : Authenticates with name and password, returns tokens.
//   - POST  /logout      : Clears the access token cookie.
//   - GET   /me          : Returns the authenticated member.
//   - PATCH /me/password : Changes the password and returns fresh tokens.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(handler.authenticator))
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Patch("/me/password", handler.changePassword)
	})

	return router
}

// # Payloads

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type memberResponse struct {
	ID          int32    `json:"id"`
	DisplayName string   `json:"display_name"`
	Kind        Kind     `json:"kind"`
	Permissions []string `json:"permissions"`
}

type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	CSRFToken   string         `json:"csrf_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	Member      memberResponse `json:"member"`
}

func newMemberResponse(identity Identity) memberResponse {
	return memberResponse{
		ID:          identity.ID(),
		DisplayName: identity.DisplayName(),
		Kind:        identity.Kind(),
		Permissions: identity.Permissions().Names(),
	}
}

/*
Login authenticates a member with a display name and password.

POST /api/v1/auth/login

Description: Verifies the password, issues an access token and a CSRF token,
and sets the access token cookie for browser clients.

Request:
  - Body: loginRequest (Name, Password)

Response:
  - 200: tokenResponse
  - 400: ErrInvalidJSON or validation failure
  - 401: ErrUnauthorized: Unknown name, wrong password, federated account or locked out
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldPassword, input.Password).
		MaxBytes(FieldPassword, input.Password, MaxPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authenticator.BasicAuth(request.Context(), input.Name, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondWithTokens(writer, request, identity)
}

/*
Logout clears the access token cookie.

POST /api/v1/auth/logout

Description: Tokens stay valid until they expire or the member's credentials
change; logout only removes the browser's copy. The cookie is cleared even
when it no longer resolves.

Response:
  - 204: No Content
*/
func (handler *Handler) logout(writer http.ResponseWriter, _ *http.Request) {
	http.SetCookie(writer, handler.accessCookie("", time.Time{}, -1))
	respond.NoContent(writer)
}

/*
Me returns the authenticated member.

GET /api/v1/auth/me

Response:
  - 200: memberResponse
  - 401: ErrUnauthorized
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := currentIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newMemberResponse(identity))
}

/*
ChangePassword replaces the authenticated member's password.

PATCH /api/v1/auth/me/password

Description: Every token issued before the change stops verifying, including
the one used for this request, so fresh tokens are returned.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: tokenResponse
  - 400: ErrInvalidJSON or validation failure
  - 401: ErrUnauthorized: Wrong current password or federated account
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := currentIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	updated, err := handler.authenticator.ChangePassword(request.Context(), identity, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondWithTokens(writer, request, updated)
}

// # Helpers

func (handler *Handler) respondWithTokens(writer http.ResponseWriter, request *http.Request, identity Identity) {
	pair, err := handler.authenticator.IssueTokens(identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := tokenResponse{
		AccessToken: pair.AccessToken,
		CSRFToken:   pair.CSRFToken,
		TokenType:   "Bearer",
		Member:      newMemberResponse(identity),
	}
	if !pair.ExpiresAt.IsZero() {
		response.ExpiresAt = &pair.ExpiresAt
	}

	http.SetCookie(writer, handler.accessCookie(pair.AccessToken, pair.ExpiresAt, 0))
	respond.OK(writer, response)
}

func (handler *Handler) accessCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    value,
		Path:     constants.AccessTokenCookiePath,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   handler.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// currentIdentity returns the member resolved by the authentication middleware.
func currentIdentity(request *http.Request) (Identity, error) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		return nil, err
	}

	identity, ok := principal.(Identity)
	if !ok {
		return nil, ErrUnauthorized
	}
	return identity, nil
}
