// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/rankboard/internal/platform/ctxutil"
	"github.com/taibuivan/rankboard/internal/platform/metrics"
	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/internal/platform/validate"
)

// # Contracts & Types

// Authenticator resolves members from tokens and passwords.
//
// # Statelessness
//
// An Authenticator holds no per-member state. Every attempt fetches the member
// afresh and re-derives its signing secret, so it is safe for concurrent use
// and a credential change takes effect on the very next request.
type Authenticator struct {
	users     UserStore
	hasher    PasswordHasher
	throttle  LoginThrottle
	validator TokenValidator
	accessTTL time.Duration
	now       func() time.Time
}

// Option customizes an [Authenticator].
type Option func(*Authenticator)

// WithLoginThrottle enables failed-login throttling for [Authenticator.BasicAuth].
func WithLoginThrottle(throttle LoginThrottle) Option {
	return func(authenticator *Authenticator) {
		authenticator.throttle = throttle
	}
}

// WithAccessTokenTTL sets the lifetime of issued access tokens. Zero issues
// tokens without an expiry.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(authenticator *Authenticator) {
		authenticator.accessTTL = ttl
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(authenticator *Authenticator) {
		authenticator.now = now
	}
}

// WithLeeway sets the clock skew allowance for access token time claims.
func WithLeeway(leeway time.Duration) Option {
	return func(authenticator *Authenticator) {
		authenticator.validator.leeway = leeway
	}
}

// NewAuthenticator constructs an [Authenticator] over the given store and hasher.
func NewAuthenticator(users UserStore, hasher PasswordHasher, options ...Option) *Authenticator {
	authenticator := &Authenticator{
		users:     users,
		hasher:    hasher,
		accessTTL: DefaultAccessTokenTTL,
		now:       time.Now,
		validator: TokenValidator{leeway: DefaultTokenLeeway},
	}
	for _, option := range options {
		option(authenticator)
	}
	authenticator.validator.now = authenticator.now

	return authenticator
}

// # Token Authentication

/*
TokenAuth resolves the member an access token belongs to.

Description: Runs the two-pass protocol. The token is first decoded without any
verification purely to learn which member it claims to be for. That member is
loaded and its current signing secret derived, and only then is the very same
token verified for real. The first pass never authorizes anything.

When credentials carry a CSRF token it must verify against the same secret and
name the same member. When RequireCSRF is set a missing CSRF token fails.

Parameters:
  - ctx: context.Context
  - credentials: sec.TokenCredentials

Returns:
  - Identity: The verified member
  - error: ErrUnauthorized, ErrMalformedCredentialState or store failures
*/
func (authenticator *Authenticator) TokenAuth(ctx context.Context, credentials sec.TokenCredentials) (Identity, error) {
	logger := ctxutil.GetLogger(ctx)

	// Start -> ClaimedIdentityKnown. Nothing here is trusted yet.
	claimedID, err := claimedSubject(credentials.AccessToken)
	if err != nil {
		metrics.RecordAuthentication(metrics.MethodToken, metrics.ResultUnauthorized)
		return nil, ErrUnauthorized
	}

	logger.DebugContext(ctx, "token_auth_claimed_subject", slog.Int("claimed_id", int(claimedID)))

	// ClaimedIdentityKnown -> SecretDerived.
	identity, err := authenticator.ByID(ctx, claimedID)
	if err != nil {
		metrics.RecordAuthentication(metrics.MethodToken, resultFor(err))
		return nil, err
	}

	// SecretDerived -> SignatureVerified.
	if err := authenticator.validator.ValidateAccessToken(identity, credentials.AccessToken); err != nil {
		logger.InfoContext(ctx, "token_auth_rejected", slog.Int("claimed_id", int(claimedID)))
		metrics.RecordAuthentication(metrics.MethodToken, metrics.ResultUnauthorized)
		return nil, ErrUnauthorized
	}

	// SignatureVerified -> CsrfVerified.
	switch {
	case credentials.CSRFToken != "":
		if err := authenticator.validator.ValidateCSRFToken(identity, credentials.CSRFToken); err != nil {
			logger.InfoContext(ctx, "token_auth_csrf_rejected", slog.Int("member_id", int(identity.ID())))
			metrics.RecordAuthentication(metrics.MethodToken, metrics.ResultUnauthorized)
			return nil, ErrUnauthorized
		}
	case credentials.RequireCSRF:
		logger.InfoContext(ctx, "token_auth_csrf_missing", slog.Int("member_id", int(identity.ID())))
		metrics.RecordAuthentication(metrics.MethodToken, metrics.ResultUnauthorized)
		return nil, ErrUnauthorized
	}

	metrics.RecordAuthentication(metrics.MethodToken, metrics.ResultSuccess)
	return identity, nil
}

// Resolve adapts [Authenticator.TokenAuth] to the middleware's principal contract.
func (authenticator *Authenticator) Resolve(ctx context.Context, credentials sec.TokenCredentials) (sec.Principal, error) {
	identity, err := authenticator.TokenAuth(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// # Identity Lookup

/*
ByID loads a member and resolves its credential variant.

Parameters:
  - ctx: context.Context
  - id: int32

Returns:
  - Identity: Legacy or federated identity
  - error: ErrUnauthorized when no such member exists, ErrMalformedCredentialState, or store failures
*/
func (authenticator *Authenticator) ByID(ctx context.Context, id int32) (Identity, error) {
	row, err := authenticator.users.FetchByID(ctx, id)
	return authenticator.resolveRow(ctx, row, err)
}

/*
ByName loads a member by display name and resolves its credential variant.

Description: Entry point for flows that start from a submitted username rather
than a token. Same outcomes as [Authenticator.ByID].

Parameters:
  - ctx: context.Context
  - name: string

Returns:
  - Identity: Legacy or federated identity
  - error: ErrUnauthorized, ErrMalformedCredentialState or store failures
*/
func (authenticator *Authenticator) ByName(ctx context.Context, name string) (Identity, error) {
	row, err := authenticator.users.FetchByName(ctx, name)
	return authenticator.resolveRow(ctx, row, err)
}

// resolveRow maps a store result onto the error taxonomy.
func (authenticator *Authenticator) resolveRow(ctx context.Context, row Row, err error) (Identity, error) {
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	identity, err := IdentityFromRow(row)
	if err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "malformed_credential_state",
			slog.Int("member_id", int(row.ID)),
		)
		return nil, err
	}

	return identity, nil
}

// # Password Authentication

/*
BasicAuth authenticates a member by display name and password.

Description: Only legacy identities have a password. Unknown names, federated
accounts and wrong passwords all fail with the same ErrUnauthorized. When a
throttle is configured, locked-out names fail before the password is checked.

Parameters:
  - ctx: context.Context
  - name: string
  - password: string

Returns:
  - *LegacyIdentity: The verified member
  - error: ErrUnauthorized, ErrMalformedCredentialState or store failures
*/
func (authenticator *Authenticator) BasicAuth(ctx context.Context, name, password string) (*LegacyIdentity, error) {
	logger := ctxutil.GetLogger(ctx)

	if !authenticator.loginAllowed(ctx, name) {
		logger.WarnContext(ctx, "basic_auth_locked_out")
		metrics.RecordAuthentication(metrics.MethodPassword, metrics.ResultThrottled)
		return nil, ErrUnauthorized
	}

	identity, err := authenticator.ByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			authenticator.recordFailure(ctx, name)
		}
		metrics.RecordAuthentication(metrics.MethodPassword, resultFor(err))
		return nil, err
	}

	legacy, ok := identity.(*LegacyIdentity)
	if !ok || !authenticator.hasher.Verify(password, legacy.PasswordDigest()) {
		authenticator.recordFailure(ctx, name)
		metrics.RecordAuthentication(metrics.MethodPassword, metrics.ResultUnauthorized)
		return nil, ErrUnauthorized
	}

	authenticator.resetFailures(ctx, name)
	metrics.RecordAuthentication(metrics.MethodPassword, metrics.ResultSuccess)
	return legacy, nil
}

// # Token Issuance

// TokenPair is a freshly issued access token and its companion CSRF token.
type TokenPair struct {
	AccessToken string
	CSRFToken   string

	// ExpiresAt is the zero time when the access token never expires.
	ExpiresAt time.Time
}

/*
IssueTokens signs an access token and a CSRF token with identity's current secret.

Parameters:
  - identity: Identity

Returns:
  - TokenPair: Signed tokens
  - error: Signing failures
*/
func (authenticator *Authenticator) IssueTokens(identity Identity) (TokenPair, error) {
	issuedAt := authenticator.now()

	accessToken, err := IssueAccessToken(identity, issuedAt, authenticator.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	csrfToken, err := IssueCSRFToken(identity, issuedAt)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth_service_csrf_token_failed: %w", err)
	}

	pair := TokenPair{AccessToken: accessToken, CSRFToken: csrfToken}
	if authenticator.accessTTL > 0 {
		pair.ExpiresAt = issuedAt.Add(authenticator.accessTTL).UTC()
	}

	return pair, nil
}

// # Credential Changes

/*
ChangePassword replaces a legacy member's password.

Description: Verifies the current password, persists a new digest and returns
the identity rebuilt around it. Because the signing secret derives from the
digest, every token issued before the change stops verifying.

Parameters:
  - ctx: context.Context
  - identity: Identity (the authenticated caller)
  - currentPassword: string
  - newPassword: string

Returns:
  - *LegacyIdentity: Identity carrying the new digest
  - error: Validation errors, ErrUnauthorized (federated or wrong password) or persistence failures
*/
func (authenticator *Authenticator) ChangePassword(ctx context.Context, identity Identity, currentPassword, newPassword string) (*LegacyIdentity, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldCurrentPassword, currentPassword).
		MinLen(FieldNewPassword, newPassword, MinPasswordLength).
		MaxBytes(FieldNewPassword, newPassword, MaxPasswordLength).
		Custom(FieldNewPassword, newPassword == currentPassword, "Must differ from the current password")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	legacy, ok := identity.(*LegacyIdentity)
	if !ok {
		return nil, ErrUnauthorized
	}

	if !authenticator.hasher.Verify(currentPassword, legacy.PasswordDigest()) {
		return nil, ErrUnauthorized
	}

	digest, err := authenticator.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := authenticator.users.PersistPasswordDigest(ctx, legacy.ID(), digest); err != nil {
		return nil, fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "password_changed", slog.Int("member_id", int(legacy.ID())))

	return legacy.WithPasswordDigest(digest)
}

// # Throttle Helpers

// loginAllowed fails open: a throttle backend outage must not lock everyone out.
func (authenticator *Authenticator) loginAllowed(ctx context.Context, name string) bool {
	if authenticator.throttle == nil {
		return true
	}

	allowed, err := authenticator.throttle.Allow(ctx, name)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_unavailable", slog.Any("error", err))
		return true
	}
	return allowed
}

func (authenticator *Authenticator) recordFailure(ctx context.Context, name string) {
	if authenticator.throttle == nil {
		return
	}
	if err := authenticator.throttle.RecordFailure(ctx, name); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_record_failed", slog.Any("error", err))
	}
}

func (authenticator *Authenticator) resetFailures(ctx context.Context, name string) {
	if authenticator.throttle == nil {
		return
	}
	if err := authenticator.throttle.Reset(ctx, name); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_reset_failed", slog.Any("error", err))
	}
}

// resultFor classifies an error for the authentication metrics.
func resultFor(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return metrics.ResultUnauthorized
	case errors.Is(err, ErrMalformedCredentialState):
		return metrics.ResultMalformed
	default:
		return metrics.ResultStoreError
	}
}
