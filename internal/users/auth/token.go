// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/rankboard/internal/platform/sec"
)

// Token kinds, carried in the "kind" claim so that one kind can never be
// replayed as the other.
const (
	tokenKindAccess = "access"
	tokenKindCSRF   = "csrf"
)

// # Claims

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims

	MemberID int32  `json:"id"`
	Kind     string `json:"kind"`
}

// CSRFClaims is the payload of a CSRF token. It has no expiry.
type CSRFClaims struct {
	jwt.RegisteredClaims

	MemberID int32  `json:"id"`
	Kind     string `json:"kind"`
}

// subjectClaims is the minimal shape read by the untrusted pass.
type subjectClaims struct {
	jwt.RegisteredClaims

	MemberID *int32 `json:"id"`
}

// # Issuance

// IssueAccessToken signs an access token for identity. A zero ttl issues a
// token without an expiry claim.
func IssueAccessToken(identity Identity, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
		MemberID: identity.ID(),
		Kind:     tokenKindAccess,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))
	}

	return sec.SignHMAC(claims, identity.SigningSecret())
}

// IssueCSRFToken signs a CSRF token for identity.
func IssueCSRFToken(identity Identity, issuedAt time.Time) (string, error) {
	claims := CSRFClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
		MemberID: identity.ID(),
		Kind:     tokenKindCSRF,
	}

	return sec.SignHMAC(claims, identity.SigningSecret())
}

// # Validation

// claimedSubject is the first, untrusted pass: it reads the member id a token
// claims to belong to, without checking signature or expiry.
//
// The returned id only selects which member's secret to verify against. It
// must never be used for an authorization decision on its own.
func claimedSubject(token string) (int32, error) {
	var claims subjectClaims
	if err := sec.DecodeUnverified(token, &claims); err != nil {
		return 0, ErrUnauthorized
	}
	if claims.MemberID == nil {
		return 0, ErrUnauthorized
	}
	return *claims.MemberID, nil
}

// TokenValidator runs the trusted pass against a member's derived secret.
type TokenValidator struct {
	now    func() time.Time
	leeway time.Duration
}

// NewTokenValidator creates a validator with the given time source and clock skew allowance.
func NewTokenValidator(now func() time.Time, leeway time.Duration) TokenValidator {
	if now == nil {
		now = time.Now
	}
	return TokenValidator{now: now, leeway: leeway}
}

/*
ValidateAccessToken verifies token against identity's current secret.

Description: Enforces the HS256 signature, expiry (when present), the access
kind, and that the token names this identity.

Parameters:
  - identity: Identity
  - token: string

Returns:
  - error: ErrUnauthorized on any failure
*/
func (validator TokenValidator) ValidateAccessToken(identity Identity, token string) error {
	var claims AccessClaims
	err := sec.VerifyHMAC(token, &claims, identity.SigningSecret(),
		jwt.WithTimeFunc(validator.now),
		jwt.WithLeeway(validator.leeway),
		jwt.WithIssuedAt(),
	)
	if err != nil || claims.Kind != tokenKindAccess || claims.MemberID != identity.ID() {
		return ErrUnauthorized
	}
	return nil
}

/*
ValidateCSRFToken verifies token against identity's current secret.

Description: Enforces the HS256 signature, the csrf kind, and that the token
names this identity. Time-based claims are deliberately not checked.

Parameters:
  - identity: Identity
  - token: string

Returns:
  - error: ErrUnauthorized on any failure
*/
func (validator TokenValidator) ValidateCSRFToken(identity Identity, token string) error {
	var claims CSRFClaims
	err := sec.VerifyHMAC(token, &claims, identity.SigningSecret(), jwt.WithoutClaimsValidation())
	if err != nil || claims.Kind != tokenKindCSRF || claims.MemberID != identity.ID() {
		return ErrUnauthorized
	}
	return nil
}
