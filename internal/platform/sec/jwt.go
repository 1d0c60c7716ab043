// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token encoding.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, key derivation, JWT
// signing) from the domain logic. It holds no keys of its own: every signing
// key is passed in by the caller, which derives it per member.
package sec

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// signingMethod is the only algorithm tokens are signed or accepted with.
var signingMethod = jwt.SigningMethodHS256

// ErrInvalidToken is returned for any token that fails decoding or verification.
var ErrInvalidToken = errors.New("sec: invalid token")

// # Signing

// SignHMAC serializes claims into a compact HS256 JWT keyed with secret.
func SignHMAC(claims jwt.Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("sec: refusing to sign with an empty key")
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// # Decoding

// DecodeUnverified parses the token payload into claims WITHOUT checking the
// signature or any time-based claim.
//
// # Security
//
// The result is attacker-controlled. It may only be used to decide which key to
// verify the token with, never to grant anything. [VerifyHMAC] must run on the
// same token before its claims are trusted.
func DecodeUnverified(tokenString string, claims jwt.Claims) error {
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}

// VerifyHMAC parses the token, enforcing an HS256 signature made with secret.
//
// Additional parser options control claim validation (time source, leeway, or
// [jwt.WithoutClaimsValidation] for tokens that never expire).
func VerifyHMAC(tokenString string, claims jwt.Claims, secret []byte, options ...jwt.ParserOption) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: empty verification key", ErrInvalidToken)
	}

	parserOptions := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
	}, options...)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
