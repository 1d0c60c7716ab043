// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rankboard/internal/platform/sec"
)

type testClaims struct {
	jwt.RegisteredClaims
	MemberID int32 `json:"id"`
}

func TestSignHMAC_RoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	signed, err := sec.SignHMAC(testClaims{MemberID: 7}, secret)
	require.NoError(t, err)

	var claims testClaims
	require.NoError(t, sec.VerifyHMAC(signed, &claims, secret))
	assert.Equal(t, int32(7), claims.MemberID)
}

func TestSignHMAC_EmptyKey(t *testing.T) {
	_, err := sec.SignHMAC(testClaims{MemberID: 7}, nil)
	assert.Error(t, err)
}

func TestVerifyHMAC_Failures(t *testing.T) {
	secret := []byte("right-secret")
	now := time.Now()

	expired, err := sec.SignHMAC(testClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))},
		MemberID:         7,
	}, secret)
	require.NoError(t, err)

	valid, err := sec.SignHMAC(testClaims{MemberID: 7}, secret)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, testClaims{MemberID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, testClaims{MemberID: 7}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{"wrong_secret", valid, []byte("wrong-secret")},
		{"empty_secret", valid, nil},
		{"expired", expired, secret},
		{"malformed", "not.a.jwt", secret},
		{"alg_none", noneToken, secret},
		{"other_hmac_alg", hs512, secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims testClaims
			err := sec.VerifyHMAC(tt.token, &claims, tt.secret)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

func TestVerifyHMAC_WithoutClaimsValidationIgnoresExpiry(t *testing.T) {
	secret := []byte("right-secret")
	expired, err := sec.SignHMAC(testClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		MemberID:         7,
	}, secret)
	require.NoError(t, err)

	var claims testClaims
	assert.NoError(t, sec.VerifyHMAC(expired, &claims, secret, jwt.WithoutClaimsValidation()))

	// The signature is still enforced.
	assert.Error(t, sec.VerifyHMAC(expired, &claims, []byte("wrong"), jwt.WithoutClaimsValidation()))
}

func TestDecodeUnverified(t *testing.T) {
	signed, err := sec.SignHMAC(testClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		MemberID:         42,
	}, []byte("whatever"))
	require.NoError(t, err)

	// Expired and signed with an unknown key: the payload is still readable.
	var claims testClaims
	require.NoError(t, sec.DecodeUnverified(signed, &claims))
	assert.Equal(t, int32(42), claims.MemberID)

	assert.ErrorIs(t, sec.DecodeUnverified("garbage", &claims), sec.ErrInvalidToken)
}
