// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rankboard/internal/platform/apperr"
	"github.com/taibuivan/rankboard/internal/platform/metrics"
	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/internal/users/auth"
	"github.com/taibuivan/rankboard/pkg/pointer"
)

type fixture struct {
	store         *memStore
	throttle      *fakeThrottle
	clock         *clock
	authenticator *auth.Authenticator
}

func newFixture(t *testing.T, rows ...auth.Row) *fixture {
	t.Helper()

	f := &fixture{
		store:    newMemStore(rows...),
		throttle: newFakeThrottle(3),
		clock:    newClock(),
	}
	f.authenticator = auth.NewAuthenticator(f.store, testHasher,
		auth.WithLoginThrottle(f.throttle),
		auth.WithAccessTokenTTL(24*time.Hour),
		auth.WithLeeway(0),
		auth.WithClock(f.clock.Now),
	)
	return f
}

func (f *fixture) issue(t *testing.T, id int32) auth.TokenPair {
	t.Helper()
	identity, err := f.authenticator.ByID(context.Background(), id)
	require.NoError(t, err)
	pair, err := f.authenticator.IssueTokens(identity)
	require.NoError(t, err)
	return pair
}

func bearer(token string) sec.TokenCredentials {
	return sec.TokenCredentials{AccessToken: token}
}

// # Token Authentication

func TestTokenAuth_Resolves(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"), federatedRow(9, "bob", "g-123", "a@b.com"))

	for _, id := range []int32{7, 9} {
		pair := f.issue(t, id)

		identity, err := f.authenticator.TokenAuth(context.Background(), bearer(pair.AccessToken))
		require.NoError(t, err)
		assert.Equal(t, id, identity.ID())
	}
}

func TestTokenAuth_PasswordChangeRevokes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))

	token := f.issue(t, 7).AccessToken

	identity, err := f.authenticator.TokenAuth(ctx, bearer(token))
	require.NoError(t, err)
	assert.Equal(t, int32(7), identity.ID())

	// Persist D' for id=7
	require.NoError(t, f.store.PersistPasswordDigest(ctx, 7, hashPassword(t, "battery staple")))

	_, err = f.authenticator.TokenAuth(ctx, bearer(token))
	assert.Same(t, auth.ErrUnauthorized, err)
}

func TestTokenAuth_FederatedEmailChangeRevokes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, federatedRow(9, "bob", "g-123", "a@b.com"))

	token := f.issue(t, 9).AccessToken

	f.store.rows[9] = federatedRow(9, "bob", "g-123", "new@b.com")

	_, err := f.authenticator.TokenAuth(ctx, bearer(token))
	assert.Same(t, auth.ErrUnauthorized, err)
}

func TestTokenAuth_CollapsesToUnauthorized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"), legacyRow(t, 9, "bob", "hunter2hunter2"))

	pair7 := f.issue(t, 7)
	pair9 := f.issue(t, 9)

	// An id no member has, signed with some key
	ghost := mustLegacy(t, 404, "ghost-digest")
	ghostToken, err := auth.IssueAccessToken(ghost, epoch, time.Hour)
	require.NoError(t, err)

	// Member 7's token with one signature character changed
	tampered := tamper(pair7.AccessToken)

	// Same store, clock past the access token expiry
	late := auth.NewAuthenticator(f.store, testHasher, auth.WithClock(fixedNow(epoch.Add(25*time.Hour))), auth.WithLeeway(0))

	tests := []struct {
		name          string
		authenticator *auth.Authenticator
		credentials   sec.TokenCredentials
	}{
		{"unknown_subject", f.authenticator, bearer(ghostToken)},
		{"tampered_signature", f.authenticator, bearer(tampered)},
		{"expired_access_token", late, bearer(pair7.AccessToken)},
		{"csrf_wrong_secret", f.authenticator, sec.TokenCredentials{AccessToken: pair7.AccessToken, CSRFToken: mustCSRF(t, mustLegacy(t, 7, "other-digest"))}},
		{"csrf_for_other_member", f.authenticator, sec.TokenCredentials{AccessToken: pair9.AccessToken, CSRFToken: pair7.CSRFToken}},
		{"csrf_required_but_absent", f.authenticator, sec.TokenCredentials{AccessToken: pair7.AccessToken, RequireCSRF: true}},
		{"csrf_as_access_token", f.authenticator, bearer(pair7.CSRFToken)},
		{"not_a_token", f.authenticator, bearer("definitely.not.jwt")},
		{"empty", f.authenticator, bearer("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := tt.authenticator.TokenAuth(ctx, tt.credentials)
			assert.Nil(t, identity)
			assert.Same(t, auth.ErrUnauthorized, err)
		})
	}
}

func TestTokenAuth_CSRF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
	pair := f.issue(t, 7)

	t.Run("matching_pair", func(t *testing.T) {
		identity, err := f.authenticator.TokenAuth(ctx, sec.TokenCredentials{AccessToken: pair.AccessToken, CSRFToken: pair.CSRFToken, RequireCSRF: true})
		require.NoError(t, err)
		assert.Equal(t, int32(7), identity.ID())
	})

	t.Run("csrf_outlives_access_token_expiry", func(t *testing.T) {
		f.clock.Advance(48 * time.Hour)

		// Fresh access token, CSRF token issued a day earlier
		identity := mustIdentity(t, f.store.rows[7])
		fresh, err := auth.IssueAccessToken(identity, f.clock.Now(), time.Hour)
		require.NoError(t, err)

		_, err = f.authenticator.TokenAuth(ctx, sec.TokenCredentials{AccessToken: fresh, CSRFToken: pair.CSRFToken})
		assert.NoError(t, err)
	})
}

func TestTokenAuth_StoreErrorPassesThrough(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
	pair := f.issue(t, 7)

	outage := errors.New("connection refused")
	f.store.err = outage

	_, err := f.authenticator.TokenAuth(context.Background(), bearer(pair.AccessToken))
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, auth.ErrUnauthorized)
}

func TestTokenAuth_MalformedRow(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
	pair := f.issue(t, 7)

	f.store.rows[7] = auth.Row{ID: 7, DisplayName: "alice"}

	_, err := f.authenticator.TokenAuth(context.Background(), bearer(pair.AccessToken))
	assert.ErrorIs(t, err, auth.ErrMalformedCredentialState)
	assert.False(t, apperr.IsAppError(err))
}

func TestTokenAuth_UntrustedPassSkipsStoreOnGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.authenticator.TokenAuth(context.Background(), bearer("garbage"))
	assert.Same(t, auth.ErrUnauthorized, err)
	assert.Zero(t, f.store.fetchCount())
}

func TestTokenAuth_RecordsMetrics(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
	pair := f.issue(t, 7)

	success := metrics.AuthenticationAttempts.WithLabelValues(metrics.MethodToken, metrics.ResultSuccess)
	rejected := metrics.AuthenticationAttempts.WithLabelValues(metrics.MethodToken, metrics.ResultUnauthorized)
	successBefore, rejectedBefore := testutil.ToFloat64(success), testutil.ToFloat64(rejected)

	_, _ = f.authenticator.TokenAuth(context.Background(), bearer(pair.AccessToken))
	_, _ = f.authenticator.TokenAuth(context.Background(), bearer("garbage"))

	assert.Equal(t, successBefore+1, testutil.ToFloat64(success))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(rejected))
}

func TestResolve(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
	pair := f.issue(t, 7)

	principal, err := f.authenticator.Resolve(context.Background(), bearer(pair.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.DisplayName())

	principal, err = f.authenticator.Resolve(context.Background(), bearer("garbage"))
	assert.Nil(t, principal)
	assert.Error(t, err)
}

// # Identity Lookup

func TestByName(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "Alice", "correct horse"))

	identity, err := f.authenticator.ByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int32(7), identity.ID())

	_, err = f.authenticator.ByName(context.Background(), "mallory")
	assert.Same(t, auth.ErrUnauthorized, err)
}

// # Password Authentication

func TestBasicAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("success_resets_failures", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		require.NoError(t, f.throttle.RecordFailure(ctx, "alice"))

		identity, err := f.authenticator.BasicAuth(ctx, "ALICE", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, int32(7), identity.ID())
		assert.Zero(t, f.throttle.count("alice"))
	})

	t.Run("wrong_password", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))

		_, err := f.authenticator.BasicAuth(ctx, "alice", "wrong horse")
		assert.Same(t, auth.ErrUnauthorized, err)
		assert.Equal(t, 1, f.throttle.count("alice"))
	})

	t.Run("unknown_name", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.authenticator.BasicAuth(ctx, "mallory", "whatever")
		assert.Same(t, auth.ErrUnauthorized, err)
		assert.Equal(t, 1, f.throttle.count("mallory"))
	})

	t.Run("federated_has_no_password", func(t *testing.T) {
		f := newFixture(t, federatedRow(9, "bob", "g-123", "a@b.com"))

		_, err := f.authenticator.BasicAuth(ctx, "bob", "anything")
		assert.Same(t, auth.ErrUnauthorized, err)
	})

	t.Run("locked_out_before_password_check", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		for range 3 {
			require.NoError(t, f.throttle.RecordFailure(ctx, "alice"))
		}

		_, err := f.authenticator.BasicAuth(ctx, "alice", "correct horse")
		assert.Same(t, auth.ErrUnauthorized, err)
		assert.Zero(t, f.store.fetchCount())
	})

	t.Run("throttle_outage_fails_open", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		f.throttle.err = errors.New("redis down")

		identity, err := f.authenticator.BasicAuth(ctx, "alice", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, int32(7), identity.ID())
	})

	t.Run("store_error_passes_through", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		outage := errors.New("connection refused")
		f.store.err = outage

		_, err := f.authenticator.BasicAuth(ctx, "alice", "correct horse")
		assert.ErrorIs(t, err, outage)
		assert.Zero(t, f.throttle.count("alice"))
	})

	t.Run("without_throttle", func(t *testing.T) {
		store := newMemStore(legacyRow(t, 7, "alice", "correct horse"))
		authenticator := auth.NewAuthenticator(store, testHasher)

		_, err := authenticator.BasicAuth(ctx, "alice", "wrong horse")
		assert.Same(t, auth.ErrUnauthorized, err)
	})
}

// # Token Issuance

func TestIssueTokens(t *testing.T) {
	f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))

	pair := f.issue(t, 7)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.CSRFToken)
	assert.Equal(t, epoch.Add(24*time.Hour), pair.ExpiresAt)

	noExpiry := auth.NewAuthenticator(f.store, testHasher, auth.WithAccessTokenTTL(0))
	identity := mustIdentity(t, f.store.rows[7])
	pair, err := noExpiry.IssueTokens(identity)
	require.NoError(t, err)
	assert.True(t, pair.ExpiresAt.IsZero())
}

// # Credential Changes

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success_rotates_tokens", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		old := f.issue(t, 7)
		identity := mustIdentity(t, f.store.rows[7])

		updated, err := f.authenticator.ChangePassword(ctx, identity, "correct horse", "battery staple")
		require.NoError(t, err)
		assert.NotEqual(t, identity.SigningSecret(), updated.SigningSecret())
		assert.Equal(t, updated.PasswordDigest(), pointer.Val(f.store.rows[7].PasswordDigest))

		_, err = f.authenticator.TokenAuth(ctx, bearer(old.AccessToken))
		assert.Same(t, auth.ErrUnauthorized, err)

		fresh, err := f.authenticator.IssueTokens(updated)
		require.NoError(t, err)
		_, err = f.authenticator.TokenAuth(ctx, sec.TokenCredentials{AccessToken: fresh.AccessToken, CSRFToken: fresh.CSRFToken})
		assert.NoError(t, err)

		_, err = f.authenticator.BasicAuth(ctx, "alice", "battery staple")
		assert.NoError(t, err)
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		identity := mustIdentity(t, f.store.rows[7])

		_, err := f.authenticator.ChangePassword(ctx, identity, "wrong horse", "battery staple")
		assert.Same(t, auth.ErrUnauthorized, err)
	})

	t.Run("federated", func(t *testing.T) {
		f := newFixture(t, federatedRow(9, "bob", "g-123", "a@b.com"))
		identity := mustIdentity(t, f.store.rows[9])

		_, err := f.authenticator.ChangePassword(ctx, identity, "anything at all", "battery staple")
		assert.Same(t, auth.ErrUnauthorized, err)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		identity := mustIdentity(t, f.store.rows[7])

		for _, newPassword := range []string{"short", "correct horse", string(make([]byte, 73))} {
			_, err := f.authenticator.ChangePassword(ctx, identity, "correct horse", newPassword)
			appError := apperr.As(err)
			require.NotNil(t, appError, newPassword)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		}
	})

	t.Run("persist_failure", func(t *testing.T) {
		f := newFixture(t, legacyRow(t, 7, "alice", "correct horse"))
		identity := mustIdentity(t, f.store.rows[7])
		outage := errors.New("read-only transaction")
		f.store.err = outage

		_, err := f.authenticator.ChangePassword(ctx, identity, "correct horse", "battery staple")
		assert.ErrorIs(t, err, outage)
	})
}

// # Helpers

func mustCSRF(t *testing.T, identity auth.Identity) string {
	t.Helper()
	token, err := auth.IssueCSRFToken(identity, epoch)
	require.NoError(t, err)
	return token
}

// tamper changes the first signature character, which always carries
// significant bits.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	signature := []byte(parts[2])
	if signature[0] == 'A' {
		signature[0] = 'B'
	} else {
		signature[0] = 'A'
	}
	return parts[0] + "." + parts[1] + "." + string(signature)
}
