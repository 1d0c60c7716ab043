// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/internal/users/auth"
	"github.com/taibuivan/rankboard/pkg/fold"
	"github.com/taibuivan/rankboard/pkg/pointer"
)

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: epoch} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory [auth.UserStore].
type memStore struct {
	mu      sync.Mutex
	rows    map[int32]auth.Row
	err     error
	fetches int
}

func newMemStore(rows ...auth.Row) *memStore {
	store := &memStore{rows: make(map[int32]auth.Row)}
	for _, row := range rows {
		store.rows[row.ID] = row
	}
	return store
}

func (s *memStore) FetchByID(_ context.Context, id int32) (auth.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	if s.err != nil {
		return auth.Row{}, s.err
	}
	row, ok := s.rows[id]
	if !ok {
		return auth.Row{}, auth.ErrUserNotFound
	}
	return row, nil
}

func (s *memStore) FetchByName(_ context.Context, name string) (auth.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	if s.err != nil {
		return auth.Row{}, s.err
	}
	for _, row := range s.rows {
		if fold.Equal(row.DisplayName, name) {
			return row, nil
		}
	}
	return auth.Row{}, auth.ErrUserNotFound
}

func (s *memStore) PersistPasswordDigest(_ context.Context, id int32, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	row, ok := s.rows[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	row.PasswordDigest = pointer.To(digest)
	s.rows[id] = row
	return nil
}

func (s *memStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// fakeThrottle is an in-memory [auth.LoginThrottle].
type fakeThrottle struct {
	mu       sync.Mutex
	limit    int
	failures map[string]int
	err      error
}

func newFakeThrottle(limit int) *fakeThrottle {
	return &fakeThrottle{limit: limit, failures: make(map[string]int)}
}

func (f *fakeThrottle) Allow(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.failures[fold.Key(name)] < f.limit, nil
}

func (f *fakeThrottle) RecordFailure(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.failures[fold.Key(name)]++
	return nil
}

func (f *fakeThrottle) Reset(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.failures, fold.Key(name))
	return nil
}

func (f *fakeThrottle) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[fold.Key(name)]
}

// # Fixtures

var testHasher = sec.NewBcryptHasher(bcrypt.MinCost)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	digest, err := testHasher.Hash(password)
	require.NoError(t, err)
	return digest
}

func legacyRow(t *testing.T, id int32, name, password string) auth.Row {
	t.Helper()
	return auth.Row{
		ID:             id,
		DisplayName:    name,
		Permissions:    int32(sec.PermissionListHelper),
		PasswordDigest: pointer.To(hashPassword(t, password)),
	}
}

func federatedRow(id int32, name, externalID, email string) auth.Row {
	return auth.Row{
		ID:                id,
		DisplayName:       name,
		VerifiedEmail:     pointer.To(email),
		ExternalAccountID: pointer.To(externalID),
	}
}

func mustIdentity(t *testing.T, row auth.Row) auth.Identity {
	t.Helper()
	identity, err := auth.IdentityFromRow(row)
	require.NoError(t, err)
	return identity
}

func mustLegacy(t *testing.T, id int32, digest string) *auth.LegacyIdentity {
	t.Helper()
	identity, err := auth.NewLegacyIdentity(auth.Member{ID: id, DisplayName: "member"}, digest)
	require.NoError(t, err)
	return identity
}

func mustFederated(t *testing.T, id int32, externalID, email string) *auth.FederatedIdentity {
	t.Helper()
	identity, err := auth.NewFederatedIdentity(auth.Member{ID: id, DisplayName: "member"}, externalID, email)
	require.NoError(t, err)
	return identity
}
