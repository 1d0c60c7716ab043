// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/rankboard/internal/platform/dberr"
)

// # Member Store

// querier is the subset of [*pgxpool.Pool] the store uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresUserStore implements [UserStore] over the members table.
type PostgresUserStore struct {
	pool querier
}

// NewUserStore creates a new PostgreSQL implementation of the [UserStore].
func NewUserStore(pool querier) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

const selectMember = `
	SELECT member_id, display_name, permissions, email_address, password_hash, google_account_id
	FROM members`

/*
FetchByID returns the member row with the given id.

Parameters:
  - ctx: context.Context
  - id: int32

Returns:
  - Row: Member record
  - error: ErrUserNotFound or retrieval failures
*/
func (store *PostgresUserStore) FetchByID(ctx context.Context, id int32) (Row, error) {
	return store.fetch(ctx, "postgres_member_store_fetch_by_id", selectMember+` WHERE member_id = $1`, id)
}

/*
FetchByName returns the member row whose display name matches, ignoring case.

Parameters:
  - ctx: context.Context
  - name: string

Returns:
  - Row: Member record
  - error: ErrUserNotFound or retrieval failures
*/
func (store *PostgresUserStore) FetchByName(ctx context.Context, name string) (Row, error) {
	return store.fetch(ctx, "postgres_member_store_fetch_by_name", selectMember+` WHERE lower(display_name) = lower($1)`, name)
}

func (store *PostgresUserStore) fetch(ctx context.Context, action, query string, argument any) (Row, error) {
	var row Row
	err := store.pool.QueryRow(ctx, query, argument).Scan(
		&row.ID,
		&row.DisplayName,
		&row.Permissions,
		&row.VerifiedEmail,
		&row.PasswordDigest,
		&row.ExternalAccountID,
	)
	if err != nil {
		return Row{}, dberr.Wrap(err, action, ErrUserNotFound)
	}
	return row, nil
}

/*
PersistPasswordDigest replaces the member's password digest.

Parameters:
  - ctx: context.Context
  - id: int32
  - digest: string

Returns:
  - error: ErrUserNotFound when no row was updated, or persistence failures
*/
func (store *PostgresUserStore) PersistPasswordDigest(ctx context.Context, id int32, digest string) error {
	const query = `UPDATE members SET password_hash = $2 WHERE member_id = $1`

	tag, err := store.pool.Exec(ctx, query, id, digest)
	if err != nil {
		return fmt.Errorf("postgres_member_store_persist_password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
