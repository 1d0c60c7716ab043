// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/rankboard/internal/platform/config"
	pgstore "github.com/taibuivan/rankboard/internal/platform/postgres"
	"github.com/taibuivan/rankboard/internal/platform/sec"
	"github.com/taibuivan/rankboard/internal/users/auth"
)

// NewIssueTokenCmd creates the issue-token subcommand.
func NewIssueTokenCmd() *cobra.Command {
	var (
		memberID int32
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue an access token for a member",
		Long: `Sign an access token and CSRF token for --member with the member's
current credentials. Tokens stop working once the member's password or
federated link changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.AccessTokenTTL
			}

			ctx := cmd.Context()
			pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, commandLogger(cmd))
			if err != nil {
				return err
			}
			defer pool.Close()

			return issueToken(ctx, cmd.OutOrStdout(), auth.NewUserStore(pool), memberID, ttl)
		},
	}

	cmd.Flags().Int32Var(&memberID, "member", 0, "member id")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultAccessTokenTTL, "access token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

// issueToken resolves memberID through users and prints a fresh token pair.
func issueToken(ctx context.Context, out io.Writer, users auth.UserStore, memberID int32, ttl time.Duration) error {
	// Hashing is never used here
	authenticator := auth.NewAuthenticator(users, sec.NewBcryptHasher(0), auth.WithAccessTokenTTL(ttl))

	identity, err := authenticator.ByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("authctl: member %d: %w", memberID, err)
	}

	pair, err := authenticator.IssueTokens(identity)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "member:       %d (%s, %s)\n", identity.ID(), identity.DisplayName(), identity.Kind())
	fmt.Fprintf(out, "access_token: %s\n", pair.AccessToken)
	fmt.Fprintf(out, "csrf_token:   %s\n", pair.CSRFToken)
	if pair.ExpiresAt.IsZero() {
		fmt.Fprintln(out, "expires_at:   never")
	} else {
		fmt.Fprintf(out, "expires_at:   %s\n", pair.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
