// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the authctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "rankboard authentication operator tool",
		Long: `authctl manages the member authentication store: schema migrations,
password digests, and tokens for operator use.

Database commands read the same environment variables as the API server.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewIssueTokenCmd())

	return cmd
}

// commandLogger writes text logs to the command's error stream.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}
