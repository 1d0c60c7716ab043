// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/rankboard/internal/platform/config"
	"github.com/taibuivan/rankboard/internal/platform/migration"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations from MIGRATION_PATH to DATABASE_URL.`,
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, commandLogger(cmd)); err != nil {
		return fmt.Errorf("authctl: migrate: %w", err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
