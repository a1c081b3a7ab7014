// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show credential store connectivity and schema version",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pool, err := store.Connect(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	cmd.Println("database: reachable")

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is not actionable here

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("schema: no migrations applied")
		return nil
	}
	cmd.Printf("schema: version %d", version)
	if dirty {
		cmd.Printf(" (dirty - manual repair required)")
	}
	cmd.Println()
	return nil
}
