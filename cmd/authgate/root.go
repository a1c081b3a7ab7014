// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authgate",
		Short: "Authgate - session-backed authentication core",
		Long: `Authgate manages the credential store behind a session-backed
authentication core: user registration, login verification, opaque session
tokens, and one-time password reset tokens.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database.url", "", "PostgreSQL DSN for the credential store")
	cmd.PersistentFlags().String("log.format", "", "log format (json or text)")
	cmd.PersistentFlags().String("auth.strategy", "", "identity resolution strategy")
	cmd.PersistentFlags().Int("auth.hash_workers", 0, "max concurrent password hashing operations")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}

// loadConfig builds the runtime config for a subcommand: defaults, the
// optional --config file, then explicitly set persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	// Only flags the user actually set may override file values; unset
	// flags would otherwise clobber them with zero values.
	changed := pflag.NewFlagSet("overrides", pflag.ContinueOnError)
	cmd.Root().PersistentFlags().Visit(func(f *pflag.Flag) {
		if f.Name != "config" {
			changed.AddFlag(f)
		}
	})

	path := configFile
	if path == "" {
		// Fall back to the XDG config location when it exists.
		if candidate := xdg.ConfigFile(); fileExists(candidate) {
			path = candidate
		}
	}

	cfg, err := config.Load(path, changed)
	if err != nil {
		return nil, err
	}

	logging.SetDefault("authgate", cmd.Root().Version, cfg.Log.Format)
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
