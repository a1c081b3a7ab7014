// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
	authpg "github.com/authgate/authgate/internal/auth/postgres"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/store"
)

// NewUserCmd creates the user subcommand group for operator-driven
// credential operations.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Operate on the credential store",
	}

	cmd.AddCommand(newUserRegisterCmd())
	cmd.AddCommand(newUserVerifyCmd())
	cmd.AddCommand(newUserWhoamiCmd())
	cmd.AddCommand(newUserResetRequestCmd())
	cmd.AddCommand(newUserResetCmd())

	return cmd
}

// services bundles the wired authentication core for a CLI invocation.
type services struct {
	auth     *auth.Service
	reset    *auth.PasswordResetService
	identity auth.IdentityResolver
	close    func()
}

// openServices connects the store and wires the services the way an
// embedding server would.
func openServices(ctx context.Context, cfg *config.Config) (*services, error) {
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	users := authpg.NewUserRepository(pool)
	hasher := auth.NewPoolHasher(auth.NewArgon2idHasher(), cfg.Auth.HashWorkers)

	authSvc, err := auth.NewServiceWithLogger(users, hasher, slog.Default())
	if err != nil {
		pool.Close()
		return nil, err
	}
	resetSvc, err := auth.NewPasswordResetServiceWithLogger(users, hasher, slog.Default())
	if err != nil {
		pool.Close()
		return nil, err
	}
	resolver, err := auth.NewIdentityResolver(cfg.Auth.Strategy, authSvc)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &services{auth: authSvc, reset: resetSvc, identity: resolver, close: pool.Close}, nil
}

func newUserRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <email> <password>",
		Short: "Register a new user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svcs, err := openServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svcs.close()

			user, err := svcs.auth.Register(cmd.Context(), args[0], args[1])
			if err != nil {
				if errors.Is(err, auth.ErrDuplicateEmail) {
					cmd.PrintErrln("email already registered")
				}
				return err
			}
			cmd.Printf("registered %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}

func newUserVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <email> <password>",
		Short: "Check a credential pair against the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svcs, err := openServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svcs.close()

			ok, err := svcs.auth.VerifyLogin(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if ok {
				cmd.Println("credentials valid")
			} else {
				cmd.Println("credentials invalid")
			}
			return nil
		},
	}
}

func newUserWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami <token>",
		Short: "Resolve a bearer credential to its user",
		Long: `Resolve a bearer credential through the configured identity
strategy (--auth.strategy) and print the user it proves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svcs, err := openServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svcs.close()

			user, err := svcs.identity.ResolveIdentity(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, auth.ErrNotFound) {
					cmd.PrintErrln("credential does not resolve to a user")
				}
				return err
			}
			cmd.Printf("%s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}

func newUserResetRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-request <email>",
		Short: "Issue a one-time password reset token",
		Long: `Issue a one-time password reset token for the given account.
The token is printed once for out-of-band delivery and is never stored or
logged in plaintext.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svcs, err := openServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svcs.close()

			token, err := svcs.reset.RequestReset(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, auth.ErrNotFound) {
					cmd.PrintErrln("no such account")
				}
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
}

func newUserResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <token> <new-password>",
		Short: "Consume a reset token and set a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svcs, err := openServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svcs.close()

			if err := svcs.reset.ResetPassword(cmd.Context(), args[0], args[1]); err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					cmd.PrintErrln("token unknown or already used")
				}
				return err
			}
			cmd.Println("password updated; existing sessions invalidated")
			return nil
		},
	}
}
