// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/store"
)

// NewServeCmd creates the serve subcommand: the observability sidecar
// exposing authentication metrics and credential store health probes.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and health probes",
		Long: `Run the observability endpoint: Prometheus metrics on /metrics and
Kubernetes-style probes on /healthz/liveness and /healthz/readiness.
Readiness reflects credential store connectivity.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9100", "listen address for metrics and health probes")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pool, err := store.Connect(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	server := observability.NewServer(addr, func(ctx context.Context) bool {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return pool.Ping(ctx) == nil
	})

	errCh, err := server.Start()
	if err != nil {
		return err
	}
	cmd.Printf("serving on %s\n", server.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(ctx)
}
