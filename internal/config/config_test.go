// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.Database.URL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "session", cfg.Auth.Strategy)
	assert.Equal(t, 4, cfg.Auth.HashWorkers)
}

func TestLoad(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overlays defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  url: postgres://app@db.internal:5432/authgate
log:
  format: text
`)
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://app@db.internal:5432/authgate", cfg.Database.URL)
		assert.Equal(t, "text", cfg.Log.Format)
		// Untouched keys keep their defaults.
		assert.Equal(t, 4, cfg.Auth.HashWorkers)
	})

	t.Run("flags override file", func(t *testing.T) {
		path := writeConfigFile(t, `
log:
  format: text
`)
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("log.format", "", "")
		flags.Int("auth.hash_workers", 0, "")
		require.NoError(t, flags.Parse([]string{"--log.format=json", "--auth.hash_workers=8"}))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 8, cfg.Auth.HashWorkers)
	})

	t.Run("empty strategy is accepted", func(t *testing.T) {
		path := writeConfigFile(t, "auth:\n  strategy: \"\"\n")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "", cfg.Auth.Strategy)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "log: [unclosed")
		_, err := Load(path, nil)
		require.Error(t, err)
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty database url",
			yaml: "database:\n  url: \"\"\n",
		},
		{
			name: "unknown log format",
			yaml: "log:\n  format: xml\n",
		},
		{
			name: "unknown auth strategy",
			yaml: "auth:\n  strategy: bogus\n",
		},
		{
			name: "zero hash workers",
			yaml: "auth:\n  hash_workers: 0\n",
		},
		{
			name: "negative hash workers",
			yaml: "auth:\n  hash_workers: -2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := Load(path, nil)
			require.Error(t, err)
		})
	}
}
