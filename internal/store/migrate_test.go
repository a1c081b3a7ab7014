// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMigrate implements migrateIface for unit tests.
type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	srcErr     error
	dbErr      error
}

func (f *fakeMigrate) Up() error                          { return f.upErr }
func (f *fakeMigrate) Down() error                        { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error)       { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Close() (source, db error)          { return f.srcErr, f.dbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("applies migrations", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Up())
	})

	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("propagates failure", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: errors.New("dirty database")}}
		require.Error(t, m.Up())
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("rolls back", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Down())
	})

	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})

	t.Run("nil version means nothing applied", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("propagates failure", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection refused")}}
		_, _, err := m.Version()
		require.Error(t, err)
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name    string
		srcErr  error
		dbErr   error
		wantErr bool
	}{
		{name: "clean close"},
		{name: "source error", srcErr: errors.New("source"), wantErr: true},
		{name: "database error", dbErr: errors.New("db"), wantErr: true},
		{name: "both fail", srcErr: errors.New("source"), dbErr: errors.New("db"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{srcErr: tt.srcErr, dbErr: tt.dbErr}}
			err := m.Close()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewMigrator_UnknownScheme(t *testing.T) {
	_, err := NewMigrator("bogus-scheme://nowhere")
	require.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var ups, downs int
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			ups++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a matching down")
	assert.GreaterOrEqual(t, ups, 1)
}
