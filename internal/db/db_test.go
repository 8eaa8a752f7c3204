package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalMode(t *testing.T, database *DB) string {
	t.Helper()

	var mode string
	require.NoError(t, database.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	return strings.ToLower(mode)
}

func TestNewDefaultsToWAL(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "wal.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.Health(context.Background()))
	assert.Equal(t, "wal", journalMode(t, database))
}

func TestNewWithOptionsDisablesWAL(t *testing.T) {
	database, err := NewWithOptions(filepath.Join(t.TempDir(), "journal.db"), Options{
		EnableWAL:      false,
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.Health(context.Background()))
	assert.Equal(t, "delete", journalMode(t, database))
}
