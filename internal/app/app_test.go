package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-ai/backend/internal/config"
)

func TestNew(t *testing.T) {
	dir, err := os.MkdirTemp("", "prism-test-*")
	require.NoError(t, err)
	defer func() { require.NoError(t, os.RemoveAll(dir)) }()

	cfg := &config.Config{
		AppPort:      8000,
		DatabasePath: filepath.Join(dir, "test.db"),
		ProviderURL:  "http://localhost:1",
		ProviderKey:  "test-key",
		MainModel:    "main",
		SupportModel: "support",
		LogLevel:     "DEBUG",
	}

	app, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
	defer func() { require.NoError(t, app.DB.Close()) }()

	assert.NotNil(t, app.DB)
	assert.NotNil(t, app.Server)
	assert.Equal(t, ":8000", app.Server.Addr)

	// Migrations ran: core tables exist.
	for _, table := range []string{"conversations", "messages", "preferences", "app_state"} {
		var name string
		err := app.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}
