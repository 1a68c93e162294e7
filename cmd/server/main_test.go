package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogicum/internal/auth"
	"blogicum/internal/config"
	"blogicum/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAdminCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blog.db")
	t.Setenv("BLOGICUM_DB_PATH", dbPath)
	t.Setenv("BLOGICUM_LOG_LEVEL", "error")

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	out, err = run(t, "category", "create", "travel", "Travel", "-d", "Trips")
	require.NoError(t, err)
	assert.Contains(t, out, `Created category "travel"`)

	_, err = run(t, "category", "unpublish", "travel")
	require.NoError(t, err)

	out, err = run(t, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "published=false")

	_, err = run(t, "location", "create", "Moscow")
	require.NoError(t, err)

	_, err = run(t, "user", "create", "alice", "--password", "short")
	assert.Error(t, err)

	_, err = run(t, "user", "create", "alice", "--password", "long-enough", "--first-name", "Alice")
	require.NoError(t, err)

	_, err = run(t, "category", "delete", "missing")
	assert.Error(t, err)

	cfg := &config.Config{DBPath: dbPath}
	conn, err := openDB(context.Background(), cfg)
	require.NoError(t, err)
	defer conn.Close()
	st := store.New(conn)

	c, err := st.GetCategoryBySlug(context.Background(), "travel")
	require.NoError(t, err)
	assert.Equal(t, "Trips", c.Description)
	assert.False(t, c.IsPublished)

	locations, err := st.ListLocations(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Moscow", locations[0].Name)

	u, err := st.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)
	assert.True(t, auth.CheckPassword("long-enough", u.PasswordHash))
}
