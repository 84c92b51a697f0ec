package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMaintenanceCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))

	out, err := runCmd(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "tables ready")

	out, err = runCmd(t, "dbcheck")
	require.NoError(t, err)
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "friendships")

	_, err = runCmd(t, "drop")
	assert.EqualError(t, err, "refusing to drop tables without --yes")

	out, err = runCmd(t, "drop", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "tables dropped")

	_, err = runCmd(t, "dbcheck")
	assert.Error(t, err)
}
