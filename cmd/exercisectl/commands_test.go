package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"import", "backfill", "repair-gifs", "force-proxy", "link-ids", "reconcile", "list-missing"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestReconcileRequiresARepair(t *testing.T) {
	err := execute("reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--gifs")
}

func TestForceProxyRejectsDirectMode(t *testing.T) {
	err := execute("force-proxy", "--gif-mode", "direct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "force-proxy")
}

func TestInvalidOutputFormat(t *testing.T) {
	err := execute("list-missing", "-o", "xml", "--config", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestMissingCredentialFailsBeforeConnecting(t *testing.T) {
	t.Setenv("CATALOG_API_KEY", "")
	t.Setenv("GIF_PROXY_BASE_URL", "https://api.example.com")

	err := execute("import", "--config", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.api_key")
}
