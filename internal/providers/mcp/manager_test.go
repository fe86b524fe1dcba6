package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(context.Background(), filepath.Join(t.TempDir(), "mcp_config.json"))
	require.NoError(t, err)
	return m
}

func TestNewManagerCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp_config.json")

	_, err := NewManager(context.Background(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Empty(t, cfg.MCPServers)
}

func TestNativeToolsAppearInCatalog(t *testing.T) {
	m := newTestManager(t)
	m.RegisterNativeTool("fetch_url", "Fetch a web page", json.RawMessage(`{"type":"object"}`), nil)

	tools, err := m.GetTools(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Function.Name)
	}
	assert.Contains(t, names, "manage_mcp")
	assert.Contains(t, names, "fetch_url")
}

func TestCallToolUnknownName(t *testing.T) {
	m := newTestManager(t)

	_, err := m.CallTool(context.Background(), "no_such_tool", `{}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool: no_such_tool")
}

func TestCallToolRoutesToNativeHandler(t *testing.T) {
	m := newTestManager(t)
	m.RegisterNativeTool("echo", "Echo the input", json.RawMessage(`{}`),
		func(_ context.Context, args json.RawMessage) (string, error) {
			return string(args), nil
		})

	out, err := m.CallTool(context.Background(), "echo", `{"msg":"hi"}`)

	require.NoError(t, err)
	assert.Equal(t, `{"msg":"hi"}`, out)
}

func TestManageMCPRemoveUnknownServer(t *testing.T) {
	m := newTestManager(t)

	out, err := m.ManageMCP(context.Background(), json.RawMessage(`{"action":"remove","server_name":"ghost"}`))

	require.NoError(t, err)
	assert.Contains(t, out, "ghost removed")
}

func TestManageMCPUnknownAction(t *testing.T) {
	m := newTestManager(t)

	_, err := m.ManageMCP(context.Background(), json.RawMessage(`{"action":"explode","server_name":"x"}`))

	assert.Error(t, err)
}
