package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const manageMcpSchema = `
{
  "type": "object",
  "properties": {
    "action": {
      "type": "string",
      "enum": ["add", "remove", "reload"],
      "description": "What to do with the server"
    },
    "server_name": {
      "type": "string",
      "description": "Unique name for the server"
    },
    "command": {
      "type": "string",
      "description": "Command to run (e.g. npx, python, node). Required for 'add'."
    },
    "args": {
      "type": "array",
      "items": { "type": "string" },
      "description": "Arguments for the command"
    },
    "env": {
      "type": "object",
      "additionalProperties": { "type": "string" },
      "description": "Environment variables (e.g. API keys)"
    }
  },
  "required": ["action", "server_name"]
}
`

// ManageMCP lets the agent reconfigure its own tool servers at runtime.
func (m *Manager) ManageMCP(ctx context.Context, args json.RawMessage) (string, error) {
	var input struct {
		Action     string            `json:"action"`
		ServerName string            `json:"server_name"`
		Command    string            `json:"command"`
		Args       []string          `json:"args"`
		Env        map[string]string `json:"env"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	switch input.Action {
	case "add":
		if input.Command == "" {
			return "", fmt.Errorf("command is required for add action")
		}

		cleanEnv := make(map[string]string)
		for k, v := range input.Env {
			cleanEnv[strings.Trim(k, "\"'")] = v
		}

		newCfg := ServerConfig{
			Command: input.Command,
			Args:    input.Args,
			Env:     cleanEnv,
		}

		// Connect without the lock, swapping state is the quick part.
		newClient, err := m.connectToServer(ctx, newCfg)
		if err != nil {
			return "", fmt.Errorf("failed to connect to new server: %w", err)
		}

		m.mu.Lock()
		if oldCli, exists := m.clients[input.ServerName]; exists {
			_ = oldCli.Close()
		}
		m.clients[input.ServerName] = newClient
		m.config.MCPServers[input.ServerName] = newCfg
		m.cacheValid = false
		m.mu.Unlock()

		if err := m.saveConfig(); err != nil {
			return "Server started but config save failed", err
		}
		return fmt.Sprintf("Server %s added and started", input.ServerName), nil

	case "remove":
		m.mu.Lock()
		if oldCli, exists := m.clients[input.ServerName]; exists {
			_ = oldCli.Close()
			delete(m.clients, input.ServerName)
		}
		delete(m.config.MCPServers, input.ServerName)
		m.cacheValid = false
		m.mu.Unlock()

		if err := m.saveConfig(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Server %s removed", input.ServerName), nil

	case "reload":
		m.mu.RLock()
		srvCfg, exists := m.config.MCPServers[input.ServerName]
		m.mu.RUnlock()

		if !exists {
			return "", fmt.Errorf("server %s not found in config", input.ServerName)
		}

		newClient, err := m.connectToServer(ctx, srvCfg)
		if err != nil {
			return "", fmt.Errorf("failed to reconnect: %w", err)
		}

		m.mu.Lock()
		if oldCli, exists := m.clients[input.ServerName]; exists {
			_ = oldCli.Close()
		}
		m.clients[input.ServerName] = newClient
		m.cacheValid = false
		m.mu.Unlock()

		return fmt.Sprintf("Server %s reloaded", input.ServerName), nil

	default:
		return "", fmt.Errorf("unknown action: %s", input.Action)
	}
}
