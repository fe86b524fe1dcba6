package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sandevgo/trunk/pkg/log"
)

// ServerConfig is one entry in mcp_config.json.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

type Config struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

func (m *Manager) loadConfig(ctx context.Context) error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read mcp config: %w", err)
		}

		log.FromCtx(ctx).Info().Msg("mcp_config.json not found, creating default")

		defaultCfg := Config{MCPServers: make(map[string]ServerConfig)}
		data, err = json.MarshalIndent(defaultCfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(m.configPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
	}

	if err := json.Unmarshal(data, &m.config); err != nil {
		return fmt.Errorf("failed to parse mcp config: %w", err)
	}
	if m.config.MCPServers == nil {
		m.config.MCPServers = make(map[string]ServerConfig)
	}
	return nil
}

func (m *Manager) saveConfig() error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.config, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
