package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/trunk/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"TRUNK_RUNTIME_PATH" envDefault:".trunk"`
	// Which chat completion backend to use
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openrouter"`

	// Transport flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`

	// Skill roots, relative paths resolved against RuntimePath
	SkillsPaths []string `env:"TRUNK_SKILLS_PATHS" envSeparator:":" envDefault:"skills:skills-exported"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	// Keep in sync with GetRuntimePath so the installer and the services
	// agree on the directory.
	if !filepath.IsAbs(c.RuntimePath) {
		home, _ := os.UserHomeDir()
		c.RuntimePath = filepath.Join(home, c.RuntimePath)
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPromptPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetMemoryDocumentPath() string {
	return filepath.Join(c.RuntimePath, "memory.json")
}

func (c AppConfig) GetAuditDatabasePath() string {
	return filepath.Join(c.RuntimePath, "trunk.db")
}

func (c AppConfig) GetMCPConfigPath() string {
	return filepath.Join(c.RuntimePath, "mcp_config.json")
}

// GetSkillsRoots resolves every configured skills root against the runtime
// directory unless it is already absolute.
func (c AppConfig) GetSkillsRoots() []string {
	roots := make([]string, 0, len(c.SkillsPaths))
	for _, p := range c.SkillsPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.RuntimePath, p)
		}
		roots = append(roots, p)
	}
	return roots
}

// GetExportedSkillsRoot is where episode exports land so future runs can
// match them like any other skill.
func (c AppConfig) GetExportedSkillsRoot() string {
	return filepath.Join(c.RuntimePath, "skills-exported")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
