package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/trunk/configs"
	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/providers/llm"
	"github.com/sandevgo/trunk/internal/providers/mcp"
	"github.com/sandevgo/trunk/internal/providers/tools"
	"github.com/sandevgo/trunk/internal/service/agent"
	"github.com/sandevgo/trunk/internal/service/command"
	"github.com/sandevgo/trunk/internal/service/memory"
	"github.com/sandevgo/trunk/internal/service/prompt"
	"github.com/sandevgo/trunk/internal/service/recorder"
	"github.com/sandevgo/trunk/internal/service/skills"
	"github.com/sandevgo/trunk/internal/storage/document"
	"github.com/sandevgo/trunk/internal/storage/sqlite"
	"github.com/sandevgo/trunk/internal/transport/cli"
	"github.com/sandevgo/trunk/internal/transport/telegram"
	"github.com/sandevgo/trunk/pkg/log"
	"github.com/sandevgo/trunk/pkg/srv"
)

// App holds the wired components so each subcommand can pick what it
// needs. Services lists everything with a lifecycle, in start order.
type App struct {
	Cfg      *config.AppConfig
	AgentCfg *config.AgentConfig
	Skills   *skills.Manager
	Memory   *memory.Manager
	MCP      *mcp.Manager
	Agent    *agent.Orchestrator
	Router   *command.Router
	Services []srv.Service
}

func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	agentCfg := config.NewAgentConfig(ctx)

	// 2. Audit storage
	db, err := sqlite.NewDB(ctx, appCfg.GetAuditDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize audit storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	auditRepo := sqlite.NewAuditRepo(db)

	// 3. Memory
	store := document.NewStore(appCfg.GetMemoryDocumentPath())
	memoryMgr, err := memory.NewManager(ctx, store, agentCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize memory")
	}

	// 4. Skills
	skillsMgr := skills.NewManager(agentCfg)
	loaded := skillsMgr.Reload(ctx, appCfg.GetSkillsRoots())
	logger.Info().Int("count", loaded).Msg("skills loaded")

	// 5. AI Provider
	aiProvider, err := llm.NewProvider(ctx, appCfg.LLMProvider)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 6. MCP & Tools
	mcpManager, err := initMCP(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize MCP manager")
	}
	services = append(services, mcpManager)

	// 7. Context assembly
	promptCfg := prompt.DefaultConfig(loadSystemPrompt(ctx, appCfg))
	promptCfg.MaxSkills = agentCfg.MaxSkills
	promptCfg.MaxEpisodes = agentCfg.MaxEpisodes
	promptCfg.MaxEpisodeSteps = agentCfg.MaxEpisodeSteps
	builder := prompt.NewBuilder(promptCfg)

	// 8. Agent Service
	executor := agent.NewExecutor(mcpManager, agentCfg.ToolOutputLimit)
	orchestrator := agent.NewOrchestrator(
		aiProvider,
		executor,
		builder,
		skillsMgr,
		memoryMgr,
		recorder.New(auditRepo),
		agentCfg,
	)

	return &App{
		Cfg:      appCfg,
		AgentCfg: agentCfg,
		Skills:   skillsMgr,
		Memory:   memoryMgr,
		MCP:      mcpManager,
		Agent:    orchestrator,
		Router:   command.NewRouter(skillsMgr, memoryMgr, agentCfg),
		Services: services,
	}
}

// WithTransports returns the full service list including the enabled
// transports, ready for srv.StartServices.
func (a *App) WithTransports(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := a.Services

	if a.Cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.Agent, a.Router)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	if a.Cfg.EnableCLI {
		rl, err := cli.NewReadLine(a.Agent, a.Router, a.Cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize CLI")
		}
		services = append(services, rl)
	}

	return services
}

func initMCP(ctx context.Context, cfg *config.AppConfig) (*mcp.Manager, error) {
	mgr, err := mcp.NewManager(ctx, cfg.GetMCPConfigPath())
	if err != nil {
		return nil, err
	}

	register := func(defs map[string]tools.Definition) {
		for name, def := range defs {
			mgr.RegisterNativeTool(name, def.Description, json.RawMessage(def.Schema), def.Handler)
		}
	}

	// Register Core Tools
	register(tools.NewFilesystem(cfg.GetRuntimePath()).GetDefinitions())
	register(tools.NewShell(cfg.GetRuntimePath()).GetDefinitions())
	register(tools.NewFetch().GetDefinitions())

	return mgr, nil
}

// loadSystemPrompt prefers the SYSTEM.md the installer put in the runtime
// directory so users can edit it. The embedded copy is the fallback.
func loadSystemPrompt(ctx context.Context, cfg *config.AppConfig) string {
	raw, err := os.ReadFile(cfg.GetSystemPromptPath())
	if err == nil {
		return string(raw)
	}

	log.FromCtx(ctx).Warn().Err(err).Msg("SYSTEM.md not found in runtime directory, using built-in prompt")
	embedded, _ := configs.FS.ReadFile("SYSTEM.md")
	return fmt.Sprintf(string(embedded), cfg.GetRuntimePath())
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
