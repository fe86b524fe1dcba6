// Package cli is the interactive chat transport: one readline loop where
// every entered line is a slash command or a full agent task.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/service/agent"
	"github.com/sandevgo/trunk/internal/service/ui"
	"github.com/sandevgo/trunk/pkg/log"
)

const defaultSessionID = "cli-local"

// Router claims slash commands before input reaches the agent.
type Router interface {
	Execute(ctx context.Context, sessionID, input string) (string, bool)
}

type ReadLine struct {
	cfg    *config.AppConfig
	agent  *agent.Orchestrator
	router Router
	rl     *readline.Instance
}

func NewReadLine(orchestrator *agent.Orchestrator, router Router, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		agent:  orchestrator,
		router: router,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("chat started. Type 'exit' to quit, /help for commands.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if r.router != nil {
			if reply, handled := r.router.Execute(ctx, defaultSessionID, line); handled {
				fmt.Fprintf(r.rl.Stdout(), "%s\n", reply)
				continue
			}
		}

		result, err := r.agent.Run(ctx, line)
		if err != nil {
			logger.Error().Err(err).Msg("agent run failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}

		for _, step := range result.Trajectory {
			fmt.Fprintf(r.rl.Stdout(), "%s\n",
				ui.ToolStyle.Render(fmt.Sprintf("  > %s (%s)", step.Tool, step.Duration.Round(time.Millisecond))))
		}
		if result.Exhausted {
			fmt.Fprintf(r.rl.Stdout(), "%s\n", ui.WarnStyle.Render("[gave up after max iterations]"))
		}
		if result.Truncated {
			fmt.Fprintf(r.rl.Stdout(), "%s\n", ui.WarnStyle.Render("[reply was cut off by the model]"))
		}
		fmt.Fprintf(r.rl.Stdout(), "%s\n", result.Answer)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
