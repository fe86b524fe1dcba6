package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sandevgo/trunk/internal/transport/cli"
	"github.com/sandevgo/trunk/pkg/log"
	"github.com/sandevgo/trunk/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:          "chat",
	Short:        "Start an interactive chat session",
	Long:         `Starts the terminal chat loop only, regardless of which transports are enabled in the configuration.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		app := NewApp(ctx)
		rl, err := cli.NewReadLine(app.Agent, app.Router, app.Cfg)
		if err != nil {
			return err
		}

		// Background services start first, the chat loop runs in the
		// foreground so typing 'exit' ends the command.
		srv.StartServices(ctx, app.Services)
		defer func() {
			services := append(app.Services, srv.Service(rl))
			for _, s := range services {
				if err := s.Shutdown(ctx); err != nil {
					log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", s)
				}
			}
		}()

		if err := rl.Start(ctx); err != nil && err != context.Canceled {
			return err
		}
		logger.Info().Msg("chat session ended")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
