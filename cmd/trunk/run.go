package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/trunk/internal/service/ui"
	"github.com/sandevgo/trunk/pkg/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:          "run [task]",
	Short:        "Run a single task and print the answer",
	Long:         `Runs one task through the agent loop with all tools available, prints the answer and exits.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)

		// run uses the service lifecycle directly, there is no signal loop
		for _, s := range app.Services {
			if err := s.Start(ctx); err != nil {
				return err
			}
		}
		defer func() {
			for _, s := range app.Services {
				if err := s.Shutdown(ctx); err != nil {
					log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", s)
				}
			}
		}()

		task := strings.Join(args, " ")
		result, err := app.Agent.Run(ctx, task)
		if err != nil {
			return err
		}

		for _, step := range result.Trajectory {
			fmt.Println(ui.ToolStyle.Render(fmt.Sprintf("  > %s (%s)", step.Tool, step.Duration.Round(time.Millisecond))))
		}
		if result.Exhausted {
			fmt.Println(ui.WarnStyle.Render("[gave up after max iterations]"))
		}
		if result.Truncated {
			fmt.Println(ui.WarnStyle.Render("[reply was cut off by the model]"))
		}
		fmt.Println(result.Answer)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
