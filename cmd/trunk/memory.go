package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/trunk/internal/service/ui"
	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect episodes and facts the agent remembers",
}

var memoryStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show memory document statistics",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		stats := app.Memory.Stats()

		fmt.Printf("%s %d (%d successful)\n", ui.TitleStyle.Render("Episodes"), stats.Episodes, stats.Successful)
		fmt.Printf("%s %d\n", ui.TitleStyle.Render("Facts"), stats.Facts)
		for factType, count := range stats.FactsByType {
			fmt.Printf("  %s: %d\n", factType, count)
		}
		return nil
	},
}

var memorySearchCmd = &cobra.Command{
	Use:          "search [query]",
	Short:        "Search stored facts",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		facts := app.Memory.SearchFacts(strings.Join(args, " "))
		if len(facts) == 0 {
			fmt.Println("No fact matched the query.")
			return nil
		}

		for _, fact := range facts {
			fmt.Printf("[%s] %s  %s\n", fact.Type, ui.TitleStyle.Render(fact.Key), ui.DescStyle.Render(fact.Value))
		}
		return nil
	},
}

var memoryExportCmd = &cobra.Command{
	Use:          "export [episode-id]",
	Short:        "Export a successful episode as a reusable skill",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		skill := app.Memory.ExportAsSkill(args[0])
		if skill == nil {
			return fmt.Errorf("no successful episode with id %s", args[0])
		}

		dir := filepath.Join(app.Cfg.GetExportedSkillsRoot(), skill.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create skill directory: %w", err)
		}

		path := filepath.Join(dir, "SKILL.md")
		if err := os.WriteFile(path, []byte(skill.Content), 0644); err != nil {
			return fmt.Errorf("failed to write skill: %w", err)
		}

		fmt.Printf("Exported %s to %s\n", ui.TitleStyle.Render(skill.Name), path)
		return nil
	},
}

func init() {
	memoryCmd.AddCommand(memoryStatsCmd)
	memoryCmd.AddCommand(memorySearchCmd)
	memoryCmd.AddCommand(memoryExportCmd)
	rootCmd.AddCommand(memoryCmd)
}
