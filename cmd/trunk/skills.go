package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/trunk/internal/service/ui"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect the loaded skill library",
}

var skillsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List every loaded skill",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		loaded := app.Skills.List()
		if len(loaded) == 0 {
			fmt.Println("No skills loaded. Add SKILL.md files under the skills directory.")
			return nil
		}

		for _, skill := range loaded {
			fmt.Printf("%s  %s\n", ui.TitleStyle.Render(skill.Name), ui.DescStyle.Render(skill.Description))
		}
		return nil
	},
}

var skillsMatchCmd = &cobra.Command{
	Use:          "match [task]",
	Short:        "Score skills against a task",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		task := strings.Join(args, " ")
		matches := app.Skills.Match(task, app.AgentCfg.MaxSkills)
		if len(matches) == 0 {
			fmt.Println("No skill matched the task.")
			return nil
		}

		for _, match := range matches {
			fmt.Printf("%s  %s\n", ui.TitleStyle.Render(match.Skill.Name), ui.DescStyle.Render(fmt.Sprintf("%.2f", match.Score)))
		}
		return nil
	},
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsMatchCmd)
	rootCmd.AddCommand(skillsCmd)
}
