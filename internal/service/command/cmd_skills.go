package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/internal/service/skills"
)

type SkillsCommand struct {
	skills    *skills.Manager
	maxSkills int
	formatter *ResponseFormatter
}

func NewSkillsCommand(mgr *skills.Manager, maxSkills int) core.Command {
	return &SkillsCommand{
		skills:    mgr,
		maxSkills: maxSkills,
		formatter: NewResponseFormatter(),
	}
}

func (c *SkillsCommand) Name() string {
	return "skills"
}

func (c *SkillsCommand) Description() string {
	return "List loaded skills or match them against a task"
}

func (c *SkillsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) > 0 {
		return c.match(strings.Join(args, " ")), nil
	}
	return c.list(), nil
}

func (c *SkillsCommand) list() string {
	loaded := c.skills.List()
	if len(loaded) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Skills"),
			c.formatter.Label("Status", "No skills loaded."),
			c.formatter.Tip("Add SKILL.md files under the skills directory"),
		)
	}

	items := make([]string, len(loaded))
	for i, skill := range loaded {
		items[i] = fmt.Sprintf("**%s** — %s", skill.Name, skill.Description)
	}
	return c.formatter.Combine(
		c.formatter.Info("Skills"),
		c.formatter.Label("Loaded", fmt.Sprintf("%d", len(loaded))),
		"\n",
		c.formatter.List(items),
	)
}

func (c *SkillsCommand) match(task string) string {
	matches := c.skills.Match(task, c.maxSkills)
	if len(matches) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Skill Match"),
			c.formatter.Label("Result", "No skill matched the task."),
		)
	}

	items := make([]string, len(matches))
	for i, match := range matches {
		items[i] = fmt.Sprintf("**%s** (%.2f)", match.Skill.Name, match.Score)
	}
	return c.formatter.Combine(
		c.formatter.Info("Skill Match"),
		c.formatter.List(items),
	)
}
