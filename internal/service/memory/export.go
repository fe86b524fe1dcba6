package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/keywords"
)

// ExportAsSkill turns a successful episode into a SKILL.md document so the
// learned procedure becomes matchable for future tasks. Returns nil for
// unknown or failed episodes.
func (m *Manager) ExportAsSkill(id string) *core.Skill {
	episode, ok := m.Episode(id)
	if !ok || !episode.Success {
		return nil
	}

	name := skillNameFor(episode.Task)

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("name: " + name + "\n")
	b.WriteString("description: " + episode.Task + "\n")
	b.WriteString("---\n\n")

	if episode.Summary != "" {
		b.WriteString(episode.Summary + "\n\n")
	}

	b.WriteString("## Steps\n\n")
	for i, step := range episode.Steps {
		fmt.Fprintf(&b, "%d. Call `%s` with `%s`\n", i+1, step.Tool, step.Arguments)
	}

	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "Task: %s\n", episode.Task)
	fmt.Fprintf(&b, "Recorded: %s\n", episode.Timestamp.Format(time.RFC3339))
	if len(episode.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(episode.Tags, ", "))
	}

	return &core.Skill{
		Name:        name,
		Description: episode.Task,
		Content:     b.String(),
	}
}

// skillNameFor derives a short dash-joined name from the first task
// keywords.
func skillNameFor(task string) string {
	kws := keywords.Extract(task)
	if len(kws) > 3 {
		kws = kws[:3]
	}
	if len(kws) == 0 {
		return "exported-skill"
	}
	return strings.Join(kws, "-")
}
