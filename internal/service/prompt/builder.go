// Package prompt assembles the system prompt sent at the top of every run:
// base instructions, the matched skills and the relevant memory. Building is
// pure, the same inputs always produce the same prompt byte for byte.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/trunk/internal/core"
)

type Config struct {
	BasePrompt         string
	SkillSectionTitle  string
	MemorySectionTitle string
	MaxSkills          int
	MaxEpisodes        int
	MaxEpisodeSteps    int
}

func DefaultConfig(basePrompt string) Config {
	return Config{
		BasePrompt:         basePrompt,
		SkillSectionTitle:  "## Relevant Skills",
		MemorySectionTitle: "## Relevant Memory",
		MaxSkills:          3,
		MaxEpisodes:        2,
		MaxEpisodeSteps:    5,
	}
}

type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build joins the base prompt with the skill and memory sections. Empty
// sections are omitted entirely, an empty library costs no tokens.
func (b *Builder) Build(matches []core.SkillMatch, episodes []core.Episode, facts []core.Fact) string {
	sections := []string{strings.TrimSpace(b.cfg.BasePrompt)}

	if s := b.skillSection(matches); s != "" {
		sections = append(sections, s)
	}
	if s := b.memorySection(episodes, facts); s != "" {
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n")
}

func (b *Builder) skillSection(matches []core.SkillMatch) string {
	if len(matches) == 0 {
		return ""
	}
	if b.cfg.MaxSkills > 0 && len(matches) > b.cfg.MaxSkills {
		matches = matches[:b.cfg.MaxSkills]
	}

	var sb strings.Builder
	sb.WriteString(b.cfg.SkillSectionTitle)
	for _, match := range matches {
		sb.WriteString("\n\n### " + match.Skill.Name + "\n\n")
		sb.WriteString(strings.TrimSpace(match.Skill.Content))
	}
	return sb.String()
}

func (b *Builder) memorySection(episodes []core.Episode, facts []core.Fact) string {
	if len(episodes) == 0 && len(facts) == 0 {
		return ""
	}
	if b.cfg.MaxEpisodes > 0 && len(episodes) > b.cfg.MaxEpisodes {
		episodes = episodes[:b.cfg.MaxEpisodes]
	}

	var sb strings.Builder
	sb.WriteString(b.cfg.MemorySectionTitle)

	for _, ep := range episodes {
		sb.WriteString("\n\nPreviously completed: " + ep.Task)
		if ep.Summary != "" {
			sb.WriteString("\nOutcome: " + ep.Summary)
		}

		steps := ep.Steps
		total := len(steps)
		if b.cfg.MaxEpisodeSteps > 0 && total > b.cfg.MaxEpisodeSteps {
			steps = steps[:b.cfg.MaxEpisodeSteps]
		}
		for i, step := range steps {
			fmt.Fprintf(&sb, "\n%d. %s(%s)", i+1, step.Tool, argsPreview(step.Arguments))
		}
		if len(steps) < total {
			fmt.Fprintf(&sb, "\n... (%d steps total)", total)
		}
	}

	if len(facts) > 0 {
		sb.WriteString("\n\nKnown facts:")
		for _, fact := range facts {
			fmt.Fprintf(&sb, "\n- **%s**: %s", fact.Key, fact.Value)
		}
	}

	return sb.String()
}

// argsPreview renders tool arguments compactly with sorted keys so the
// prompt stays deterministic regardless of how the JSON arrived.
func argsPreview(raw string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return raw
	}

	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, args[key]))
	}
	return strings.Join(parts, ", ")
}
