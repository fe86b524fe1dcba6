package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/log"
)

const skillFileName = "SKILL.md"

// LoadRoots scans each root for <root>/<name>/SKILL.md and parses what it
// finds. A missing root or a broken skill file is logged and skipped so one
// bad directory cannot take the whole library down.
func LoadRoots(ctx context.Context, roots []string) []core.Skill {
	logger := log.FromCtx(ctx)
	var skills []core.Skill

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("root", root).Msg("failed to read skills root")
			}
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			path := filepath.Join(root, entry.Name(), skillFileName)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}

			skill, err := Parse(string(data))
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("skipping malformed skill")
				continue
			}
			if skill.Name == "" {
				skill.Name = entry.Name()
			}
			skill.FilePath = path

			skills = append(skills, skill)
			logger.Debug().Str("skill", skill.Name).Str("path", path).Msg("loaded skill")
		}
	}

	return skills
}

// Parse reads a SKILL.md document. The file opens with a `---` fenced block
// of `key: value` lines (name, description); everything after the closing
// fence is the skill body.
func Parse(raw string) (core.Skill, error) {
	var skill core.Skill

	content := strings.ReplaceAll(raw, "\r\n", "\n")
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		skill.Content = strings.TrimSpace(content)
		return skill, nil
	}

	front, body, ok := strings.Cut(rest, "\n---")
	if !ok {
		return skill, ErrUnclosedFrontmatter
	}

	for _, line := range strings.Split(front, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "name":
			skill.Name = value
		case "description":
			skill.Description = value
		}
	}

	skill.Content = strings.TrimSpace(body)
	return skill, nil
}
