// Package skills keeps the library of SKILL.md playbooks and scores them
// against an incoming task so the most relevant ones can be injected into
// the prompt.
package skills

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/keywords"
	"github.com/sandevgo/trunk/pkg/log"
)

var ErrUnclosedFrontmatter = errors.New("skill frontmatter is not closed")

type Manager struct {
	mu     sync.RWMutex
	byName map[string]core.Skill
	order  []string
	cfg    *config.AgentConfig
}

func NewManager(cfg *config.AgentConfig) *Manager {
	return &Manager{
		byName: make(map[string]core.Skill),
		cfg:    cfg,
	}
}

// Reload replaces the library with whatever the roots currently contain.
// A later root wins on a name collision.
func (m *Manager) Reload(ctx context.Context, roots []string) int {
	loaded := LoadRoots(ctx, roots)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byName = make(map[string]core.Skill, len(loaded))
	m.order = m.order[:0]
	for _, skill := range loaded {
		if _, seen := m.byName[skill.Name]; !seen {
			m.order = append(m.order, skill.Name)
		}
		m.byName[skill.Name] = skill
	}

	log.FromCtx(ctx).Info().Int("count", len(m.byName)).Msg("skills library reloaded")
	return len(m.byName)
}

// Add registers a single skill, used for exported episodes so they become
// matchable without a full reload.
func (m *Manager) Add(skill core.Skill) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.byName[skill.Name]; !seen {
		m.order = append(m.order, skill.Name)
	}
	m.byName[skill.Name] = skill
}

func (m *Manager) Get(name string) (core.Skill, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	skill, ok := m.byName[name]
	return skill, ok
}

// List returns the skills in load order.
func (m *Manager) List() []core.Skill {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Skill, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.byName[name])
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName)
}

// Match scores every skill against the task and returns the ones above the
// cutoff, best first, at most limit. Ties keep load order.
func (m *Manager) Match(task string, limit int) []core.SkillMatch {
	taskLower := strings.ToLower(task)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []core.SkillMatch
	for _, name := range m.order {
		skill := m.byName[name]
		score := m.score(taskLower, skill)
		if score <= m.cfg.ScoreCutoff {
			continue
		}
		matches = append(matches, core.SkillMatch{Skill: skill, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// score blends how many of the skill description's keywords the task
// mentions with how much weight those keywords carry. Both components are
// normalized by the description's keyword count, so a wordy task cannot
// dilute an on-topic skill.
func (m *Manager) score(taskLower string, skill core.Skill) float64 {
	kws := keywords.Extract(skill.Description)
	if len(kws) == 0 {
		return 0
	}

	matched := 0
	weighted := 0.0
	for _, kw := range kws {
		if !strings.Contains(taskLower, kw) {
			continue
		}
		matched++
		weighted += keywords.Weight(kw)
	}
	if matched == 0 {
		return 0
	}

	base := float64(matched) / float64(len(kws))
	bonus := weighted / float64(len(kws)*2)

	score := m.cfg.MatchCountWeight*base + m.cfg.MatchLengthWeight*bonus
	if score > 1 {
		score = 1
	}
	return score
}
