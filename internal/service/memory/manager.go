// Package memory keeps what the agent learned: episodes of finished tasks
// and long-lived facts. Everything lives in one JSON document behind a
// core.DocumentStore; the manager works on an in-memory copy and writes the
// whole document back after each mutation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/keywords"
	"github.com/sandevgo/trunk/pkg/log"
)

type Manager struct {
	mu    sync.RWMutex
	store core.DocumentStore
	doc   core.MemoryDocument
	cfg   *config.AgentConfig

	now   func() time.Time
	newID func() string
}

func NewManager(ctx context.Context, store core.DocumentStore, cfg *config.AgentConfig) (*Manager, error) {
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory document: %w", err)
	}

	log.FromCtx(ctx).Info().
		Int("episodes", len(doc.Episodes)).
		Int("facts", len(doc.Facts)).
		Msg("memory loaded")

	return &Manager{
		store: store,
		doc:   doc,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Record appends a finished task as an episode. Empty tags fall back to the
// tag dictionary. A failed save is reported but the episode stays in memory,
// so the running process keeps what it just learned.
func (m *Manager) Record(ctx context.Context, task string, steps []core.EpisodeStep, success bool, summary string, tags []string) (core.Episode, error) {
	if len(tags) == 0 {
		tags = keywords.Tags(task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	episode := core.Episode{
		ID:        m.newID(),
		Task:      task,
		Steps:     steps,
		Success:   success,
		Summary:   summary,
		Tags:      tags,
		Timestamp: m.now().UTC(),
	}
	m.doc.Episodes = append(m.doc.Episodes, episode)

	if err := m.store.Save(ctx, m.doc); err != nil {
		return episode, fmt.Errorf("failed to persist episode: %w", err)
	}
	return episode, nil
}

// Recall returns past successful episodes relevant to the task, best first,
// at most limit. Failed episodes never come back; there is nothing to
// imitate in them.
func (m *Manager) Recall(task string, limit int) []core.Episode {
	kws := keywords.Extract(task)

	m.mu.RLock()
	defer m.mu.RUnlock()

	taskTags := keywords.Tags(task)
	now := m.now().UTC()

	type scored struct {
		episode core.Episode
		score   float64
	}
	var candidates []scored
	for _, ep := range m.doc.Episodes {
		if !ep.Success {
			continue
		}
		score := m.relevance(ep, kws, taskTags, now)
		if score <= m.cfg.ScoreCutoff {
			continue
		}
		candidates = append(candidates, scored{episode: ep, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]core.Episode, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.episode)
	}
	return out
}

// relevance blends keyword overlap with the stored task, shared tags and
// how fresh the episode is. Recency decays linearly to zero over the
// configured window.
func (m *Manager) relevance(ep core.Episode, kws, taskTags []string, now time.Time) float64 {
	score := 0.0

	if len(kws) > 0 {
		epTask := strings.ToLower(ep.Task)
		epKws := keywords.Extract(ep.Task)
		matched := 0
		for _, kw := range kws {
			if containsKeyword(epKws, kw) || strings.Contains(epTask, kw) {
				matched++
			}
		}
		score += m.cfg.TextWeight * float64(matched) / float64(len(kws))
	}

	if len(taskTags) > 0 {
		shared := 0
		for _, tag := range taskTags {
			for _, have := range ep.Tags {
				if tag == have {
					shared++
					break
				}
			}
		}
		score += m.cfg.TagWeight * float64(shared) / float64(len(taskTags))
	}

	// A future-dated timestamp must not earn more than a brand-new episode.
	ageDays := now.Sub(ep.Timestamp).Hours() / 24
	if recency := m.cfg.RecencyWeight * (1 - ageDays/m.cfg.RecencyWindowDays); recency > 0 {
		if recency > m.cfg.RecencyWeight {
			recency = m.cfg.RecencyWeight
		}
		score += recency
	}

	if score > 1 {
		score = 1
	}
	return score
}

func containsKeyword(kws []string, kw string) bool {
	for _, have := range kws {
		if have == kw {
			return true
		}
	}
	return false
}

// Episode returns a stored episode by id.
func (m *Manager) Episode(id string) (core.Episode, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ep := range m.doc.Episodes {
		if ep.ID == id {
			return ep, true
		}
	}
	return core.Episode{}, false
}

func (m *Manager) Episodes() []core.Episode {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Episode, len(m.doc.Episodes))
	copy(out, m.doc.Episodes)
	return out
}

// RecordFact stores a fact, replacing any existing one with the same type
// and key so repeated observations update in place. The original id
// survives the update.
func (m *Manager) RecordFact(ctx context.Context, factType core.FactType, key, value string) (core.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fact := core.Fact{
		ID:        m.newID(),
		Type:      factType,
		Key:       key,
		Value:     value,
		Timestamp: m.now().UTC(),
	}

	replaced := false
	for i, have := range m.doc.Facts {
		if have.Type == factType && have.Key == key {
			fact.ID = have.ID
			m.doc.Facts[i] = fact
			replaced = true
			break
		}
	}
	if !replaced {
		m.doc.Facts = append(m.doc.Facts, fact)
	}

	if err := m.store.Save(ctx, m.doc); err != nil {
		return fact, fmt.Errorf("failed to persist fact: %w", err)
	}
	return fact, nil
}

// Fact looks up a single fact by exact type and key.
func (m *Manager) Fact(factType core.FactType, key string) (core.Fact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, fact := range m.doc.Facts {
		if fact.Type == factType && fact.Key == key {
			return fact, true
		}
	}
	return core.Fact{}, false
}

func (m *Manager) FactsByType(factType core.FactType) []core.Fact {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Fact
	for _, fact := range m.doc.Facts {
		if fact.Type == factType {
			out = append(out, fact)
		}
	}
	return out
}

// SearchFacts matches the query case-insensitively against keys and values.
func (m *Manager) SearchFacts(query string) []core.Fact {
	query = strings.ToLower(query)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Fact
	for _, fact := range m.doc.Facts {
		if strings.Contains(strings.ToLower(fact.Key), query) ||
			strings.Contains(strings.ToLower(fact.Value), query) {
			out = append(out, fact)
		}
	}
	return out
}

// FactsForTask gathers the facts worth showing for a task: the union of
// SearchFacts over the task's keywords, in store order, capped at limit.
func (m *Manager) FactsForTask(task string, limit int) []core.Fact {
	kws := keywords.Extract(task)
	if len(kws) == 0 {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Fact
	for _, fact := range m.doc.Facts {
		key := strings.ToLower(fact.Key)
		value := strings.ToLower(fact.Value)
		for _, kw := range kws {
			if strings.Contains(key, kw) || strings.Contains(value, kw) {
				out = append(out, fact)
				break
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Stats summarizes what memory currently holds.
func (m *Manager) Stats() core.MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := core.MemoryStats{
		Episodes:    len(m.doc.Episodes),
		Facts:       len(m.doc.Facts),
		FactsByType: make(map[core.FactType]int),
	}
	for _, ep := range m.doc.Episodes {
		if ep.Success {
			stats.Successful++
		}
	}
	for _, fact := range m.doc.Facts {
		stats.FactsByType[fact.Type]++
	}
	return stats
}
