package core

import "time"

// MemorySchemaVersion is written into every persisted memory document so
// future formats can migrate on load.
const MemorySchemaVersion = 1

type FactType string

const (
	FactWebsite    FactType = "website"
	FactPreference FactType = "preference"
	FactKnowledge  FactType = "knowledge"
)

// EpisodeStep is one executed tool call. The same shape serves as the
// trajectory element of a live run and as the persisted step of an episode.
type EpisodeStep struct {
	Tool      string        `json:"tool"`
	Arguments string        `json:"arguments"`
	Result    string        `json:"result"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Episode is a recorded past task execution. Append-only, never mutated
// after creation.
type Episode struct {
	ID        string        `json:"id"`
	Task      string        `json:"task"`
	Steps     []EpisodeStep `json:"steps"`
	Success   bool          `json:"success"`
	Summary   string        `json:"summary,omitempty"`
	Tags      []string      `json:"tags"`
	Timestamp time.Time     `json:"timestamp"`
}

// Fact is a durable key/value knowledge record, unique per (type, key).
type Fact struct {
	ID        string    `json:"id"`
	Type      FactType  `json:"type"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryDocument is the sole persisted aggregate for episodes and facts.
// It is loaded once at startup and rewritten in full on every mutation.
type MemoryDocument struct {
	Episodes []Episode `json:"episodes"`
	Facts    []Fact    `json:"facts"`
	Version  int       `json:"version"`
}

func EmptyMemoryDocument() MemoryDocument {
	return MemoryDocument{Version: MemorySchemaVersion}
}

// MemoryStats is a point-in-time summary of the memory document.
type MemoryStats struct {
	Episodes    int
	Successful  int
	Facts       int
	FactsByType map[FactType]int
}

// Skill is a named capability guide loaded from a SKILL.md document.
// Immutable once loaded.
type Skill struct {
	Name        string
	Description string
	Content     string
	FilePath    string
}

// SkillMatch pairs a skill with its relevance to a task. Derived, never
// persisted.
type SkillMatch struct {
	Skill Skill
	Score float64
}
