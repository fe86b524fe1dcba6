package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/trunk/pkg/log"
)

// AgentConfig carries the orchestration loop knobs and the relevance scoring
// weights. The weights were tuned by trial, not derived, so they stay
// configurable rather than hard-coded.
type AgentConfig struct {
	MaxIterations   int `env:"AGENT_MAX_ITERATIONS" envDefault:"20"`
	MaxSkills       int `env:"AGENT_MAX_SKILLS" envDefault:"3"`
	MaxEpisodes     int `env:"AGENT_MAX_EPISODES" envDefault:"2"`
	MaxFacts        int `env:"AGENT_MAX_FACTS" envDefault:"5"`
	MaxEpisodeSteps int `env:"AGENT_MAX_EPISODE_STEPS" envDefault:"5"`
	ToolOutputLimit int `env:"AGENT_TOOL_OUTPUT_LIMIT" envDefault:"2000"`

	// Anything scoring at or below the cutoff is never injected.
	ScoreCutoff float64 `env:"AGENT_SCORE_CUTOFF" envDefault:"0.1"`

	// Skill matcher weights
	MatchCountWeight  float64 `env:"AGENT_MATCH_COUNT_WEIGHT" envDefault:"0.6"`
	MatchLengthWeight float64 `env:"AGENT_MATCH_LENGTH_WEIGHT" envDefault:"0.4"`

	// Episode recall weights
	TextWeight        float64 `env:"AGENT_TEXT_WEIGHT" envDefault:"0.5"`
	TagWeight         float64 `env:"AGENT_TAG_WEIGHT" envDefault:"0.3"`
	RecencyWeight     float64 `env:"AGENT_RECENCY_WEIGHT" envDefault:"0.2"`
	RecencyWindowDays float64 `env:"AGENT_RECENCY_WINDOW_DAYS" envDefault:"30"`
}

func NewAgentConfig(ctx context.Context) *AgentConfig {
	c := &AgentConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Agent config")
	}
	return c
}
