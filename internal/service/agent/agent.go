// Package agent runs the conversation loop: assemble the prompt, let the
// model think, execute the tools it asks for, feed the results back, repeat
// until it produces an answer or runs out of iterations.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/internal/service/prompt"
	"github.com/sandevgo/trunk/pkg/log"
)

// ExhaustedAnswer is returned when the loop hits its iteration cap without
// the model ever producing a final reply.
const ExhaustedAnswer = "I was unable to complete the task within the allowed number of steps."

// SkillSource supplies the skills relevant to a task.
type SkillSource interface {
	Match(task string, limit int) []core.SkillMatch
}

// MemorySource supplies past episodes and facts relevant to a task, and
// records the finished run.
type MemorySource interface {
	Recall(task string, limit int) []core.Episode
	FactsForTask(task string, limit int) []core.Fact
	Record(ctx context.Context, task string, steps []core.EpisodeStep, success bool, summary string, tags []string) (core.Episode, error)
}

// RunResult is the outcome of one orchestrated task.
type RunResult struct {
	Answer     string
	Iterations int
	Trajectory []core.EpisodeStep
	Truncated  bool
	Exhausted  bool
	EpisodeID  string
}

type Orchestrator struct {
	provider   core.AIProvider
	dispatcher core.ToolDispatcher
	builder    *prompt.Builder
	skills     SkillSource
	memory     MemorySource
	observer   core.TaskObserver
	cfg        *config.AgentConfig

	newRunID func() string
}

func NewOrchestrator(
	provider core.AIProvider,
	dispatcher core.ToolDispatcher,
	builder *prompt.Builder,
	skills SkillSource,
	memory MemorySource,
	observer core.TaskObserver,
	cfg *config.AgentConfig,
) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		dispatcher: dispatcher,
		builder:    builder,
		skills:     skills,
		memory:     memory,
		observer:   observer,
		cfg:        cfg,
		newRunID:   uuid.NewString,
	}
}

// Run executes one task end to end. Provider errors abort the run; tool
// failures do not, they come back to the model as text.
func (o *Orchestrator) Run(ctx context.Context, task string) (RunResult, error) {
	runID := o.newRunID()
	logger := log.FromCtx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	matches := o.skills.Match(task, o.cfg.MaxSkills)
	episodes := o.memory.Recall(task, o.cfg.MaxEpisodes)
	facts := o.memory.FactsForTask(task, o.cfg.MaxFacts)

	system := o.builder.Build(matches, episodes, facts)
	logger.Debug().
		Int("skills", len(matches)).
		Int("episodes", len(episodes)).
		Int("facts", len(facts)).
		Int("prompt_tokens", prompt.TokenCount(system)).
		Msg("context assembled")

	history := []core.Message{
		{Role: core.RoleSystem, Content: system},
		{Role: core.RoleUser, Content: task},
	}

	var result RunResult
	for result.Iterations < o.cfg.MaxIterations {
		result.Iterations++

		tools, err := o.dispatcher.Catalog(ctx)
		if err != nil {
			return result, err
		}

		resp, err := o.provider.Chat(ctx, history, tools)
		if err != nil {
			return result, err
		}

		if resp.Usage != nil {
			logger.Debug().
				Int("iteration", result.Iterations).
				Int("prompt_tokens", resp.Usage.PromptTokens).
				Int("completion_tokens", resp.Usage.CompletionTokens).
				Int("total_tokens", resp.Usage.TotalTokens).
				Msg("model usage")
		}

		// Some providers return tool calls with a stop finish reason;
		// pending calls always win over the stated reason.
		if len(resp.Message.ToolCalls) > 0 {
			history = append(history, resp.Message)
			history = append(history, o.executeCalls(ctx, runID, result.Iterations, resp.Message.ToolCalls, &result)...)
			continue
		}

		switch resp.FinishReason {
		case core.FinishLength:
			result.Answer = resp.Message.Content
			result.Truncated = true
			o.finish(ctx, runID, task, "truncated", &result)
			return result, nil
		case core.FinishStop:
			result.Answer = resp.Message.Content
			o.recordEpisode(ctx, task, &result)
			o.finish(ctx, runID, task, "success", &result)
			return result, nil
		default:
			if resp.Message.Content != "" {
				result.Answer = resp.Message.Content
				o.recordEpisode(ctx, task, &result)
				o.finish(ctx, runID, task, "success", &result)
				return result, nil
			}
			logger.Warn().Str("finish_reason", resp.FinishReason).Msg("empty reply without tool calls")
		}
	}

	result.Answer = ExhaustedAnswer
	result.Exhausted = true
	o.finish(ctx, runID, task, "exhausted", &result)
	return result, nil
}

// executeCalls runs the requested tools in order and returns one tool
// message per call id.
func (o *Orchestrator) executeCalls(ctx context.Context, runID string, iteration int, calls []core.ToolCall, result *RunResult) []core.Message {
	messages := make([]core.Message, 0, len(calls))
	for _, call := range calls {
		started := time.Now()
		outcome := o.dispatcher.Execute(ctx, call.Function.Name, call.Function.Arguments)

		step := core.EpisodeStep{
			Tool:      call.Function.Name,
			Arguments: call.Function.Arguments,
			Result:    outcome.Output,
			Duration:  time.Since(started),
		}
		result.Trajectory = append(result.Trajectory, step)
		if o.observer != nil {
			o.observer.OnStep(ctx, runID, iteration, step)
		}

		messages = append(messages, core.Message{
			Role:       core.RoleTool,
			Content:    outcome.Output,
			ToolCallID: call.ID,
		})
	}
	return messages
}

// recordEpisode persists a successful run that actually used tools. Pure
// chat exchanges leave nothing worth replaying.
func (o *Orchestrator) recordEpisode(ctx context.Context, task string, result *RunResult) {
	if len(result.Trajectory) == 0 {
		return
	}

	episode, err := o.memory.Record(ctx, task, result.Trajectory, true, result.Answer, nil)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to record episode")
	}
	result.EpisodeID = episode.ID
}

func (o *Orchestrator) finish(ctx context.Context, runID, task, status string, result *RunResult) {
	log.FromCtx(ctx).Info().
		Str("status", status).
		Int("iterations", result.Iterations).
		Int("steps", len(result.Trajectory)).
		Msg("run finished")

	if o.observer != nil {
		o.observer.OnFinish(ctx, runID, task, status, result.Iterations)
	}
}
