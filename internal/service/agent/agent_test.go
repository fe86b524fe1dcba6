package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/internal/service/prompt"
)

type scriptedProvider struct {
	responses []core.ChatResponse
	histories [][]core.Message
	err       error
}

func (p *scriptedProvider) Chat(_ context.Context, history []core.Message, _ []core.Tool) (core.ChatResponse, error) {
	snapshot := make([]core.Message, len(history))
	copy(snapshot, history)
	p.histories = append(p.histories, snapshot)

	if p.err != nil {
		return core.ChatResponse{}, p.err
	}
	if len(p.responses) == 0 {
		return core.ChatResponse{}, errors.New("no scripted response left")
	}
	resp := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return resp, nil
}

type fakeToolbox struct {
	calls []string
	fail  map[string]error
}

func (t *fakeToolbox) GetTools(_ context.Context) ([]core.Tool, error) {
	return []core.Tool{{Type: "function", Function: core.Function{Name: "fetch_url", Parameters: json.RawMessage(`{}`)}}}, nil
}

func (t *fakeToolbox) CallTool(_ context.Context, name string, _ string) (string, error) {
	t.calls = append(t.calls, name)
	if err := t.fail[name]; err != nil {
		return "", err
	}
	return "output of " + name, nil
}

type fakeMemory struct {
	recorded []core.Episode
	err      error
}

func (m *fakeMemory) Recall(_ string, _ int) []core.Episode        { return nil }
func (m *fakeMemory) FactsForTask(_ string, _ int) []core.Fact     { return nil }
func (m *fakeMemory) Record(_ context.Context, task string, steps []core.EpisodeStep, success bool, summary string, _ []string) (core.Episode, error) {
	ep := core.Episode{ID: "ep-1", Task: task, Steps: steps, Success: success, Summary: summary}
	m.recorded = append(m.recorded, ep)
	return ep, m.err
}

type noSkills struct{}

func (noSkills) Match(_ string, _ int) []core.SkillMatch { return nil }

type recordingObserver struct {
	steps    []core.EpisodeStep
	statuses []string
}

func (o *recordingObserver) OnStep(_ context.Context, _ string, _ int, step core.EpisodeStep) {
	o.steps = append(o.steps, step)
}

func (o *recordingObserver) OnFinish(_ context.Context, _ string, _ string, status string, _ int) {
	o.statuses = append(o.statuses, status)
}

func testConfig() *config.AgentConfig {
	return &config.AgentConfig{
		MaxIterations:   5,
		MaxSkills:       3,
		MaxEpisodes:     2,
		MaxFacts:        5,
		ToolOutputLimit: 2000,
	}
}

func newOrchestrator(provider core.AIProvider, toolbox core.Toolbox, memory MemorySource, observer core.TaskObserver) *Orchestrator {
	cfg := testConfig()
	return NewOrchestrator(
		provider,
		NewExecutor(toolbox, cfg.ToolOutputLimit),
		prompt.NewBuilder(prompt.DefaultConfig("Base.")),
		noSkills{},
		memory,
		observer,
		cfg,
	)
}

func toolCallResponse(calls ...core.ToolCall) core.ChatResponse {
	return core.ChatResponse{
		Message:      core.Message{Role: core.RoleAssistant, ToolCalls: calls},
		FinishReason: core.FinishToolCalls,
	}
}

func stopResponse(content string) core.ChatResponse {
	return core.ChatResponse{
		Message:      core.Message{Role: core.RoleAssistant, Content: content},
		FinishReason: core.FinishStop,
	}
}

func TestRunDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{stopResponse("the answer")}}
	memory := &fakeMemory{}

	result, err := newOrchestrator(provider, &fakeToolbox{}, memory, nil).Run(context.Background(), "say hi")

	require.NoError(t, err)
	assert.Equal(t, "the answer", result.Answer)
	assert.Equal(t, 1, result.Iterations)
	assert.Empty(t, result.Trajectory)
	assert.Empty(t, result.EpisodeID)
	assert.Empty(t, memory.recorded, "chat without tools must not become an episode")
}

func TestRunToolLoopRecordsEpisode(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{
		toolCallResponse(core.ToolCall{ID: "call-1", Type: "function", Function: core.FunctionCall{Name: "fetch_url", Arguments: `{"url":"x"}`}}),
		stopResponse("summary of the page"),
	}}
	toolbox := &fakeToolbox{}
	memory := &fakeMemory{}
	observer := &recordingObserver{}

	result, err := newOrchestrator(provider, toolbox, memory, observer).Run(context.Background(), "fetch and summarize")

	require.NoError(t, err)
	assert.Equal(t, "summary of the page", result.Answer)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, "ep-1", result.EpisodeID)
	require.Len(t, result.Trajectory, 1)
	assert.Equal(t, "fetch_url", result.Trajectory[0].Tool)
	assert.Equal(t, "output of fetch_url", result.Trajectory[0].Result)

	require.Len(t, memory.recorded, 1)
	assert.True(t, memory.recorded[0].Success)
	assert.Equal(t, "summary of the page", memory.recorded[0].Summary)

	require.Len(t, observer.steps, 1)
	assert.Equal(t, []string{"success"}, observer.statuses)

	// second history snapshot: system, user, assistant w/ calls, tool reply
	require.Len(t, provider.histories, 2)
	second := provider.histories[1]
	require.Len(t, second, 4)
	assert.Equal(t, core.RoleTool, second[3].Role)
	assert.Equal(t, "call-1", second[3].ToolCallID)
	assert.Equal(t, "output of fetch_url", second[3].Content)
}

func TestRunToolFailureFeedsErrorBack(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{
		toolCallResponse(
			core.ToolCall{ID: "call-1", Type: "function", Function: core.FunctionCall{Name: "fetch_url", Arguments: `{}`}},
			core.ToolCall{ID: "call-2", Type: "function", Function: core.FunctionCall{Name: "broken", Arguments: `{}`}},
		),
		stopResponse("done anyway"),
	}}
	toolbox := &fakeToolbox{fail: map[string]error{"broken": errors.New("no such tool")}}

	result, err := newOrchestrator(provider, toolbox, &fakeMemory{}, nil).Run(context.Background(), "do two things")

	require.NoError(t, err)
	assert.Equal(t, "done anyway", result.Answer)
	assert.Equal(t, []string{"fetch_url", "broken"}, toolbox.calls)

	require.Len(t, provider.histories, 2)
	second := provider.histories[1]
	require.Len(t, second, 5)
	assert.Equal(t, "call-1", second[3].ToolCallID)
	assert.Equal(t, "call-2", second[4].ToolCallID)
	assert.Equal(t, "Error: no such tool", second[4].Content)
}

func TestRunToolCallsWinOverStopReason(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{
		{
			Message: core.Message{
				Role:      core.RoleAssistant,
				ToolCalls: []core.ToolCall{{ID: "call-1", Type: "function", Function: core.FunctionCall{Name: "fetch_url", Arguments: `{}`}}},
			},
			FinishReason: core.FinishStop,
		},
		stopResponse("after the call"),
	}}
	toolbox := &fakeToolbox{}

	result, err := newOrchestrator(provider, toolbox, &fakeMemory{}, nil).Run(context.Background(), "task")

	require.NoError(t, err)
	assert.Equal(t, "after the call", result.Answer)
	assert.Equal(t, []string{"fetch_url"}, toolbox.calls)
}

func TestRunExhaustsIterations(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{
		toolCallResponse(core.ToolCall{ID: "call-1", Type: "function", Function: core.FunctionCall{Name: "fetch_url", Arguments: `{}`}}),
	}}
	memory := &fakeMemory{}
	observer := &recordingObserver{}

	result, err := newOrchestrator(provider, &fakeToolbox{}, memory, observer).Run(context.Background(), "never finishes")

	require.NoError(t, err)
	assert.True(t, result.Exhausted)
	assert.Equal(t, ExhaustedAnswer, result.Answer)
	assert.Equal(t, 5, result.Iterations)
	assert.Len(t, result.Trajectory, 5)
	assert.Empty(t, memory.recorded)
	assert.Equal(t, []string{"exhausted"}, observer.statuses)
}

func TestRunTruncatedReply(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{
		{Message: core.Message{Role: core.RoleAssistant, Content: "partial ans"}, FinishReason: core.FinishLength},
	}}
	memory := &fakeMemory{}

	result, err := newOrchestrator(provider, &fakeToolbox{}, memory, nil).Run(context.Background(), "task")

	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, "partial ans", result.Answer)
	assert.Empty(t, memory.recorded)
}

func TestRunProviderErrorAborts(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("upstream 500")}

	_, err := newOrchestrator(provider, &fakeToolbox{}, &fakeMemory{}, nil).Run(context.Background(), "task")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")
}

func TestRunLogsModelUsage(t *testing.T) {
	provider := &scriptedProvider{responses: []core.ChatResponse{{
		Message:      core.Message{Role: core.RoleAssistant, Content: "done"},
		FinishReason: core.FinishStop,
		Usage:        &core.Usage{PromptTokens: 120, CompletionTokens: 8, TotalTokens: 128},
	}}}

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	_, err := newOrchestrator(provider, &fakeToolbox{}, &fakeMemory{}, nil).Run(ctx, "say done")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"prompt_tokens":120`)
	assert.Contains(t, buf.String(), `"completion_tokens":8`)
	assert.Contains(t, buf.String(), `"total_tokens":128`)
}
