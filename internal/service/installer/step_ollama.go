package installer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// OllamaURLStep collects the Ollama base URL. Skipped for other providers.
type OllamaURLStep struct {
	input textinput.Model
}

func NewOllamaURLStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = "http://localhost:11434"

	return &OllamaURLStep{
		input: ti,
	}
}

func (s *OllamaURLStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *OllamaURLStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.EnvVars["LLM_PROVIDER"] != providerOllama {
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			url := s.input.Value()
			if url == "" {
				url = "http://localhost:11434"
			}
			state.EnvVars["OLLAMA_BASE_URL"] = url
			return nil, nil
		}
	}
	return s, cmd
}

func (s *OllamaURLStep) View(state *InstallState) string {
	return "Enter your Ollama base URL (empty for default):\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}

// OllamaModelStep collects the Ollama model name.
type OllamaModelStep struct {
	input textinput.Model
}

func NewOllamaModelStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = "qwen3:8b"

	return &OllamaModelStep{
		input: ti,
	}
}

func (s *OllamaModelStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *OllamaModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.EnvVars["LLM_PROVIDER"] != providerOllama {
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && s.input.Value() != "" {
			state.EnvVars["OLLAMA_MODEL"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *OllamaModelStep) View(state *InstallState) string {
	return "Enter the Ollama model to use:\n\n" +
		s.input.View() + "\n\n" +
		"(press enter to confirm)\n"
}
