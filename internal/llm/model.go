// Package llm wraps langchaingo chat models and embedding backends
// behind the narrow interfaces the agent core consumes.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/careops/wardagent/internal/config"
)

// ChatModel is the model surface the agent loop depends on. Given the
// conversation so far and the available tool declarations, it returns
// either tool calls or final text. Tests inject scripted stubs.
type ChatModel interface {
	Generate(ctx context.Context, messages []llms.MessageContent, tools []llms.Tool) (*llms.ContentChoice, error)
}

// Model wraps a langchaingo LLM with tool-calling support.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ ChatModel = (*Model)(nil)

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Generate runs one model turn with the tool declarations attached.
// The returned choice carries either ToolCalls or final Content.
func (m *Model) Generate(ctx context.Context, messages []llms.MessageContent, tools []llms.Tool) (*llms.ContentChoice, error) {
	opts := []llms.CallOption{}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(tools))
	}

	response, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	return response.Choices[0], nil
}

// ModelName returns the configured model identifier.
func (m *Model) ModelName() string {
	return m.modelName
}
