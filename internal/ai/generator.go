package ai

import "context"

// Provider names accepted in configuration.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Generator sends a single prompt to an LLM and returns its textual answer.
type Generator interface {
	GenerateContent(ctx context.Context, systemPrompt, message string) (string, error)
	Model() string
}
