package llm

import "context"

// Provider generates text from a structured prompt. Callers request low
// temperature (~0.3) for grading and higher (~0.7) for question phrasing.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error)
	Close() error
}
