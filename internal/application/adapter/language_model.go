package adapter

import "context"

// LanguageModel answers free-form prompts.
type LanguageModel interface {
	// Generate returns the model's text answer for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// IsAvailable reports whether the model is configured.
	IsAvailable() bool
}
