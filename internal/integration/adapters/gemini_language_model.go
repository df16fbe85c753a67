package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/money-tracker/backend/internal/application/adapter"
)

const advisorInstruction = "You are a concise personal finance advisor for a budgeting app. " +
	"Answer the user's question in plain language and keep the answer short."

// GeminiConfig configures the Gemini language model.
type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	RequestTimeout  time.Duration
}

// GeminiLanguageModel answers prompts with Google Gemini.
type GeminiLanguageModel struct {
	config GeminiConfig
}

// NewGeminiLanguageModel creates a new Gemini language model.
func NewGeminiLanguageModel(config GeminiConfig) *GeminiLanguageModel {
	if config.Model == "" {
		config.Model = "gemini-2.5-flash-lite"
	}
	return &GeminiLanguageModel{config: config}
}

// IsAvailable reports whether an API key is configured.
func (m *GeminiLanguageModel) IsAvailable() bool {
	return m.config.APIKey != ""
}

// Generate sends prompt to the model and returns the text of the first candidate.
// Provider errors are returned as is so callers can classify them.
func (m *GeminiLanguageModel) Generate(ctx context.Context, prompt string) (string, error) {
	if !m.IsAvailable() {
		return "", errors.New("gemini is not configured")
	}

	if m.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.RequestTimeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(m.config.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(m.config.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(advisorInstruction)}}
	if m.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(m.config.MaxOutputTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text content in gemini response")
	}
	return sb.String(), nil
}

var _ adapter.LanguageModel = (*GeminiLanguageModel)(nil)
