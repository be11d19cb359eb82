package googleai

import (
	"context"
	"fmt"

	"insurance-voice-agent/internal/observability"

	"google.golang.org/genai"
)

const classificationModel = "gemini-2.5-flash"

// GeminiClient wraps the Gemini API for single-turn supervision calls.
type GeminiClient struct {
	client *genai.Client
	logger *observability.Logger
}

// NewGeminiClient creates a Gemini client for escalation classification.
func NewGeminiClient(apiKey string, logger *observability.Logger) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		logger: logger,
	}, nil
}

// GenerateText sends a single-turn prompt and returns the raw model text.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, classificationModel, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Error(ctx, "Gemini generate content failed", err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
