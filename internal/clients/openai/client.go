package openai

import (
	"context"
	"fmt"

	"insurance-voice-agent/internal/observability"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// EmbeddingsClient produces query embeddings for the knowledge index.
type EmbeddingsClient struct {
	client openai.Client
	logger *observability.Logger
}

func NewEmbeddingsClient(apiKey string, logger *observability.Logger) *EmbeddingsClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &EmbeddingsClient{
		client: client,
		logger: logger,
	}
}

// EmbedText returns the embedding vector for a single text.
func (c *EmbeddingsClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModelTextEmbedding3Small,
	})
	if err != nil {
		c.logger.Error(ctx, "failed to create embedding", err)
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}
