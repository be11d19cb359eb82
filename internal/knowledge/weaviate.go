package knowledge

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// ClassName is the Weaviate class holding indexed claims documentation.
const ClassName = "InsuranceClaimChunk"

// WeaviateSearcher implements Searcher against a Weaviate index.
type WeaviateSearcher struct {
	client *weaviate.Client
}

// NewWeaviateSearcher connects to the Weaviate instance at host.
func NewWeaviateSearcher(host, scheme string) (*WeaviateSearcher, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Host:   host,
		Scheme: scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateSearcher{client: client}, nil
}

// SimilaritySearch runs a nearVector query filtered by category equality.
func (s *WeaviateSearcher) SimilaritySearch(ctx context.Context, vector []float32, category string, limit int) ([]Chunk, error) {
	where := filters.Where().
		WithPath([]string{"category"}).
		WithOperator(filters.Equal).
		WithValueString(category)

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(ClassName).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "topic"},
		).
		WithWhere(where).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("similarity query: %s", result.Errors[0].Message)
	}

	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	objects, ok := data[ClassName].([]interface{})
	if !ok {
		return nil, nil
	}

	chunks := make([]Chunk, 0, len(objects))
	for _, obj := range objects {
		fields, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		chunk := Chunk{}
		if content, ok := fields["content"].(string); ok {
			chunk.Content = content
		}
		if topic, ok := fields["topic"].(string); ok {
			chunk.Topic = topic
		}
		if chunk.Content != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}
