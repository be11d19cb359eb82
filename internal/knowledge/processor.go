package knowledge

import (
	"context"
	"fmt"
	"strings"

	"insurance-voice-agent/internal/observability"
)

const (
	// MsgNoInformation is the fixed sentinel for an empty retrieval; the
	// orchestrating agent treats it as "escalate, do not improvise".
	MsgNoInformation = "SYSTEM: Aucune information précise trouvée dans la base documentaire."

	// MsgTechnicalError is the fixed sentinel for any retrieval failure.
	MsgTechnicalError = "SYSTEM: Une erreur technique est survenue pendant la recherche."

	// ClaimsCategory filters the index to claims (sinistre) documentation.
	ClaimsCategory = "sinistre"

	// topK is the number of matches requested per query.
	topK = 4
)

// Chunk is one indexed knowledge base fragment.
type Chunk struct {
	Content string
	Topic   string
}

// Embedder turns a free-text query into an embedding vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs a similarity query against the vector index.
type Searcher interface {
	SimilaritySearch(ctx context.Context, vector []float32, category string, limit int) ([]Chunk, error)
}

// Processor answers routine questions from the indexed claims documentation.
type Processor struct {
	embedder Embedder
	searcher Searcher
	logger   *observability.Logger
}

func New(embedder Embedder, searcher Searcher, logger *observability.Logger) *Processor {
	return &Processor{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
	}
}

// Search embeds the query, retrieves the top matches filtered to the claims
// category and renders them as a numbered, topic-annotated bundle. It never
// returns an error: empty results and collaborator failures both degrade to
// their fixed sentinel strings.
func (p *Processor) Search(ctx context.Context, query string) string {
	ctx = observability.WithFields(ctx, observability.Field{Key: "query", Value: query})
	p.logger.Info(ctx, "knowledge base search")

	vector, err := p.embedder.EmbedText(ctx, query)
	if err != nil {
		p.logger.Error(ctx, "failed to embed query", err)
		return MsgTechnicalError
	}

	chunks, err := p.searcher.SimilaritySearch(ctx, vector, ClaimsCategory, topK)
	if err != nil {
		p.logger.Error(ctx, "similarity search failed", err)
		return MsgTechnicalError
	}

	if len(chunks) == 0 {
		p.logger.Info(ctx, "no knowledge base match")
		return MsgNoInformation
	}

	var b strings.Builder
	b.WriteString("## Informations documentées de la base de connaissances:\n")
	for i, chunk := range chunks {
		topic := chunk.Topic
		if topic == "" {
			topic = "general"
		}
		fmt.Fprintf(&b, "--- Information %d (%s) ---\n%s\n\n", i+1, topic, chunk.Content)
	}
	return b.String()
}
