// Package embeddings turns processed articles into stored vectors.
package embeddings

import (
	"context"
	"time"

	"newsintel/internal/core"
	"newsintel/internal/logger"
	"newsintel/internal/store"
	"newsintel/internal/vectorstore"
)

// Provider produces an embedding vector for a piece of text.
type Provider interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Generator embeds processed articles that do not yet have a stored vector.
type Generator struct {
	provider  Provider
	model     string
	processed *store.ProcessedStore
	vectors   vectorstore.EmbeddingStore
}

// NewGenerator creates a generator over the given provider and stores. The
// model name is recorded in each vector's metadata.
func NewGenerator(provider Provider, model string, processed *store.ProcessedStore, vectors vectorstore.EmbeddingStore) *Generator {
	return &Generator{provider: provider, model: model, processed: processed, vectors: vectors}
}

// Generate embeds a single processed article and stores the vector with its
// metadata. It returns false when the article is missing, already embedded,
// or the provider fails. Provider failures are logged and skipped so one bad
// article does not stall a batch.
func (g *Generator) Generate(ctx context.Context, articleID string) bool {
	if _, ok := g.vectors.GetVector(articleID); ok {
		logger.Debug("Article already embedded, skipping", "article_id", articleID)
		return false
	}

	article, ok := g.processed.Load(articleID)
	if !ok {
		logger.Warn("Processed article not found for embedding", "article_id", articleID)
		return false
	}

	text := article.Title + "\n\n" + article.Text
	vector, err := g.provider.EmbedText(ctx, text)
	if err != nil {
		logger.Error("Failed to embed article", err, "article_id", articleID)
		return false
	}

	meta := core.EmbeddingMetadata{
		ArticleID: articleID,
		Model:     g.model,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.vectors.SaveVector(articleID, vector, meta); err != nil {
		logger.Error("Failed to store embedding", err, "article_id", articleID)
		return false
	}
	return true
}

// GenerateNew embeds every processed article without a stored vector and
// returns the IDs that were embedded.
func (g *Generator) GenerateNew(ctx context.Context) []string {
	var embedded []string
	for _, id := range g.processed.ListIDs() {
		if g.Generate(ctx, id) {
			embedded = append(embedded, id)
		}
	}
	logger.Info("Embedded new articles", "count", len(embedded))
	return embedded
}
