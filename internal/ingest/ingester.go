package ingest

import (
	"newsintel/internal/core"
	"newsintel/internal/logger"
	"newsintel/internal/store"
)

// SourceClient is one external article source.
type SourceClient interface {
	// Name identifies the source in logs and raw records.
	Name() string

	// Fetch returns up to maxArticles raw articles for the query. Source
	// failures are soft: clients log and return what they have.
	Fetch(query string, maxArticles int) []core.RawArticle
}

// Ingester fans in all configured sources and stores new raw articles,
// deduplicating against the raw store by article ID.
type Ingester struct {
	sources []SourceClient
	raw     *store.ArticleStore
}

// NewIngester creates an ingester over the given sources.
func NewIngester(raw *store.ArticleStore, sources ...SourceClient) *Ingester {
	return &Ingester{sources: sources, raw: raw}
}

// Ingest fetches from every source and saves articles not already in the
// raw store. It returns the newly stored article IDs.
func (i *Ingester) Ingest(query string, maxArticles int) []string {
	var newIDs []string
	for _, source := range i.sources {
		for _, article := range source.Fetch(query, maxArticles) {
			if i.raw.Exists(article.ID) {
				logger.Debug("Article already ingested, skipping", "article_id", article.ID, "source", source.Name())
				continue
			}
			if err := i.raw.Save(&article); err != nil {
				logger.Error("Failed to save raw article", err, "article_id", article.ID)
				continue
			}
			newIDs = append(newIDs, article.ID)
		}
	}
	logger.Info("Ingested new articles", "count", len(newIDs))
	return newIDs
}
