package pipeline

import (
	"database/sql"
	"fmt"

	"newsintel/internal/clustering"
	"newsintel/internal/config"
	"newsintel/internal/embeddings"
	"newsintel/internal/ingest"
	"newsintel/internal/llm"
	"newsintel/internal/logger"
	"newsintel/internal/normalize"
	"newsintel/internal/store"
	"newsintel/internal/summarize"
	"newsintel/internal/topics"
	"newsintel/internal/trends"
	"newsintel/internal/vectorstore"
)

// Components bundles every store the pipeline and API server share.
type Components struct {
	Raw       *store.ArticleStore
	Processed *store.ProcessedStore
	Clusters  *store.ClusterStore
	Topics    *store.TopicStore
	Trends    *store.TrendStore
	Vectors   vectorstore.EmbeddingStore

	db *sql.DB // Non-nil for the sqlite backend
}

// OpenComponents opens every store per the configured storage backend.
// Vectors always live in flat files under the embeddings directory; only the
// record stores switch between file and sqlite.
func OpenComponents(cfg *config.Config) (*Components, error) {
	vectors, err := vectorstore.NewFileVectorStore(cfg.Storage.EmbeddingsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	comps := &Components{Vectors: vectors}

	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Storage.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		comps.db = db
		rawB, err := store.NewSQLiteBackend(db, "raw_articles")
		if err != nil {
			return nil, err
		}
		processedB, err := store.NewSQLiteBackend(db, "processed_articles")
		if err != nil {
			return nil, err
		}
		clustersB, err := store.NewSQLiteBackend(db, "clusters")
		if err != nil {
			return nil, err
		}
		topicsB, err := store.NewSQLiteBackend(db, "topics")
		if err != nil {
			return nil, err
		}
		trendsB, err := store.NewSQLiteBackend(db, "trends")
		if err != nil {
			return nil, err
		}
		comps.Raw = store.NewArticleStore(rawB)
		comps.Processed = store.NewProcessedStore(processedB)
		comps.Clusters = store.NewClusterStore(clustersB)
		comps.Topics = store.NewTopicStore(topicsB)
		comps.Trends = store.NewTrendStore(trendsB)
	default:
		rawB, err := store.NewFileBackend(cfg.Storage.RawArticlesDir())
		if err != nil {
			return nil, err
		}
		processedB, err := store.NewFileBackend(cfg.Storage.ProcessedArticlesDir())
		if err != nil {
			return nil, err
		}
		clustersB, err := store.NewFileBackend(cfg.Storage.ClustersDir())
		if err != nil {
			return nil, err
		}
		topicsB, err := store.NewFileBackend(cfg.Storage.TopicsDir())
		if err != nil {
			return nil, err
		}
		trendsB, err := store.NewFileBackend(cfg.Storage.TrendsDir())
		if err != nil {
			return nil, err
		}
		comps.Raw = store.NewArticleStore(rawB)
		comps.Processed = store.NewProcessedStore(processedB)
		comps.Clusters = store.NewClusterStore(clustersB)
		comps.Topics = store.NewTopicStore(topicsB)
		comps.Trends = store.NewTrendStore(trendsB)
	}

	return comps, nil
}

// Close releases backend resources. Safe to call on file-backed components.
func (c *Components) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Build wires a full pipeline from configuration. When no Gemini API key is
// available the embedding and summarization steps are disabled rather than
// failing the whole cycle.
func Build(cfg *config.Config, comps *Components) (*Pipeline, error) {
	var sources []ingest.SourceClient
	if cfg.Ingest.HackerNews.Enabled {
		sources = append(sources, ingest.NewHackerNewsClient(
			cfg.Ingest.HackerNews.RateLimitPerMinute,
			cfg.Ingest.HackerNews.MaxStoriesPerType,
			cfg.Ingest.HackerNews.FetchTypes,
		))
	}
	if cfg.Ingest.SearchAPI.APIKey != "" {
		sources = append(sources, ingest.NewSearchAPIClient(
			cfg.Ingest.SearchAPI.APIKey,
			cfg.Ingest.SearchAPI.Endpoint,
			cfg.Ingest.SearchAPI.Engines,
			cfg.Ingest.SearchAPI.MaxResultsPerQuery,
			cfg.Ingest.SearchAPI.RateLimitPerMinute,
		))
	}

	var generator *embeddings.Generator
	var summarizer *summarize.ClusterSummarizer
	aiClient, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		logger.Warn("Gemini client unavailable, embedding and summarization disabled", "reason", err.Error())
	} else {
		generator = embeddings.NewGenerator(aiClient, cfg.AI.Gemini.EmbeddingModel, comps.Processed, comps.Vectors)
		summarizer = summarize.NewClusterSummarizer(aiClient, comps.Clusters, comps.Topics, comps.Processed)
	}

	engine := clustering.NewEngine(cfg.Clustering.DistanceThreshold, comps.Vectors, comps.Clusters)
	accumulator := topics.NewAccumulator(topics.Config{
		TimeDecayFactor:       cfg.Topics.TimeDecayFactor,
		MinKeywordFrequency:   cfg.Topics.MinKeywordFrequency,
		TopKeywordsPerCluster: cfg.Topics.TopKeywordsPerCluster,
	}, comps.Clusters, comps.Processed, comps.Topics)
	classifier := trends.NewClassifier(trends.Config{
		GrowthThreshold:       cfg.Trends.GrowthThreshold,
		DeclineThreshold:      cfg.Trends.DeclineThreshold,
		NewClusterWindowHours: cfg.Trends.NewClusterWindowHours,
	}, comps.Clusters, comps.Trends)

	return New(
		ingest.NewIngester(comps.Raw, sources...),
		normalize.NewProcessor(comps.Raw, comps.Processed),
		generator,
		engine,
		accumulator,
		classifier,
		summarizer,
	), nil
}
