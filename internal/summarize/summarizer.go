// Package summarize produces short LLM summaries for clusters.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"newsintel/internal/logger"
	"newsintel/internal/store"
)

// maxSampleTitles bounds how many member titles go into the prompt.
const maxSampleTitles = 5

// clusterPromptTemplate asks for a one-paragraph summary of a cluster from
// its dominant keywords and a sample of member headlines.
const clusterPromptTemplate = `These news headlines were grouped together because they cover the same story:

%s

Dominant keywords: %s

Write one concise paragraph (2-3 sentences) describing what this story is about. Write only the summary, no preamble.`

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ClusterSummarizer writes LLM summaries onto cluster records.
type ClusterSummarizer struct {
	generator TextGenerator
	clusters  *store.ClusterStore
	topics    *store.TopicStore
	processed *store.ProcessedStore
}

// NewClusterSummarizer creates a summarizer over the given generator and stores.
func NewClusterSummarizer(generator TextGenerator, clusters *store.ClusterStore, topics *store.TopicStore, processed *store.ProcessedStore) *ClusterSummarizer {
	return &ClusterSummarizer{generator: generator, clusters: clusters, topics: topics, processed: processed}
}

// Summarize generates and stores a summary for one cluster. Empty and
// missing clusters are skipped.
func (s *ClusterSummarizer) Summarize(ctx context.Context, clusterID string) error {
	cluster, ok := s.clusters.Load(clusterID)
	if !ok {
		logger.Warn("Cluster not found for summarization", "cluster_id", clusterID)
		return nil
	}
	if cluster.DocumentCount == 0 {
		return nil
	}

	var titles []string
	for _, articleID := range cluster.ArticleIDs {
		if len(titles) >= maxSampleTitles {
			break
		}
		if article, ok := s.processed.Load(articleID); ok && article.Title != "" {
			titles = append(titles, "- "+article.Title)
		}
	}
	if len(titles) == 0 {
		logger.Warn("No member titles available, skipping summary", "cluster_id", clusterID)
		return nil
	}

	var keywords []string
	if stats, ok := s.topics.Load(clusterID); ok {
		for _, kf := range stats.TopKeywords {
			keywords = append(keywords, kf.Keyword)
		}
	}
	keywordLine := "(none)"
	if len(keywords) > 0 {
		keywordLine = strings.Join(keywords, ", ")
	}

	prompt := fmt.Sprintf(clusterPromptTemplate, strings.Join(titles, "\n"), keywordLine)
	summary, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to summarize cluster %s: %w", clusterID, err)
	}

	cluster.Summary = summary
	return s.clusters.Save(cluster)
}

// SummarizeAll summarizes every non-empty cluster that does not yet have a
// summary. Generation failures are logged per cluster and do not stop the
// pass.
func (s *ClusterSummarizer) SummarizeAll(ctx context.Context) int {
	summarized := 0
	for _, id := range s.clusters.ListIDs() {
		cluster, ok := s.clusters.Load(id)
		if !ok || cluster.DocumentCount == 0 || cluster.Summary != "" {
			continue
		}
		if err := s.Summarize(ctx, id); err != nil {
			logger.Error("Cluster summarization failed", err, "cluster_id", id)
			continue
		}
		summarized++
	}
	if summarized > 0 {
		logger.Info("Summarized clusters", "count", summarized)
	}
	return summarized
}
