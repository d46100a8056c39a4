package normalize

import (
	"strings"

	"newsintel/internal/core"
	"newsintel/internal/logger"
	"newsintel/internal/store"
)

// minTextLength filters out articles whose combined text is too short to
// carry any topical signal.
const minTextLength = 50

// Processor normalizes raw articles into processed records, filtering out
// short and non-English text. Articles that were already processed are
// skipped, making ProcessNew safe to re-run.
type Processor struct {
	raw       *store.ArticleStore
	processed *store.ProcessedStore
}

// NewProcessor creates a processor over the raw and processed stores.
func NewProcessor(raw *store.ArticleStore, processed *store.ProcessedStore) *Processor {
	return &Processor{raw: raw, processed: processed}
}

// Process normalizes a single raw article. It returns false when the
// article is missing or filtered out.
func (p *Processor) Process(articleID string) bool {
	if p.processed.Exists(articleID) {
		logger.Debug("Article already processed", "article_id", articleID)
		return true
	}

	raw, ok := p.raw.Load(articleID)
	if !ok {
		logger.Warn("Raw article not found", "article_id", articleID)
		return false
	}

	text := NormalizeText(StripHTML(ExtractFullText(raw)))
	if len(text) < minTextLength {
		logger.Debug("Article too short, filtering", "article_id", articleID)
		return false
	}
	if !IsEnglish(text) {
		logger.Debug("Article not English, filtering", "article_id", articleID)
		return false
	}

	description := raw.Snippet
	if description == "" {
		description = raw.Description
	}

	article := &core.ProcessedArticle{
		ID:            articleID,
		Title:         raw.Title,
		Description:   description,
		Text:          text,
		URL:           raw.URL,
		Source:        raw.Source,
		PublishedDate: raw.PublishedDate,
		ContentHash:   ContentHash(text),
		WordCount:     len(strings.Fields(text)),
		CharCount:     len(text),
	}
	if err := p.processed.Save(article); err != nil {
		logger.Error("Failed to save processed article", err, "article_id", articleID)
		return false
	}
	logger.Debug("Processed article", "article_id", articleID)
	return true
}

// ProcessNew normalizes every raw article that has not been processed yet
// and returns the IDs that made it through the filters.
func (p *Processor) ProcessNew() []string {
	var processedIDs []string
	for _, articleID := range p.raw.ListIDs() {
		if p.Process(articleID) {
			processedIDs = append(processedIDs, articleID)
		}
	}
	logger.Info("Processed articles", "count", len(processedIDs))
	return processedIDs
}
