package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"newsintel/internal/core"
	"newsintel/internal/logger"
)

// DefaultHackerNewsBaseURL is the public firebaseio endpoint for the Hacker
// News v0 API.
const DefaultHackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

// hnItem is the subset of a Hacker News item the ingester needs.
type hnItem struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
}

// HackerNewsClient fetches stories from the Hacker News API.
type HackerNewsClient struct {
	baseURL           string
	maxStoriesPerType int
	fetchTypes        []string
	client            *http.Client
	limiter           *RateLimiter
}

// NewHackerNewsClient creates a client fetching up to maxStoriesPerType
// stories from each list in fetchTypes (topstories, newstories,
// beststories).
func NewHackerNewsClient(rateLimitPerMinute, maxStoriesPerType int, fetchTypes []string) *HackerNewsClient {
	return &HackerNewsClient{
		baseURL:           DefaultHackerNewsBaseURL,
		maxStoriesPerType: maxStoriesPerType,
		fetchTypes:        fetchTypes,
		client:            &http.Client{Timeout: httpTimeout},
		limiter:           NewRateLimiter(rateLimitPerMinute),
	}
}

// WithBaseURL points the client at an alternative endpoint. Used by tests.
func (c *HackerNewsClient) WithBaseURL(baseURL string) *HackerNewsClient {
	c.baseURL = baseURL
	return c
}

// Name identifies the client in raw article records.
func (c *HackerNewsClient) Name() string { return "hackernews" }

// Fetch retrieves stories from every configured list. The query is ignored;
// Hacker News has no search surface in the v0 API. Failed items are skipped,
// never fatal.
func (c *HackerNewsClient) Fetch(query string, maxArticles int) []core.RawArticle {
	seen := make(map[string]bool)
	var articles []core.RawArticle

	for _, storyType := range c.fetchTypes {
		if len(articles) >= maxArticles {
			break
		}
		var ids []int
		url := fmt.Sprintf("%s/%s.json", c.baseURL, storyType)
		if err := getJSON(c.client, c.limiter, url, &ids); err != nil {
			logger.Warn("Failed to fetch story list", "type", storyType, "error", err)
			continue
		}

		count := 0
		for _, id := range ids {
			if count >= c.maxStoriesPerType || len(articles) >= maxArticles {
				break
			}
			var item hnItem
			itemURL := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
			if err := getJSON(c.client, c.limiter, itemURL, &item); err != nil {
				logger.Warn("Failed to fetch item", "id", id, "error", err)
				continue
			}
			article, ok := c.toArticle(item)
			if !ok || seen[article.ID] {
				continue
			}
			seen[article.ID] = true
			articles = append(articles, article)
			count++
		}
	}

	logger.Info("Fetched Hacker News stories", "count", len(articles))
	return articles
}

// toArticle converts an item into a raw article. Non-story items and items
// without a URL or title are skipped.
func (c *HackerNewsClient) toArticle(item hnItem) (core.RawArticle, bool) {
	if item.Type != "story" || item.URL == "" || item.Title == "" {
		return core.RawArticle{}, false
	}

	published := ""
	if item.Time > 0 {
		published = time.Unix(item.Time, 0).UTC().Format(time.RFC3339)
	}

	return core.RawArticle{
		ID:              articleID(item.URL, fmt.Sprintf("hn_%d", item.ID)),
		Title:           item.Title,
		Body:            item.Text,
		URL:             item.URL,
		Source:          "Hacker News",
		PublishedDate:   published,
		IngestionEngine: c.Name(),
	}, true
}

// articleID derives a deterministic 16-hex-character ID from the article
// URL, falling back to the source-local identifier when no URL exists.
func articleID(url, fallback string) string {
	key := url
	if key == "" {
		key = fallback
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}
