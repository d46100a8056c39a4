package ingest

import (
	"fmt"
	"net/http"
	"net/url"

	"newsintel/internal/core"
	"newsintel/internal/logger"
)

const searchAPIPageSize = 20

// searchAPIResponse is the subset of a searchapi.io news response the
// ingester needs.
type searchAPIResponse struct {
	OrganicResults []searchAPIResult `json:"organic_results"`
}

type searchAPIResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	Date    string `json:"date"`
}

// SearchAPIClient fetches news results from searchapi.io across one or more
// engines (bing_news, google_news).
type SearchAPIClient struct {
	apiKey   string
	endpoint string
	engines  []string
	maxPerQ  int
	client   *http.Client
	limiter  *RateLimiter
}

// NewSearchAPIClient creates a searchapi.io client.
func NewSearchAPIClient(apiKey, endpoint string, engines []string, maxResultsPerQuery, rateLimitPerMinute int) *SearchAPIClient {
	return &SearchAPIClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		engines:  engines,
		maxPerQ:  maxResultsPerQuery,
		client:   &http.Client{Timeout: httpTimeout},
		limiter:  NewRateLimiter(rateLimitPerMinute),
	}
}

// Name identifies the client in raw article records.
func (c *SearchAPIClient) Name() string { return "searchapi" }

// Fetch runs the query against every configured engine, paginating until
// maxArticles results are collected or the engine runs dry.
func (c *SearchAPIClient) Fetch(query string, maxArticles int) []core.RawArticle {
	if c.apiKey == "" {
		logger.Warn("SearchAPI key not set, skipping search ingestion")
		return nil
	}
	if maxArticles > c.maxPerQ {
		maxArticles = c.maxPerQ
	}

	seen := make(map[string]bool)
	var articles []core.RawArticle

	for _, engine := range c.engines {
		page := 1
		for len(articles) < maxArticles {
			results, err := c.fetchPage(engine, query, page)
			if err != nil {
				logger.Warn("SearchAPI page fetch failed", "engine", engine, "page", page, "error", err)
				break
			}
			if len(results) == 0 {
				break
			}
			for _, result := range results {
				if len(articles) >= maxArticles {
					break
				}
				if result.Link == "" || result.Title == "" {
					continue
				}
				id := articleID(result.Link, "")
				if seen[id] {
					continue
				}
				seen[id] = true
				articles = append(articles, core.RawArticle{
					ID:              id,
					Title:           result.Title,
					Snippet:         result.Snippet,
					URL:             result.Link,
					Source:          result.Source,
					PublishedDate:   result.Date,
					IngestionEngine: c.Name() + ":" + engine,
				})
			}
			if len(results) < searchAPIPageSize {
				break
			}
			page++
		}
	}

	logger.Info("Fetched search results", "count", len(articles), "query", query)
	return articles
}

func (c *SearchAPIClient) fetchPage(engine, query string, page int) ([]searchAPIResult, error) {
	params := url.Values{}
	params.Set("engine", engine)
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", fmt.Sprintf("%d", searchAPIPageSize))
	params.Set("page", fmt.Sprintf("%d", page))

	var resp searchAPIResponse
	if err := getJSON(c.client, c.limiter, c.endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.OrganicResults, nil
}
