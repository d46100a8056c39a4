package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newHNServer(t *testing.T, items map[int]hnItem, ids []int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/topstories.json":
			_ = json.NewEncoder(w).Encode(ids)
		case strings.HasPrefix(r.URL.Path, "/item/"):
			var id int
			if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err != nil {
				http.NotFound(w, r)
				return
			}
			item, ok := items[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(item)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestHackerNews_Fetch(t *testing.T) {
	items := map[int]hnItem{
		1: {ID: 1, Type: "story", Title: "Go 2 released", URL: "https://example.com/go2", Time: 1756500000},
		2: {ID: 2, Type: "comment", Title: "ignored", URL: "https://example.com/c"},
		3: {ID: 3, Type: "story", Title: "No URL story"},
		4: {ID: 4, Type: "story", Title: "Rust news", URL: "https://example.com/rust"},
	}
	srv := newHNServer(t, items, []int{1, 2, 3, 4})
	defer srv.Close()

	client := NewHackerNewsClient(100000, 10, []string{"topstories"}).WithBaseURL(srv.URL)
	articles := client.Fetch("ignored", 10)

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Go 2 released" || articles[0].Source != "Hacker News" {
		t.Errorf("Article fields wrong: %+v", articles[0])
	}
	if articles[0].PublishedDate == "" {
		t.Error("Unix time should be converted to a published date")
	}
	if len(articles[0].ID) != 16 {
		t.Errorf("Article ID should be 16 hex chars, got %q", articles[0].ID)
	}
	if articles[0].IngestionEngine != "hackernews" {
		t.Errorf("IngestionEngine = %q", articles[0].IngestionEngine)
	}
}

func TestHackerNews_RespectsMaxArticles(t *testing.T) {
	items := make(map[int]hnItem)
	var ids []int
	for i := 1; i <= 10; i++ {
		items[i] = hnItem{ID: i, Type: "story", Title: fmt.Sprintf("Story %d", i), URL: fmt.Sprintf("https://example.com/%d", i)}
		ids = append(ids, i)
	}
	srv := newHNServer(t, items, ids)
	defer srv.Close()

	client := NewHackerNewsClient(100000, 10, []string{"topstories"}).WithBaseURL(srv.URL)
	articles := client.Fetch("", 3)
	if len(articles) != 3 {
		t.Errorf("Expected 3 articles, got %d", len(articles))
	}
}

func TestArticleID_Deterministic(t *testing.T) {
	a := articleID("https://example.com/x", "")
	b := articleID("https://example.com/x", "")
	if a != b {
		t.Error("Same URL should give the same ID")
	}
	if a == articleID("https://example.com/y", "") {
		t.Error("Different URLs should give different IDs")
	}
	if articleID("", "hn_42") != articleID("", "hn_42") {
		t.Error("Fallback key should be deterministic")
	}
}
