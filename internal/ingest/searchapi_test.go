package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchAPI_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "fusion energy" {
			t.Errorf("q = %q", got)
		}

		// One short page ends pagination.
		resp := searchAPIResponse{OrganicResults: []searchAPIResult{
			{Title: "Fusion record", Link: "https://example.com/fusion", Snippet: "net gain", Source: "Example", Date: "2026-08-29"},
			{Title: "Duplicate", Link: "https://example.com/fusion"},
			{Title: "No link"},
			{Title: "Second story", Link: "https://example.com/second"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewSearchAPIClient("test-key", srv.URL, []string{"google_news"}, 100, 100000)
	articles := client.Fetch("fusion energy", 10)

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles after dedupe and filtering, got %d", len(articles))
	}
	if articles[0].Title != "Fusion record" || articles[0].Snippet != "net gain" {
		t.Errorf("Article fields wrong: %+v", articles[0])
	}
	if articles[0].IngestionEngine != "searchapi:google_news" {
		t.Errorf("IngestionEngine = %q", articles[0].IngestionEngine)
	}
}

func TestSearchAPI_Paginates(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		page := r.URL.Query().Get("page")
		results := make([]searchAPIResult, searchAPIPageSize)
		for i := range results {
			results[i] = searchAPIResult{
				Title: fmt.Sprintf("Story p%s-%d", page, i),
				Link:  fmt.Sprintf("https://example.com/p%s/%d", page, i),
			}
		}
		_ = json.NewEncoder(w).Encode(searchAPIResponse{OrganicResults: results})
	}))
	defer srv.Close()

	client := NewSearchAPIClient("key", srv.URL, []string{"bing_news"}, 100, 100000)
	articles := client.Fetch("anything", 30)

	if len(articles) != 30 {
		t.Fatalf("Expected 30 articles, got %d", len(articles))
	}
	if pages != 2 {
		t.Errorf("Expected 2 page fetches, got %d", pages)
	}
}

func TestSearchAPI_NoKeySkips(t *testing.T) {
	client := NewSearchAPIClient("", "http://unused", []string{"google_news"}, 100, 100000)
	if got := client.Fetch("anything", 10); got != nil {
		t.Errorf("Fetch without an API key should return nil, got %v", got)
	}
}
