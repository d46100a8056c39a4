package ingest

import (
	"testing"

	"newsintel/internal/core"
	"newsintel/internal/store"
)

type fakeSource struct {
	name     string
	articles []core.RawArticle
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(query string, maxArticles int) []core.RawArticle {
	if len(f.articles) > maxArticles {
		return f.articles[:maxArticles]
	}
	return f.articles
}

func newTestRawStore(t *testing.T) *store.ArticleStore {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	return store.NewArticleStore(backend)
}

func TestIngest_StoresNewArticles(t *testing.T) {
	raw := newTestRawStore(t)
	source := &fakeSource{name: "fake", articles: []core.RawArticle{
		{ID: "a1", Title: "First"},
		{ID: "a2", Title: "Second"},
	}}

	ingester := NewIngester(raw, source)
	newIDs := ingester.Ingest("query", 10)

	if len(newIDs) != 2 {
		t.Fatalf("Expected 2 new IDs, got %v", newIDs)
	}
	if !raw.Exists("a1") || !raw.Exists("a2") {
		t.Error("Articles not stored")
	}
}

func TestIngest_SkipsAlreadyStored(t *testing.T) {
	raw := newTestRawStore(t)
	source := &fakeSource{name: "fake", articles: []core.RawArticle{{ID: "a1", Title: "First"}}}
	ingester := NewIngester(raw, source)

	first := ingester.Ingest("query", 10)
	second := ingester.Ingest("query", 10)

	if len(first) != 1 || len(second) != 0 {
		t.Errorf("Re-ingestion should skip stored articles: first=%v second=%v", first, second)
	}
}

func TestIngest_MergesSources(t *testing.T) {
	raw := newTestRawStore(t)
	a := &fakeSource{name: "one", articles: []core.RawArticle{{ID: "a1", Title: "From one"}}}
	b := &fakeSource{name: "two", articles: []core.RawArticle{{ID: "a2", Title: "From two"}}}

	newIDs := NewIngester(raw, a, b).Ingest("query", 10)
	if len(newIDs) != 2 {
		t.Errorf("Expected articles from both sources, got %v", newIDs)
	}
}
