package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsintel/internal/config"
	"newsintel/internal/core"
	"newsintel/internal/pipeline"
	"newsintel/internal/store"
	"newsintel/internal/vectorstore"
)

func newTestServer(t *testing.T) (*Server, *pipeline.Components) {
	t.Helper()
	newBackend := func() store.Backend {
		backend, err := store.NewFileBackend(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileBackend failed: %v", err)
		}
		return backend
	}
	vectors, err := vectorstore.NewFileVectorStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileVectorStore failed: %v", err)
	}

	comps := &pipeline.Components{
		Raw:       store.NewArticleStore(newBackend()),
		Processed: store.NewProcessedStore(newBackend()),
		Clusters:  store.NewClusterStore(newBackend()),
		Topics:    store.NewTopicStore(newBackend()),
		Trends:    store.NewTrendStore(newBackend()),
		Vectors:   vectors,
	}
	return New(comps, config.Server{Host: "127.0.0.1", Port: 0}), comps
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doGet(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestListClusters_ExcludesTombstones(t *testing.T) {
	srv, comps := newTestServer(t)
	now := time.Now().UTC()

	if err := comps.Clusters.Save(&core.Cluster{ID: "cluster_live", DocumentCount: 2, ArticleIDs: []string{"a", "b"}, CreatedAt: now, LastUpdated: now}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := comps.Clusters.Save(&core.Cluster{ID: "cluster_dead", DocumentCount: 0, CreatedAt: now, LastUpdated: now}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := doGet(t, srv, "/api/clusters")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var resp struct {
		Clusters []ClusterSummary `json:"clusters"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if resp.Count != 1 || resp.Clusters[0].ClusterID != "cluster_live" {
		t.Errorf("Tombstone should be excluded: %+v", resp)
	}
}

func TestGetCluster(t *testing.T) {
	srv, comps := newTestServer(t)

	if err := comps.Clusters.Save(&core.Cluster{ID: "cluster_x", DocumentCount: 1, ArticleIDs: []string{"a1"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := doGet(t, srv, "/api/clusters/cluster_x")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var cluster core.Cluster
	if err := json.Unmarshal(rec.Body.Bytes(), &cluster); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cluster.ID != "cluster_x" {
		t.Errorf("Cluster = %+v", cluster)
	}

	if rec := doGet(t, srv, "/api/clusters/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("Missing cluster status = %d, want 404", rec.Code)
	}
}

func TestClusterArticles(t *testing.T) {
	srv, comps := newTestServer(t)

	if err := comps.Processed.Save(&core.ProcessedArticle{ID: "a1", Title: "Hello"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := comps.Clusters.Save(&core.Cluster{ID: "cluster_x", DocumentCount: 2, ArticleIDs: []string{"a1", "missing"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := doGet(t, srv, "/api/clusters/cluster_x/articles")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var resp struct {
		Articles []core.ProcessedArticle `json:"articles"`
		Count    int                     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	// The missing member is skipped, not an error.
	if resp.Count != 1 || resp.Articles[0].Title != "Hello" {
		t.Errorf("Articles response wrong: %+v", resp)
	}
}

func TestClusterTopics(t *testing.T) {
	srv, comps := newTestServer(t)

	if err := comps.Clusters.Save(&core.Cluster{ID: "cluster_x", DocumentCount: 1, ArticleIDs: []string{"a1"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := comps.Topics.Save(&core.TopicStats{ClusterID: "cluster_x", TopKeywords: []core.KeywordFrequency{{Keyword: "go", Frequency: 4}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := doGet(t, srv, "/api/clusters/cluster_x/topics")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var stats core.TopicStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(stats.TopKeywords) != 1 || stats.TopKeywords[0].Keyword != "go" {
		t.Errorf("Stats wrong: %+v", stats)
	}
}

func TestTrendsEndpoints(t *testing.T) {
	srv, comps := newTestServer(t)

	if rec := doGet(t, srv, "/api/trends/latest"); rec.Code != http.StatusNotFound {
		t.Errorf("Empty store latest status = %d, want 404", rec.Code)
	}

	older := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).Format(core.SnapshotTimeFormat)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Format(core.SnapshotTimeFormat)
	for _, ts := range []string{older, newer} {
		if err := comps.Trends.Save(&core.TrendSnapshot{Timestamp: ts, TotalClusters: 3}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	rec := doGet(t, srv, "/api/trends/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var snapshot core.TrendSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if snapshot.Timestamp != newer {
		t.Errorf("Latest = %s, want %s", snapshot.Timestamp, newer)
	}

	rec = doGet(t, srv, "/api/trends")
	var listResp struct {
		Timestamps []string `json:"timestamps"`
		Count      int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if listResp.Count != 2 || listResp.Timestamps[0] != older {
		t.Errorf("Trend list wrong: %+v", listResp)
	}

	rec = doGet(t, srv, "/api/trends/"+older)
	if rec.Code != http.StatusOK {
		t.Errorf("Historical snapshot status = %d", rec.Code)
	}
}
