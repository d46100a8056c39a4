package server

import (
	"encoding/json"
	"net/http"
	"time"

	"newsintel/internal/core"

	"github.com/go-chi/chi/v5"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// ClusterSummary is the list-view projection of a cluster, without the
// centroid vector.
type ClusterSummary struct {
	ClusterID     string `json:"cluster_id"`
	DocumentCount int    `json:"document_count"`
	Summary       string `json:"summary,omitempty"`
	CreatedAt     string `json:"created_at"`
	LastUpdated   string `json:"last_updated"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleListClusters handles GET /api/clusters. Tombstones are excluded.
func (s *Server) handleListClusters(w http.ResponseWriter, r *http.Request) {
	summaries := []ClusterSummary{}
	for _, id := range s.comps.Clusters.ListIDs() {
		cluster, ok := s.comps.Clusters.Load(id)
		if !ok || cluster.DocumentCount == 0 {
			continue
		}
		summaries = append(summaries, ClusterSummary{
			ClusterID:     cluster.ID,
			DocumentCount: cluster.DocumentCount,
			Summary:       cluster.Summary,
			CreatedAt:     cluster.CreatedAt.Format(time.RFC3339),
			LastUpdated:   cluster.LastUpdated.Format(time.RFC3339),
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"clusters": summaries,
		"count":    len(summaries),
	})
}

// handleGetCluster handles GET /api/clusters/{id}.
func (s *Server) handleGetCluster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cluster, ok := s.comps.Clusters.Load(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "cluster not found")
		return
	}
	s.respondJSON(w, http.StatusOK, cluster)
}

// handleClusterArticles handles GET /api/clusters/{id}/articles.
func (s *Server) handleClusterArticles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cluster, ok := s.comps.Clusters.Load(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "cluster not found")
		return
	}

	articles := []*core.ProcessedArticle{}
	for _, articleID := range cluster.ArticleIDs {
		if article, ok := s.comps.Processed.Load(articleID); ok {
			articles = append(articles, article)
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"cluster_id": id,
		"articles":   articles,
		"count":      len(articles),
	})
}

// handleClusterTopics handles GET /api/clusters/{id}/topics.
func (s *Server) handleClusterTopics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.comps.Clusters.Load(id); !ok {
		s.respondError(w, http.StatusNotFound, "cluster not found")
		return
	}
	stats, ok := s.comps.Topics.Load(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "no topic statistics for cluster")
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// handleListTrends handles GET /api/trends. Timestamps are returned in
// chronological order.
func (s *Server) handleListTrends(w http.ResponseWriter, r *http.Request) {
	timestamps := s.comps.Trends.ListTimestamps()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"timestamps": timestamps,
		"count":      len(timestamps),
	})
}

// handleLatestTrend handles GET /api/trends/latest.
func (s *Server) handleLatestTrend(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.comps.Trends.Latest()
	if !ok {
		s.respondError(w, http.StatusNotFound, "no trend snapshots yet")
		return
	}
	s.respondJSON(w, http.StatusOK, snapshot)
}

// handleGetTrend handles GET /api/trends/{timestamp}.
func (s *Server) handleGetTrend(w http.ResponseWriter, r *http.Request) {
	timestamp := chi.URLParam(r, "timestamp")
	snapshot, ok := s.comps.Trends.Load(timestamp)
	if !ok {
		s.respondError(w, http.StatusNotFound, "trend snapshot not found")
		return
	}
	s.respondJSON(w, http.StatusOK, snapshot)
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
