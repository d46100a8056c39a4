package clustering

import (
	"math"
	"testing"
	"time"

	"newsintel/internal/core"
	"newsintel/internal/store"
	"newsintel/internal/vectorstore"
)

func newTestEngine(t *testing.T, threshold float64) (*Engine, *vectorstore.FileVectorStore, *store.ClusterStore) {
	t.Helper()
	vectors, err := vectorstore.NewFileVectorStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileVectorStore failed: %v", err)
	}
	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	clusters := store.NewClusterStore(backend)
	return NewEngine(threshold, vectors, clusters), vectors, clusters
}

func saveVector(t *testing.T, vectors *vectorstore.FileVectorStore, id string, v []float64) {
	t.Helper()
	if err := vectors.SaveVector(id, v, core.EmbeddingMetadata{ArticleID: id}); err != nil {
		t.Fatalf("SaveVector failed: %v", err)
	}
}

func TestAssign_CreatesFirstCluster(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})

	clusterID, ok := engine.Assign("a1")
	if !ok {
		t.Fatal("Assign failed")
	}

	cluster, found := clusters.Load(clusterID)
	if !found {
		t.Fatal("Cluster record not saved")
	}
	if cluster.DocumentCount != 1 || !cluster.Contains("a1") {
		t.Errorf("Cluster state wrong: %+v", cluster)
	}
	if cluster.Centroid[0] != 1 || cluster.Centroid[1] != 0 {
		t.Errorf("Centroid should equal the only member's embedding: %v", cluster.Centroid)
	}

	meta, found := vectors.GetMetadata("a1")
	if !found || meta.ClusterID != clusterID {
		t.Errorf("Cluster pointer not cached on metadata: %+v", meta)
	}
}

func TestAssign_MergesNearbyArticle(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})
	saveVector(t, vectors, "a2", []float64{0.99, 0.01})

	first, _ := engine.Assign("a1")
	second, ok := engine.Assign("a2")
	if !ok {
		t.Fatal("Assign failed")
	}
	if first != second {
		t.Errorf("Near-identical articles should share a cluster: %s vs %s", first, second)
	}

	cluster, _ := clusters.Load(first)
	if cluster.DocumentCount != 2 {
		t.Fatalf("Expected 2 members, got %d", cluster.DocumentCount)
	}

	// Centroid is the running mean of both embeddings.
	want := []float64{(1 + 0.99) / 2, (0 + 0.01) / 2}
	for i := range want {
		if math.Abs(cluster.Centroid[i]-want[i]) > 1e-6 {
			t.Errorf("Centroid[%d] = %v, want %v", i, cluster.Centroid[i], want[i])
		}
	}
}

func TestAssign_SplitsDistantArticle(t *testing.T) {
	engine, vectors, _ := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})
	saveVector(t, vectors, "a2", []float64{0, 1})

	first, _ := engine.Assign("a1")
	second, _ := engine.Assign("a2")
	if first == second {
		t.Error("Orthogonal articles should not share a cluster")
	}
}

func TestAssign_Idempotent(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})

	first, _ := engine.Assign("a1")
	second, _ := engine.Assign("a1")
	if first != second {
		t.Errorf("Reassigning a placed article moved it: %s vs %s", first, second)
	}

	cluster, _ := clusters.Load(first)
	if cluster.DocumentCount != 1 || len(cluster.ArticleIDs) != 1 {
		t.Errorf("Reassignment must not duplicate membership: %+v", cluster)
	}
}

func TestAssign_NoEmbedding(t *testing.T) {
	engine, _, _ := newTestEngine(t, 0.5)
	if _, ok := engine.Assign("ghost"); ok {
		t.Error("Assign should fail for an article with no embedding")
	}
}

func TestAssign_HealsStaleMembership(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})
	if _, ok := engine.Assign("a1"); !ok {
		t.Fatal("Assign failed")
	}

	// Corrupt the cached pointer so the record and cache disagree.
	meta, _ := vectors.GetMetadata("a1")
	stale := *meta
	stale.ClusterID = "cluster_gone"
	vector, _ := vectors.GetVector("a1")
	if err := vectors.SaveVector("a1", vector, stale); err != nil {
		t.Fatalf("SaveVector failed: %v", err)
	}

	healed, ok := engine.Assign("a1")
	if !ok {
		t.Fatal("Assign failed")
	}

	// The article ends in exactly one cluster and the pointer is consistent
	// again.
	memberOf := 0
	for _, id := range clusters.ListIDs() {
		cluster, _ := clusters.Load(id)
		if cluster.Contains("a1") {
			memberOf++
		}
	}
	if memberOf != 1 {
		t.Errorf("Article is a member of %d clusters, want 1", memberOf)
	}
	fresh, _ := vectors.GetMetadata("a1")
	if fresh.ClusterID != healed {
		t.Errorf("Pointer %s does not match assigned cluster %s", fresh.ClusterID, healed)
	}
}

func TestRemove_DowndatesCentroid(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.8)
	saveVector(t, vectors, "a1", []float64{1, 0})
	saveVector(t, vectors, "a2", []float64{0.8, 0.2})

	clusterID, _ := engine.Assign("a1")
	second, _ := engine.Assign("a2")
	if clusterID != second {
		t.Fatal("Test needs both articles in one cluster")
	}

	engine.Remove(clusterID, "a2")

	cluster, _ := clusters.Load(clusterID)
	if cluster.DocumentCount != 1 || cluster.Contains("a2") {
		t.Fatalf("Removal did not update membership: %+v", cluster)
	}
	// Centroid returns to the remaining member's embedding.
	want := []float64{1, 0}
	for i := range want {
		if math.Abs(cluster.Centroid[i]-want[i]) > 1e-6 {
			t.Errorf("Centroid[%d] = %v, want %v", i, cluster.Centroid[i], want[i])
		}
	}
}

func TestRemove_LeavesTombstone(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})
	clusterID, _ := engine.Assign("a1")

	engine.Remove(clusterID, "a1")

	cluster, found := clusters.Load(clusterID)
	if !found {
		t.Fatal("Emptied cluster should be kept as a tombstone, not deleted")
	}
	if cluster.DocumentCount != 0 || cluster.Centroid != nil || len(cluster.ArticleIDs) != 0 {
		t.Errorf("Tombstone state wrong: %+v", cluster)
	}
}

func TestRepairDuplicates(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})

	now := time.Now().UTC()
	// Plant the article in two clusters directly; cluster_a comes first in
	// scan order and keeps it.
	for _, id := range []string{"cluster_a", "cluster_b"} {
		if err := clusters.Save(&core.Cluster{
			ID:            id,
			Centroid:      []float64{1, 0},
			DocumentCount: 1,
			ArticleIDs:    []string{"a1"},
			CreatedAt:     now,
			LastUpdated:   now,
		}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	repaired := engine.RepairDuplicates()
	if len(repaired) != 1 {
		t.Fatalf("Expected 1 repaired article, got %d", len(repaired))
	}
	if got := repaired["a1"]; len(got) != 2 || got[0] != "cluster_a" {
		t.Errorf("Repair report wrong: %v", got)
	}

	keeper, _ := clusters.Load("cluster_a")
	if !keeper.Contains("a1") {
		t.Error("First cluster in scan order should keep the article")
	}
	loser, _ := clusters.Load("cluster_b")
	if loser.Contains("a1") || loser.DocumentCount != 0 {
		t.Errorf("Second cluster should lose the article: %+v", loser)
	}

	// A second pass finds nothing.
	if again := engine.RepairDuplicates(); len(again) != 0 {
		t.Errorf("Repair should be idempotent, got %v", again)
	}
}

func TestReconcileAll(t *testing.T) {
	engine, vectors, clusters := newTestEngine(t, 0.5)
	saveVector(t, vectors, "a1", []float64{1, 0})
	saveVector(t, vectors, "a2", []float64{0.99, 0.01})
	saveVector(t, vectors, "a3", []float64{0, 1})

	assignments := engine.ReconcileAll()
	if len(assignments) != 3 {
		t.Fatalf("Expected 3 assignments, got %d", len(assignments))
	}
	if assignments["a1"] != assignments["a2"] {
		t.Error("Near-identical articles should land in the same cluster")
	}
	if assignments["a1"] == assignments["a3"] {
		t.Error("Distant article should get its own cluster")
	}

	// Every article is in exactly one cluster and its pointer matches.
	for articleID, clusterID := range assignments {
		cluster, ok := clusters.Load(clusterID)
		if !ok || !cluster.Contains(articleID) {
			t.Errorf("Article %s not in assigned cluster %s", articleID, clusterID)
		}
		meta, _ := vectors.GetMetadata(articleID)
		if meta.ClusterID != clusterID {
			t.Errorf("Pointer for %s is %s, want %s", articleID, meta.ClusterID, clusterID)
		}
	}

	// A second reconcile assigns nothing new.
	if again := engine.ReconcileAll(); len(again) != 0 {
		t.Errorf("Second reconcile should be a no-op, got %v", again)
	}
}
