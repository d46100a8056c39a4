package clustering

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// A zero vector has similarity 0 with everything, including itself.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance computes 1 - cosine similarity. It ranges from 0 for
// identical direction to 2 for opposite direction; a zero vector is at
// distance 1 from everything.
func CosineDistance(a, b []float64) float64 {
	return 1.0 - CosineSimilarity(a, b)
}
