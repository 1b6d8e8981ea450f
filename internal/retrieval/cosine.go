package retrieval

import "math"

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero-norm vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// roundSimilarity rounds to 4 decimal places and clamps into [0,1], the
// range reported to callers.
func roundSimilarity(sim float64) float64 {
	sim = math.Round(sim*10000) / 10000
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
