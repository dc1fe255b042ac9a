package retrieval

import "math"

// CosineSimilarity returns dot(a,b) / (|a| * |b|) in [-1, 1].
// Zero-norm or empty vectors score 0. Search skips mismatched lengths before
// scoring, so the 0 for a length mismatch only guards direct callers.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
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
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push parallel vectors slightly past 1
	return math.Max(-1, math.Min(1, sim))
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
