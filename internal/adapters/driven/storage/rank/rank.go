// Package rank scores stored vectors against a query for the embedded
// vector store backends. Server backends rank inside the database.
package rank

import (
	"math"
	"sort"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Candidate is a stored record awaiting a score.
type Candidate struct {
	Text      string
	ChunkID   string
	Embedding []float32
}

// TopK scores every candidate against query and returns the best k,
// highest first. Ties keep insertion order.
func TopK(query []float32, candidates []Candidate, k int) []domain.RetrievedContext {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	scored := make([]domain.RetrievedContext, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.RetrievedContext{
			Text:    c.Text,
			Score:   Cosine(query, c.Embedding),
			ChunkID: c.ChunkID,
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
