package local

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder converts text to vector embeddings for memory search.
// The local gateway only needs an embedder good enough for similarity
// ranking; production deployments use the REST gateway instead, where
// embedding happens server-side.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// HashEmbedder generates deterministic embeddings from a text hash.
// It carries no semantic signal, but it is stable, dependency-free, and
// sufficient for exercising storage and retrieval paths.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder with 384 dimensions.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{dimensions: 384}
}

// Embed creates a deterministic embedding from text.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		// Simple LCG seeded by the text hash.
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// normalize converts an embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
