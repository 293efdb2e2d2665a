package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder is a deterministic embedder for tests. The same text
// always maps to the same unit-length vector, and query mode applies a
// fixed offset so the two roles produce related but distinct encodings.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a mock embedder of the given dimension.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &MockEmbedder{dimensions: dimensions}
}

// EmbedDocuments returns one deterministic vector per text.
func (e *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vectorFor(text, 0)
	}
	return out, nil
}

// EmbedQuery returns a deterministic query-mode vector. The seed offset
// keeps query vectors close to, but not identical with, the document
// vector for the same text.
func (e *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.vectorFor(text, 1), nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

func (e *MockEmbedder) vectorFor(text string, seed int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	base := h.Sum64()

	v := make([]float32, e.dimensions)
	var sum float64
	for i := range v {
		v[i] = float32(math.Sin(float64(base%100003)*float64(i+1)+float64(seed)*0.01) + 0.001)
		sum += float64(v[i]) * float64(v[i])
	}
	if sum > 0 {
		norm := float32(1 / math.Sqrt(sum))
		for i := range v {
			v[i] *= norm
		}
	}
	return v
}
