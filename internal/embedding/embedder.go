// Package embedding provides text embedding via an external provider.
package embedding

import "context"

// Embedder produces fixed-dimension vectors for document passages and
// queries. The provider may encode the two roles differently, so
// document and query embedding must never be conflated.
type Embedder interface {
	// EmbedDocuments returns one vector per input text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single free-text query in query mode.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the fixed embedding dimension.
	Dimensions() int
}
