package vectorstore

import (
	"context"
	"fmt"

	"github.com/finsight/finsight/internal/vector"
)

// embedBatches embeds texts in contiguous batches of at most batchSize,
// preserving input order in the output. Any batch failure aborts the
// whole call; partial embeddings are never returned.
func (v *Vectorstore) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += v.batchSize {
		end := start + v.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		vecs, err := v.embedder.EmbedDocuments(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch at offset %d: %w", start, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("batch at offset %d: got %d embeddings for %d texts", start, len(vecs), len(batch))
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// checkDimensions verifies every embedding matches the index dimension
// (or, before the index is initialized, that all embeddings agree).
// Validating here lets AddDocuments commit the corpus before the index
// without risking a post-append index failure.
func (v *Vectorstore) checkDimensions(embeddings [][]float32) error {
	if len(embeddings) == 0 {
		return nil
	}
	expected := v.index.Dimension()
	if expected == 0 {
		expected = len(embeddings[0])
	}
	for _, e := range embeddings {
		if len(e) != expected {
			return &vector.DimensionMismatchError{Expected: expected, Actual: len(e)}
		}
	}
	return nil
}
