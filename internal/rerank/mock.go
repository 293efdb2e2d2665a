package rerank

import (
	"context"
	"sort"
	"strings"
)

// MockReranker is a deterministic reranker for tests. It scores each
// candidate by query-term overlap against title and text, breaking ties
// by original position.
type MockReranker struct{}

// NewMockReranker returns a term-overlap reranker.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank implements Reranker.
func (m *MockReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Ranked, error) {
	terms := strings.Fields(strings.ToLower(query))
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		haystack := strings.ToLower(c.Title + " " + c.Text)
		score := 0.0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		ranked[i] = Ranked{Index: i, Score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked, nil
}
