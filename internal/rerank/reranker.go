// Package rerank orders a small candidate set by provider-assigned relevance.
package rerank

import "context"

// Candidate is one passage submitted for reranking. Both fields are
// rank fields: the provider scores title and text together.
type Candidate struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Ranked is one reranked hit. Index points back into the submitted
// candidate slice; Score is the provider's relevance score.
type Ranked struct {
	Index int
	Score float64
}

// Reranker returns up to topN candidates ordered by descending
// relevance. A provider failure is surfaced as-is: retrieval prefers an
// explicit error over silently degraded ranking.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Ranked, error)
}
