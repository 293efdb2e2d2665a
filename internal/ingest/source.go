// Package ingest gates per-ticker document ingestion so each ticker's
// sources are fetched and indexed at most once per process.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finsight/finsight/internal/models"
)

// Source produces the raw documents to ingest for a ticker.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Fetch returns the documents for the given ticker.
	Fetch(ctx context.Context, ticker string) ([]models.DocumentInput, error)
}

// StaticSource returns a fixed document set regardless of ticker, with
// the ticker substituted into any "{ticker}" placeholder in titles and
// URLs. Useful for curated per-ticker page lists.
type StaticSource struct {
	name string
	docs []models.DocumentInput
}

// NewStaticSource builds a StaticSource.
func NewStaticSource(name string, docs []models.DocumentInput) *StaticSource {
	return &StaticSource{name: name, docs: docs}
}

// Name implements Source.
func (s *StaticSource) Name() string { return s.name }

// Fetch implements Source.
func (s *StaticSource) Fetch(ctx context.Context, ticker string) ([]models.DocumentInput, error) {
	out := make([]models.DocumentInput, len(s.docs))
	for i, d := range s.docs {
		d.Title = strings.ReplaceAll(d.Title, "{ticker}", ticker)
		d.URL = strings.ReplaceAll(d.URL, "{ticker}", ticker)
		out[i] = d
	}
	return out, nil
}

// FeedSource fetches a JSON document list from an HTTP endpoint. The
// URL template's "{ticker}" placeholder is replaced with the requested
// ticker, and the response body must decode as a DocumentInput array.
type FeedSource struct {
	name        string
	urlTemplate string
	client      *http.Client
}

// NewFeedSource builds a FeedSource for the given URL template.
func NewFeedSource(name, urlTemplate string) *FeedSource {
	return &FeedSource{
		name:        name,
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Source.
func (s *FeedSource) Name() string { return s.name }

// Fetch implements Source.
func (s *FeedSource) Fetch(ctx context.Context, ticker string) ([]models.DocumentInput, error) {
	url := strings.ReplaceAll(s.urlTemplate, "{ticker}", ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", s.name, resp.StatusCode)
	}

	var docs []models.DocumentInput
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", s.name, err)
	}
	return docs, nil
}
