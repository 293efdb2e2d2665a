// Package chunker turns raw document inputs into titled passages
// suitable for independent embedding and retrieval.
package chunker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finsight/finsight/internal/models"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "finsight/1.0"

	// directTextTitle is used when a text input carries no title.
	directTextTitle = "Direct Text"

	// minSectionRunes filters out navigation fragments and other
	// boilerplate that heading partitioning produces on real pages.
	minSectionRunes = 30
)

// Chunker splits document inputs into passages. URL inputs are fetched
// over HTTP and partitioned by heading.
type Chunker struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithLogger sets a logger for per-document failure events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Chunker) { c.logger = l }
}

// WithHTTPClient overrides the HTTP client used to fetch URL inputs.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Chunker) { c.client = client }
}

// WithUserAgent sets the User-Agent header for fetches. Some sources
// (e.g. SEC EDGAR) require an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *Chunker) { c.userAgent = ua }
}

// New creates a chunker.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk converts one input into zero or more passages. Direct text
// becomes a single passage; URL inputs are fetched and partitioned by
// heading, each section sharing the document's title. A fetch or parse
// failure is logged and yields zero passages so one bad source never
// aborts an ingestion batch.
func (c *Chunker) Chunk(ctx context.Context, input models.DocumentInput) []models.DocumentChunk {
	if input.IsText() {
		text := strings.TrimSpace(input.Text)
		if text == "" {
			return nil
		}
		title := input.Title
		if title == "" {
			title = directTextTitle
		}
		return []models.DocumentChunk{{Title: title, Text: text}}
	}

	sections, err := c.fetchSections(ctx, input.URL)
	if err != nil {
		c.logger.Warn("document dropped", zap.String("url", input.URL), zap.Error(err))
		return nil
	}
	title := input.Title
	if title == "" {
		title = "Untitled"
	}
	chunks := make([]models.DocumentChunk, 0, len(sections))
	for _, section := range sections {
		chunks = append(chunks, models.DocumentChunk{
			Title:  title,
			Text:   section,
			Origin: input.URL,
		})
	}
	return chunks
}

// fetchSections downloads url and partitions the page body by heading.
func (c *Chunker) fetchSections(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	sections, err := PartitionHTML(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return sections, nil
}
