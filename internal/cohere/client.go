// Package cohere is a minimal client for the Cohere embed and rerank
// APIs. It implements both embedding.Embedder and rerank.Reranker.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finsight/finsight/internal/rerank"
)

const (
	defaultBaseURL     = "https://api.cohere.com"
	defaultEmbedModel  = "embed-english-v3.0"
	defaultRerankModel = "rerank-english-v3.0"
	defaultDimensions  = 1024
	defaultTimeout     = 60 * time.Second

	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cohere: status %d: %s", e.StatusCode, e.Message)
}

// Config configures the client. Zero values get production defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	EmbedModel  string
	RerankModel string
	Dimensions  int
	Timeout     time.Duration
}

// Client calls the Cohere HTTP API.
type Client struct {
	baseURL     string
	apiKey      string
	embedModel  string
	rerankModel string
	dimensions  int
	client      *http.Client
}

// NewClient creates a client from cfg. The API key is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cohere: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	if cfg.RerankModel == "" {
		cfg.RerankModel = defaultRerankModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		embedModel:  cfg.EmbedModel,
		rerankModel: cfg.RerankModel,
		dimensions:  cfg.Dimensions,
		client:      &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocuments embeds passages in search_document mode, one vector
// per text in input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, inputTypeDocument)
}

// EmbedQuery embeds a query in search_query mode. Document and query
// encodings are learned separately by the provider and must not be mixed.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int { return c.dimensions }

func (c *Client) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	var resp embedResponse
	req := embedRequest{Texts: texts, Model: c.embedModel, InputType: inputType}
	if err := c.post(ctx, "/v1/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("cohere: %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

type rerankRequest struct {
	Model      string             `json:"model"`
	Query      string             `json:"query"`
	Documents  []rerank.Candidate `json:"documents"`
	TopN       int                `json:"top_n"`
	RankFields []string           `json:"rank_fields"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank returns up to topN candidates ordered by relevance, ranked on
// the title and text fields.
func (c *Client) Rerank(ctx context.Context, query string, candidates []rerank.Candidate, topN int) ([]rerank.Ranked, error) {
	req := rerankRequest{
		Model:      c.rerankModel,
		Query:      query,
		Documents:  candidates,
		TopN:       topN,
		RankFields: []string{"title", "text"},
	}
	var resp rerankResponse
	if err := c.post(ctx, "/v1/rerank", req, &resp); err != nil {
		return nil, err
	}
	ranked := make([]rerank.Ranked, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Index < 0 || r.Index >= len(candidates) {
			return nil, fmt.Errorf("cohere: rerank index %d out of range for %d candidates", r.Index, len(candidates))
		}
		ranked = append(ranked, rerank.Ranked{Index: r.Index, Score: r.RelevanceScore})
	}
	return ranked, nil
}

// post sends a JSON request and decodes a JSON response. Non-2xx
// statuses become APIError with the provider's message when present.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("cohere: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cohere: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cohere: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := string(raw)
		var apiMsg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiMsg) == nil && apiMsg.Message != "" {
			msg = apiMsg.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cohere: decode response: %w", err)
	}
	return nil
}
