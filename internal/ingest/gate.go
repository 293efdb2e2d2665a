package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/finsight/finsight/internal/models"
	"go.uber.org/zap"
)

// DocumentAdder is the slice of the vectorstore the gate needs.
type DocumentAdder interface {
	AddDocuments(ctx context.Context, inputs []models.DocumentInput) (int, error)
}

// Gate tracks which tickers have been ingested and runs each ticker's
// ingestion exactly once. A failed ingestion is not recorded, so the
// next request for that ticker retries from scratch.
type Gate struct {
	store   DocumentAdder
	sources []Source

	// mu covers the ingested set and spans the whole ingestion, so two
	// concurrent requests for the same ticker cannot both fetch.
	mu       sync.Mutex
	ingested map[string]struct{}
	logger   *zap.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// NewGate builds a Gate over the given sources.
func NewGate(store DocumentAdder, sources []Source, opts ...GateOption) *Gate {
	g := &Gate{
		store:    store,
		sources:  sources,
		ingested: make(map[string]struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnsureIngested fetches and indexes every source's documents for the
// ticker unless that already happened. Tickers are case-insensitive.
func (g *Gate) EnsureIngested(ctx context.Context, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return fmt.Errorf("empty ticker")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.ingested[ticker]; ok {
		g.logger.Debug("ticker already ingested", zap.String("ticker", ticker))
		return nil
	}

	// All sources are fetched before anything is indexed, so a failure
	// at any source commits nothing and the retry starts from scratch.
	var docs []models.DocumentInput
	for _, src := range g.sources {
		fetched, err := src.Fetch(ctx, ticker)
		if err != nil {
			return fmt.Errorf("source %s: %w", src.Name(), err)
		}
		docs = append(docs, fetched...)
	}
	total, err := g.store.AddDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	g.ingested[ticker] = struct{}{}
	g.logger.Info("ticker ingested",
		zap.String("ticker", ticker),
		zap.Int("sources", len(g.sources)),
		zap.Int("chunks", total))
	return nil
}

// Ingested returns the sorted list of ingested tickers.
func (g *Gate) Ingested() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.ingested))
	for t := range g.ingested {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
