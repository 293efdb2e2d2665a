// Package vectorstore composes chunking, batch embedding, vector
// indexing, and reranked retrieval over a single growing corpus.
package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsight/finsight/internal/chunker"
	"github.com/finsight/finsight/internal/corpus"
	"github.com/finsight/finsight/internal/embedding"
	"github.com/finsight/finsight/internal/models"
	"github.com/finsight/finsight/internal/rerank"
	"github.com/finsight/finsight/internal/vector"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRetrieveTopK = 10
	defaultRerankTopK   = 3
	defaultBatchSize    = 90
	defaultChunkWorkers = 8
)

// Vectorstore owns the vector index and corpus store and exposes the
// two core operations: AddDocuments and Retrieve. It is constructed
// once per process; index and corpus grow monotonically and are never
// rebuilt.
type Vectorstore struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	reranker rerank.Reranker
	index    *vector.Index
	store    *corpus.Store

	retrieveTopK int
	rerankTopK   int
	batchSize    int
	chunkWorkers int

	// mu serializes ingestion: the id offset, index growth, and corpus
	// append must happen in one critical section so ids stay aligned
	// across concurrent AddDocuments calls. Retrieval reads the last
	// committed state and is not blocked by mu.
	mu     sync.Mutex
	logger *zap.Logger
}

// Option configures a Vectorstore.
type Option func(*Vectorstore)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Vectorstore) { v.logger = l }
}

// WithRetrieveTopK sets the default first-stage candidate pool size.
func WithRetrieveTopK(k int) Option {
	return func(v *Vectorstore) {
		if k > 0 {
			v.retrieveTopK = k
		}
	}
}

// WithRerankTopK sets the default final result size.
func WithRerankTopK(k int) Option {
	return func(v *Vectorstore) {
		if k > 0 {
			v.rerankTopK = k
		}
	}
}

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) Option {
	return func(v *Vectorstore) {
		if n > 0 {
			v.batchSize = n
		}
	}
}

// WithChunkWorkers bounds the per-call chunking worker pool.
func WithChunkWorkers(n int) Option {
	return func(v *Vectorstore) {
		if n > 0 {
			v.chunkWorkers = n
		}
	}
}

// WithIndexOptions forwards options to the vector index.
func WithIndexOptions(fns ...func(o *vector.Options)) Option {
	return func(v *Vectorstore) { v.index = vector.New(fns...) }
}

// New creates a Vectorstore around the given collaborators.
func New(ch *chunker.Chunker, emb embedding.Embedder, rr rerank.Reranker, opts ...Option) *Vectorstore {
	v := &Vectorstore{
		chunker:      ch,
		embedder:     emb,
		reranker:     rr,
		index:        vector.New(),
		store:        corpus.NewStore(),
		retrieveTopK: defaultRetrieveTopK,
		rerankTopK:   defaultRerankTopK,
		batchSize:    defaultBatchSize,
		chunkWorkers: defaultChunkWorkers,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// AddDocuments chunks, embeds, and indexes a batch of raw documents.
// Sources that fail to chunk are dropped individually; a provider
// failure aborts the whole call before any index or store mutation, so
// the index/corpus pair either both advance or neither does. Returns
// the number of chunks indexed.
func (v *Vectorstore) AddDocuments(ctx context.Context, inputs []models.DocumentInput) (int, error) {
	job := uuid.New().String()[:8]

	chunks := v.chunkAll(ctx, inputs)
	if len(chunks) == 0 {
		v.logger.Info("ingestion produced no chunks",
			zap.String("job", job),
			zap.Int("documents", len(inputs)))
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := v.embedBatches(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	start := v.store.Len()
	if count := v.index.Count(); count != start {
		return 0, fmt.Errorf("index and corpus misaligned: %d vectors, %d chunks", count, start)
	}
	if err := v.checkDimensions(embeddings); err != nil {
		return 0, err
	}

	// Corpus first: searches do not take v.mu, so the index must never
	// hand out an id the store cannot resolve. Appending before Init or
	// Grow keeps every visible id resolvable; dimensions were validated
	// above so the index step cannot fail after the append.
	if err := v.store.AppendAt(start, chunks); err != nil {
		return 0, err
	}
	if start == 0 {
		if err := v.index.Init(embeddings); err != nil {
			return 0, fmt.Errorf("initialize index: %w", err)
		}
	} else {
		if _, err := v.index.Grow(embeddings); err != nil {
			return 0, fmt.Errorf("grow index: %w", err)
		}
	}

	v.logger.Info("documents indexed",
		zap.String("job", job),
		zap.Int("documents", len(inputs)),
		zap.Int("chunks", len(chunks)),
		zap.Int("index_size", v.index.Count()))
	return len(chunks), nil
}

// chunkAll chunks every input concurrently with a bounded worker pool.
// Per-document failures surface as zero chunks from the chunker, never
// as errors, so the batch always completes. The flattened output
// preserves input order, which embedding and id assignment rely on.
func (v *Vectorstore) chunkAll(ctx context.Context, inputs []models.DocumentInput) []models.DocumentChunk {
	results := make([][]models.DocumentChunk, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.chunkWorkers)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = v.chunker.Chunk(gctx, input)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	var chunks []models.DocumentChunk
	for _, r := range results {
		chunks = append(chunks, r...)
	}
	return chunks
}

// Retrieve answers a free-text query with up to rerankTopK passages in
// provider-reranked order. Zero values for the top-k arguments use the
// configured defaults. An empty index yields an empty result.
func (v *Vectorstore) Retrieve(ctx context.Context, query string, retrieveTopK, rerankTopK int) ([]models.RetrievedDocument, error) {
	if retrieveTopK <= 0 {
		retrieveTopK = v.retrieveTopK
	}
	if rerankTopK <= 0 {
		rerankTopK = v.rerankTopK
	}
	if rerankTopK > retrieveTopK {
		rerankTopK = retrieveTopK
	}
	if v.index.Count() == 0 {
		return nil, nil
	}

	queryVec, err := v.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := v.index.Search(queryVec, retrieveTopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	records := make([]models.DocumentChunk, len(hits))
	candidates := make([]rerank.Candidate, len(hits))
	for i, h := range hits {
		record, ok := v.store.Get(h.ID)
		if !ok {
			return nil, fmt.Errorf("no corpus record for id %d", h.ID)
		}
		records[i] = record
		candidates[i] = rerank.Candidate{Title: record.Title, Text: record.Text}
	}

	ranked, err := v.reranker.Rerank(ctx, query, candidates, rerankTopK)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	// Reranked indices point into the candidate slice, not at chunk ids.
	results := make([]models.RetrievedDocument, 0, len(ranked))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(records) {
			return nil, fmt.Errorf("rerank index %d out of range for %d candidates", r.Index, len(records))
		}
		record := records[r.Index]
		results = append(results, models.RetrievedDocument{
			Title:  record.Title,
			Text:   record.Text,
			Origin: record.Origin,
		})
	}
	return results, nil
}

// Stats reports the current corpus and index sizes.
type Stats struct {
	Chunks        int `json:"chunks"`
	IndexSize     int `json:"index_size"`
	IndexCapacity int `json:"index_capacity"`
	Dimensions    int `json:"dimensions"`
}

// Stat returns a snapshot of the store's sizes.
func (v *Vectorstore) Stat() Stats {
	return Stats{
		Chunks:        v.store.Len(),
		IndexSize:     v.index.Count(),
		IndexCapacity: v.index.Capacity(),
		Dimensions:    v.index.Dimension(),
	}
}
