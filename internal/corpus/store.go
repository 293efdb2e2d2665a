// Package corpus holds the processed document records backing the
// vector index.
package corpus

import (
	"fmt"
	"sync"

	"github.com/finsight/finsight/internal/models"
)

// Store is the source of truth mapping a chunk id to its record. Ids
// are dense and assigned by append order, mirroring the vector index's
// id arena; entries are never mutated or removed. The store lives for
// the process lifetime only.
type Store struct {
	mu   sync.RWMutex
	docs []models.DocumentChunk
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// AppendAt stores chunks with ids continuing from offset. The offset
// must equal the current count; anything else would break the 1:1
// alignment with the vector index and is rejected.
func (s *Store) AppendAt(offset int, chunks []models.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset != len(s.docs) {
		return fmt.Errorf("corpus: append at offset %d, next id is %d", offset, len(s.docs))
	}
	for i, ch := range chunks {
		ch.ID = offset + i
		s.docs = append(s.docs, ch)
	}
	return nil
}

// Get returns the chunk with the given id.
func (s *Store) Get(id int) (models.DocumentChunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || id >= len(s.docs) {
		return models.DocumentChunk{}, false
	}
	return s.docs[id], true
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
