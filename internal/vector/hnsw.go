// Package vector provides a growable approximate nearest-neighbor
// index over inner-product similarity, built as a hierarchical
// navigable small world (HNSW) graph.
package vector

import (
	"container/heap"
	"errors"
	"math"
	"math/rand"
	"sync"
)

// node is one element of the graph. links[l] holds neighbor ids at
// layer l; a node participates in layers 0..layer.
type node struct {
	vector []float32
	layer  int
	links  [][]int
}

// Options configure graph construction and search.
type Options struct {
	// M is the number of connections established per element and layer.
	// Higher M improves recall on high-dimensional embeddings at the
	// cost of memory and insert time.
	M int

	// EFConstruction is the candidate list size while inserting.
	EFConstruction int

	// EFSearch is the candidate list size while querying. It is raised
	// to k when a search asks for more results than EFSearch.
	EFSearch int
}

// DefaultOptions match the production embedding workload (1024-dim
// normalized document vectors).
var DefaultOptions = Options{
	M:              64,
	EFConstruction: 512,
	EFSearch:       128,
}

// Index is an append-only HNSW graph. Ids are dense, 0-based, and
// assigned in insertion order; they are never reused or reassigned.
// Capacity is explicit: Init fixes it to the seed size and Grow extends
// it before inserting, so the id arena backing the corpus store can
// never be overrun silently.
//
// Init and Grow are mutually exclusive with each other and with
// searches; searches only ever observe fully committed state.
type Index struct {
	mu        sync.RWMutex
	dimension int
	capacity  int
	entry     int
	maxLayer  int
	levelMul  float64
	nodes     []*node
	opts      Options
}

// Result is a single nearest-neighbor hit.
type Result struct {
	ID    int
	Score float32 // inner-product similarity, higher is closer
}

// New creates an empty, uninitialized index. Dimension and initial
// capacity are fixed by the first Init call.
func New(optFns ...func(o *Options)) *Index {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.M < 2 {
		// M == 1 would make the level normalization divide by zero
		opts.M = 2
	}
	if opts.EFConstruction < opts.M {
		opts.EFConstruction = opts.M
	}
	if opts.EFSearch < 1 {
		opts.EFSearch = 1
	}
	return &Index{
		levelMul: 1 / math.Log(float64(opts.M)),
		opts:     opts,
	}
}

// Init performs first-time construction: it fixes the dimension from
// the first vector, sets capacity to len(vectors), and bulk-inserts
// with ids 0..len(vectors)-1. Vectors are validated up front so a bad
// input leaves the index untouched.
func (ix *Index) Init(vectors [][]float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(ix.nodes) > 0 {
		return ErrAlreadyInitialized
	}
	if len(vectors) == 0 {
		return errors.New("vector: init requires at least one vector")
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return &DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}
	ix.dimension = dim
	ix.capacity = len(vectors)
	ix.nodes = make([]*node, 0, len(vectors))
	for _, v := range vectors {
		if err := ix.insert(v); err != nil {
			return err
		}
	}
	return nil
}

// Grow resizes capacity to count+len(vectors) and inserts the new
// vectors with ids continuing from the current count. Existing entries
// are untouched and never renumbered. Growing by zero vectors is a
// no-op. Returns the id assigned to the first new vector.
func (ix *Index) Grow(vectors [][]float32) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(ix.nodes) == 0 {
		return 0, ErrNotInitialized
	}
	start := len(ix.nodes)
	if len(vectors) == 0 {
		return start, nil
	}
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return 0, &DimensionMismatchError{Expected: ix.dimension, Actual: len(v)}
		}
	}
	ix.capacity = start + len(vectors)
	for _, v := range vectors {
		if err := ix.insert(v); err != nil {
			return 0, err
		}
	}
	return start, nil
}

// Search returns up to k ids ranked by descending inner-product
// similarity. Results are approximate; ordering among near-ties is not
// specified. An empty index returns no results.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.nodes) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != ix.dimension {
		return nil, &DimensionMismatchError{Expected: ix.dimension, Actual: len(query)}
	}
	curr := ix.entry
	currDist := ipDistance(ix.nodes[curr].vector, query)
	for level := ix.maxLayer; level > 0; level-- {
		curr, currDist = ix.greedyClosest(query, curr, currDist, level)
	}
	ef := ix.opts.EFSearch
	if ef < k {
		ef = k
	}
	candidates := ix.searchLayer(query, curr, currDist, ef, 0)
	hits := drainClosest(candidates, k)
	results := make([]Result, len(hits))
	for i, it := range hits {
		results[i] = Result{ID: it.id, Score: 1 - it.dist}
	}
	return results, nil
}

// Count returns the number of inserted vectors.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.nodes)
}

// Capacity returns the number of addressable vectors.
func (ix *Index) Capacity() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.capacity
}

// Dimension returns the fixed vector dimension, or 0 before Init.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

// insert adds one vector as the next id. The caller holds the write
// lock and has already validated the dimension.
func (ix *Index) insert(v []float32) error {
	if len(ix.nodes) >= ix.capacity {
		return &CapacityError{Capacity: ix.capacity, Needed: len(ix.nodes) + 1}
	}
	vec := make([]float32, len(v))
	copy(vec, v)

	id := len(ix.nodes)
	layer := int(math.Floor(-math.Log(rand.Float64()) * ix.levelMul)) //nolint:gosec
	n := &node{vector: vec, layer: layer, links: make([][]int, layer+1)}

	if id == 0 {
		ix.nodes = append(ix.nodes, n)
		ix.entry = 0
		ix.maxLayer = layer
		return nil
	}

	// Greedy descent through the layers above the new node's top layer.
	curr := ix.entry
	currDist := ipDistance(ix.nodes[curr].vector, vec)
	for level := ix.maxLayer; level > layer; level-- {
		curr, currDist = ix.greedyClosest(vec, curr, currDist, level)
	}

	// At each shared layer, collect candidates and connect to the M closest.
	for level := minInt(layer, ix.maxLayer); level >= 0; level-- {
		candidates := ix.searchLayer(vec, curr, currDist, ix.opts.EFConstruction, level)
		best := drainClosest(candidates, ix.opts.M)
		n.links[level] = make([]int, len(best))
		for i, it := range best {
			n.links[level][i] = it.id
		}
		if len(best) > 0 {
			curr, currDist = best[0].id, best[0].dist
		}
	}

	ix.nodes = append(ix.nodes, n)

	// Link neighbors back to the new node, making it reachable.
	for level := minInt(layer, ix.maxLayer); level >= 0; level-- {
		for _, neighbor := range n.links[level] {
			ix.link(neighbor, id, level)
		}
	}

	if layer > ix.maxLayer {
		ix.maxLayer = layer
		ix.entry = id
	}
	return nil
}

// greedyClosest walks level's links from start toward the vector until
// no neighbor is closer.
func (ix *Index) greedyClosest(v []float32, start int, startDist float32, level int) (int, float32) {
	curr, currDist := start, startDist
	for changed := true; changed; {
		changed = false
		n := ix.nodes[curr]
		if level >= len(n.links) {
			break
		}
		for _, neighbor := range n.links[level] {
			d := ipDistance(ix.nodes[neighbor].vector, v)
			if d < currDist {
				curr, currDist, changed = neighbor, d, true
			}
		}
	}
	return curr, currDist
}

// searchLayer performs a beam search in one layer and returns a
// max-heap holding up to ef of the closest reachable nodes.
func (ix *Index) searchLayer(v []float32, entry int, entryDist float32, ef, level int) *distQueue {
	visited := make([]bool, len(ix.nodes)+1)
	visited[entry] = true

	frontier := &distQueue{}
	heap.Init(frontier)
	heap.Push(frontier, queueItem{id: entry, dist: entryDist})

	results := &distQueue{max: true}
	heap.Init(results)
	heap.Push(results, queueItem{id: entry, dist: entryDist})

	for frontier.Len() > 0 {
		candidate := heap.Pop(frontier).(queueItem)
		if candidate.dist > results.top().dist && results.Len() >= ef {
			break
		}
		n := ix.nodes[candidate.id]
		if level >= len(n.links) {
			continue
		}
		for _, neighbor := range n.links[level] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			d := ipDistance(ix.nodes[neighbor].vector, v)
			item := queueItem{id: neighbor, dist: d}
			if results.Len() < ef {
				heap.Push(results, item)
				heap.Push(frontier, item)
			} else if d < results.top().dist {
				heap.Pop(results)
				heap.Push(results, item)
				heap.Push(frontier, item)
			}
		}
	}
	return results
}

// link records an edge from -> to at level, trimming back to the
// closest neighbors when the connection budget is exceeded. Level 0
// allows double the connections, as in the reference algorithm.
func (ix *Index) link(from, to, level int) {
	n := ix.nodes[from]
	if level >= len(n.links) {
		return
	}
	n.links[level] = append(n.links[level], to)
	limit := ix.opts.M
	if level == 0 {
		limit = 2 * ix.opts.M
	}
	if len(n.links[level]) <= limit {
		return
	}
	q := &distQueue{max: true}
	heap.Init(q)
	for _, id := range n.links[level] {
		heap.Push(q, queueItem{id: id, dist: ipDistance(n.vector, ix.nodes[id].vector)})
		if q.Len() > limit {
			heap.Pop(q)
		}
	}
	n.links[level] = n.links[level][:0]
	for q.Len() > 0 {
		n.links[level] = append(n.links[level], heap.Pop(q).(queueItem).id)
	}
}

// drainClosest reduces a max-heap to its m closest items, returned in
// ascending distance order.
func drainClosest(q *distQueue, m int) []queueItem {
	for q.Len() > m {
		heap.Pop(q)
	}
	out := make([]queueItem, q.Len())
	for i := q.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(q).(queueItem)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
