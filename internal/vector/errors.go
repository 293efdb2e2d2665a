package vector

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Grow before the first Init.
var ErrNotInitialized = errors.New("vector: index not initialized")

// ErrAlreadyInitialized is returned by Init on a non-empty index.
var ErrAlreadyInitialized = errors.New("vector: index already initialized")

// DimensionMismatchError reports an insert or query vector whose length
// differs from the index's fixed dimension.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// CapacityError reports an insertion that would exceed the index's
// addressable capacity.
type CapacityError struct {
	Capacity int
	Needed   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("vector: capacity exceeded: capacity %d, needed %d", e.Capacity, e.Needed)
}
