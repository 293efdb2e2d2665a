package embedding

import (
	"context"
	"fmt"
	"testing"
)

// countingEmbedder counts provider calls so cache hits are observable.
type countingEmbedder struct {
	*MockEmbedder
	queryCalls int
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.queryCalls++
	return c.MockEmbedder.EmbedQuery(ctx, text)
}

func TestCachingEmbedder_HitAvoidsProvider(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c := NewCachingEmbedder(inner, 10)
	ctx := context.Background()

	first, err := c.EmbedQuery(ctx, "what moved the market")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.EmbedQuery(ctx, "what moved the market")
	if err != nil {
		t.Fatal(err)
	}
	if inner.queryCalls != 1 {
		t.Errorf("provider called %d times, want 1", inner.queryCalls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("cached vector differs from original")
		}
	}
}

func TestCachingEmbedder_Eviction(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c := NewCachingEmbedder(inner, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.EmbedQuery(ctx, fmt.Sprintf("query %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	// "query 0" was evicted by "query 2"; re-asking hits the provider.
	if _, err := c.EmbedQuery(ctx, "query 0"); err != nil {
		t.Fatal(err)
	}
	if inner.queryCalls != 4 {
		t.Errorf("provider called %d times, want 4", inner.queryCalls)
	}
}

func TestCachingEmbedder_DocumentsPassThrough(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c := NewCachingEmbedder(inner, 2)
	out, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("got %d vectors, want 2", len(out))
	}
	if c.Dimensions() != 8 {
		t.Errorf("Dimensions=%d, want 8", c.Dimensions())
	}
}
