package chunker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finsight/finsight/internal/models"
)

const testPage = `<html><head><title>t</title></head><body>
<h1>Quarterly Results</h1>
<p>Revenue grew twelve percent year over year on strong services demand.</p>
<h2>Guidance</h2>
<p>Management expects continued growth in the next quarter despite headwinds.</p>
<script>var ignored = "should never appear in chunks";</script>
</body></html>`

func TestChunk_DirectText(t *testing.T) {
	c := New()
	chunks := c.Chunk(context.Background(), models.TextInput("the fed held rates steady"))
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Title != "Direct Text" {
		t.Errorf("title = %q", chunks[0].Title)
	}
	if chunks[0].Text != "the fed held rates steady" {
		t.Errorf("text = %q", chunks[0].Text)
	}
	if chunks[0].Origin != "" {
		t.Errorf("origin = %q, want empty", chunks[0].Origin)
	}
}

func TestChunk_EmptyText(t *testing.T) {
	c := New()
	if chunks := c.Chunk(context.Background(), models.TextInput("   \n")); len(chunks) != 0 {
		t.Errorf("got %d chunks from blank input", len(chunks))
	}
}

func TestChunk_URLPartitionsByHeading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent")
		}
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	c := New()
	chunks := c.Chunk(context.Background(), models.URLInput(srv.URL, "AAPL 10-K"))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(chunks), chunks)
	}
	for _, ch := range chunks {
		if ch.Title != "AAPL 10-K" {
			t.Errorf("title = %q", ch.Title)
		}
		if ch.Origin != srv.URL {
			t.Errorf("origin = %q", ch.Origin)
		}
		if strings.Contains(ch.Text, "ignored") {
			t.Errorf("script content leaked into chunk: %q", ch.Text)
		}
	}
	if !strings.Contains(chunks[0].Text, "Revenue grew") {
		t.Errorf("first chunk = %q", chunks[0].Text)
	}
	if !strings.Contains(chunks[1].Text, "continued growth") {
		t.Errorf("second chunk = %q", chunks[1].Text)
	}
}

func TestChunk_UnreachableURLYieldsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New()
	chunks := c.Chunk(context.Background(), models.URLInput(srv.URL, "gone"))
	if len(chunks) != 0 {
		t.Errorf("got %d chunks from unreachable source", len(chunks))
	}
}

func TestChunk_Non200YieldsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	if chunks := c.Chunk(context.Background(), models.URLInput(srv.URL, "missing")); len(chunks) != 0 {
		t.Errorf("got %d chunks from 404 source", len(chunks))
	}
}

func TestPartitionHTML_LeadingTextSection(t *testing.T) {
	page := `<html><body><p>Intro paragraph long enough to survive the boilerplate filter.</p><h2>Later</h2><p>Section after the heading, also long enough to be kept.</p></body></html>`
	sections, err := PartitionHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %v", len(sections), sections)
	}
	if !strings.HasPrefix(sections[0], "Intro paragraph") {
		t.Errorf("first section = %q", sections[0])
	}
}
