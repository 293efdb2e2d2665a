// Package models defines core data structures for documents, chunks, and retrieval results.
package models

// DocumentInput describes one raw document to ingest: either literal
// text or a URL to fetch and partition. The URL field is the tag: when
// it is empty the input is direct text.
type DocumentInput struct {
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// IsText reports whether the input carries literal text rather than a locator.
func (d DocumentInput) IsText() bool { return d.URL == "" }

// TextInput returns a direct-text input.
func TextInput(text string) DocumentInput {
	return DocumentInput{Text: text}
}

// URLInput returns a locator input with an optional title.
func URLInput(url, title string) DocumentInput {
	return DocumentInput{URL: url, Title: title}
}

// DocumentChunk is a titled passage backing one vector index entry.
// ID is assigned at insertion time, dense and 0-based, aligned 1:1 with
// the index entry holding the chunk's embedding. Chunks are immutable
// once stored.
type DocumentChunk struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Origin string `json:"origin,omitempty"`
}
