// Package cli provides output formatting for the Finsight CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/finsight/finsight/internal/models"
)

// OutputFormat is the format for query result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	case "compact":
		return OutputCompact, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

// WriteQueryResults writes query results to w in the given format.
func WriteQueryResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i, doc := range response.Documents {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, doc.Title, TruncateWords(doc.Text, 20))
		}
		return nil
	default:
		writeQueryResultsText(w, response)
		return nil
	}
}

func writeQueryResultsText(w io.Writer, response *models.QueryResponse) {
	fmt.Fprintf(w, "\nFound %d passages in %dms\n\n", len(response.Documents), response.QueryTime)
	for i, doc := range response.Documents {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d\n", i+1)
		if doc.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", doc.Title)
		}
		if doc.Origin != "" {
			fmt.Fprintf(w, "Origin: %s\n", doc.Origin)
		}
		fmt.Fprintf(w, "\n%s\n\n", Truncate(doc.Text, 400))
	}
}

// Truncate truncates s to at most maxLen bytes and appends "..." if
// truncated. The cut never splits a multi-byte rune.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
