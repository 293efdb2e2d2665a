package chunker

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements never contribute visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"svg":      true,
}

// PartitionHTML parses an HTML document and splits its visible text
// into sections delimited by headings (h1-h6). Text before the first
// heading forms its own section. Sections shorter than minSectionRunes
// are dropped as boilerplate.
func PartitionHTML(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var sections []string
	var current strings.Builder
	flush := func() {
		text := collapseWhitespace(current.String())
		current.Reset()
		if len([]rune(text)) >= minSectionRunes {
			sections = append(sections, text)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
			}
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	flush()
	return sections, nil
}

// collapseWhitespace joins all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
