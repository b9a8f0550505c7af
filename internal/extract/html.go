package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// invisibleElements hold text that is never rendered.
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// extractHTML returns the visible text nodes of an HTML document, trimmed, one per line.
func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	var parts []string
	for _, n := range doc.Nodes {
		parts = appendTextNodes(parts, n)
	}
	return strings.Join(parts, "\n"), nil
}

func appendTextNodes(parts []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			parts = append(parts, text)
		}
		return parts
	case html.ElementNode:
		if invisibleElements[n.Data] {
			return parts
		}
	case html.CommentNode, html.DoctypeNode:
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendTextNodes(parts, c)
	}
	return parts
}
