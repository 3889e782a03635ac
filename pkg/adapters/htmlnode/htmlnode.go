// Package htmlnode holds small helpers over parsed golang.org/x/net/html trees
// shared by the metadata fetcher and the bookmark file importer.
package htmlnode

import (
	"strings"

	"golang.org/x/net/html"
)

// Text returns the trimmed text content of n and its descendants.
func Text(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// Attr returns the value of an attribute, case-insensitive.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
