package metadata

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/htmlnode"
)

// page holds the first occurrence of each meta key and the document title.
type page struct {
	byProperty map[string]string
	byName     map[string]string
	title      string
	hasTitle   bool
}

// meta prefers <meta property=...> and falls back to <meta name=...>.
func (p *page) meta(key string) string {
	if v, ok := p.byProperty[key]; ok {
		return v
	}
	return p.byName[key]
}

func scan(doc *html.Node) *page {
	p := &page{
		byProperty: map[string]string{},
		byName:     map[string]string{},
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "meta":
				content := htmlnode.Attr(n, "content")
				if prop := strings.ToLower(strings.TrimSpace(htmlnode.Attr(n, "property"))); prop != "" {
					if _, seen := p.byProperty[prop]; !seen {
						p.byProperty[prop] = content
					}
				}
				if name := strings.ToLower(strings.TrimSpace(htmlnode.Attr(n, "name"))); name != "" {
					if _, seen := p.byName[name]; !seen {
						p.byName[name] = content
					}
				}
				return
			case "title":
				if !p.hasTitle {
					p.title = htmlnode.Text(n)
					p.hasTitle = true
				}
				return
			case "svg":
				// <title> inside inline SVG is not the page title.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return p
}
