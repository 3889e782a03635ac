package htmlnode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "plain", body: `<p>hello</p>`, want: "hello"},
		{name: "nested", body: `<p> Go <b>is</b> <i>fun</i> </p>`, want: "Go is fun"},
		{name: "entities decoded", body: `<p>a &amp; b</p>`, want: "a & b"},
		{name: "empty", body: `<p></p>`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := html.Parse(strings.NewReader(tt.body))
			require.NoError(t, err)
			p := find(doc, "p")
			require.NotNil(t, p)
			assert.Equal(t, tt.want, Text(p))
		})
	}
}

func TestAttr(t *testing.T) {
	n := &html.Node{
		Type: html.ElementNode,
		Data: "a",
		Attr: []html.Attribute{{Key: "HREF", Val: "https://go.dev"}, {Key: "tags", Val: "go"}},
	}

	assert.Equal(t, "https://go.dev", Attr(n, "href"))
	assert.Equal(t, "go", Attr(n, "TAGS"))
	assert.Equal(t, "", Attr(n, "missing"))
}
