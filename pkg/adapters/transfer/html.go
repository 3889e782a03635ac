package transfer

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	nethtml "golang.org/x/net/html"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/htmlnode"
)

// EncodeHTML writes the Netscape bookmark file format understood by every
// browser. Tags go in the TAGS attribute, descriptions in <DD>.
func EncodeHTML(w io.Writer, doc *Document) error {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	byFolder := map[string][]Entry{}
	for _, e := range doc.Bookmarks {
		if e.DeletedAt != nil {
			continue
		}
		byFolder[e.Folder] = append(byFolder[e.Folder], e)
	}

	folders := make([]string, 0, len(byFolder))
	for name := range byFolder {
		if name != "" {
			folders = append(folders, name)
		}
	}
	sort.Strings(folders)

	for _, name := range folders {
		fmt.Fprintf(&b, "    <DT><H3>%s</H3>\n", html.EscapeString(name))
		b.WriteString("    <DL><p>\n")
		writeEntries(&b, byFolder[name], "        ")
		b.WriteString("    </DL><p>\n")
	}
	writeEntries(&b, byFolder[""], "    ")

	b.WriteString("</DL><p>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeEntries(b *strings.Builder, entries []Entry, prefix string) {
	for _, e := range entries {
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\"",
			prefix, html.EscapeString(e.URL), e.CreatedAt.Unix(), e.UpdatedAt.Unix())
		if len(e.Tags) > 0 {
			fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(e.Tags, ",")))
		}
		if e.Favorite {
			b.WriteString(" FAVORITE=\"1\"")
		}
		title := e.Title
		if title == "" {
			title = e.URL
		}
		fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(title))
		if e.Description != "" {
			fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(e.Description))
		}
	}
}

// DecodeHTML parses a Netscape bookmark file. Nested folders are flattened
// into one name joined with " / ".
func DecodeHTML(r io.Reader) (*Document, error) {
	root, err := nethtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing bookmark html: %w", err)
	}

	doc := &Document{Version: documentVersion}
	seenFolder := map[string]bool{}
	seenTag := map[string]bool{}

	var stack []string
	var pending string
	var last *Entry

	var parse func(*nethtml.Node)
	parse = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pending = htmlnode.Text(n)
				last = nil
				return

			case "a":
				href := strings.TrimSpace(htmlnode.Attr(n, "href"))
				if href == "" {
					return
				}
				e := Entry{
					URL:       href,
					Title:     htmlnode.Text(n),
					CreatedAt: unixAttr(n, "add_date"),
					Favorite:  htmlnode.Attr(n, "favorite") == "1",
				}
				e.UpdatedAt = unixAttr(n, "last_modified")
				if e.UpdatedAt.IsZero() {
					e.UpdatedAt = e.CreatedAt
				}
				if len(stack) > 0 {
					e.Folder = strings.Join(stack, " / ")
					if !seenFolder[e.Folder] {
						seenFolder[e.Folder] = true
						doc.Folders = append(doc.Folders, e.Folder)
					}
				}
				for _, t := range strings.Split(htmlnode.Attr(n, "tags"), ",") {
					if t = strings.TrimSpace(t); t != "" {
						e.Tags = append(e.Tags, t)
						if !seenTag[t] {
							seenTag[t] = true
							doc.Tags = append(doc.Tags, TagEntry{Name: t})
						}
					}
				}
				doc.Bookmarks = append(doc.Bookmarks, e)
				last = &doc.Bookmarks[len(doc.Bookmarks)-1]
				return

			case "dd":
				// Only the leading text node is the description.
				if last != nil && n.FirstChild != nil && n.FirstChild.Type == nethtml.TextNode {
					last.Description = strings.TrimSpace(n.FirstChild.Data)
				}
				last = nil

			case "dl":
				pushed := false
				if pending != "" {
					stack = append(stack, pending)
					pending = ""
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(root)
	return doc, nil
}

func unixAttr(n *nethtml.Node, key string) time.Time {
	v := htmlnode.Attr(n, key)
	if v == "" {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ts <= 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
