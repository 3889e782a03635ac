package metadata

import (
	"context"
	"fmt"
	stdhtml "html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

var schemePattern = regexp.MustCompile(`^https?://`)

const defaultMaxBytes = 2 << 20

// Options configures a Fetcher. Zero values fall back to defaults.
type Options struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
}

// Fetcher retrieves a page and extracts its Open Graph metadata. Every call
// goes to the network; nothing is cached or retried.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	policy    *bluemonday.Policy
}

func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  maxBytes,
		policy:    bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true),
	}
}

// Fetch rejects anything that isn't http(s) without touching the network.
// The deadline comes from ctx.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Metadata, error) {
	if !schemePattern.MatchString(rawURL) {
		return nil, domain.ErrInvalidURL
	}
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return nil, domain.ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	// Non-UTF-8 pages are transcoded using the Content-Type header, a BOM or
	// a <meta charset> in the first KiB.
	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("decoding body: %w", err)}
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("parsing html: %w", err)}
	}

	// Resolve relative images against where we actually landed.
	pageURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	return f.extract(doc, pageURL), nil
}

func (f *Fetcher) extract(doc *html.Node, pageURL *url.URL) *domain.Metadata {
	p := scan(doc)

	return &domain.Metadata{
		Title:       f.clean(firstNonEmpty(p.meta("og:title"), p.title)),
		Description: f.clean(firstNonEmpty(p.meta("og:description"), p.meta("description"))),
		Image:       resolve(pageURL, p.meta("og:image")),
	}
}

// clean strips markup and collapses whitespace. Sanitize escapes entities,
// so they are decoded again afterwards.
func (f *Fetcher) clean(s string) string {
	if s == "" {
		return ""
	}
	s = stdhtml.UnescapeString(f.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
