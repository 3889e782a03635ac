package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_Extraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.Metadata
	}{
		{
			name: "open graph wins",
			body: `<html><head>
				<title>Plain title</title>
				<meta property="og:title" content="OG title">
				<meta name="description" content="plain desc">
				<meta property="og:description" content="OG desc">
				<meta property="og:image" content="https://cdn.example.com/a.png">
			</head><body></body></html>`,
			want: domain.Metadata{Title: "OG title", Description: "OG desc", Image: "https://cdn.example.com/a.png"},
		},
		{
			name: "falls back to title and description",
			body: `<html><head><title>  Plain
				title </title><meta name="description" content="plain desc"></head></html>`,
			want: domain.Metadata{Title: "Plain title", Description: "plain desc"},
		},
		{
			name: "og keys given as name",
			body: `<head><meta name="og:title" content="Named"></head>`,
			want: domain.Metadata{Title: "Named"},
		},
		{
			name: "property beats name for the same key",
			body: `<head><meta name="og:title" content="by name"><meta property="og:title" content="by property"></head>`,
			want: domain.Metadata{Title: "by property"},
		},
		{
			name: "nothing present",
			body: `<html><body><p>hello</p></body></html>`,
			want: domain.Metadata{},
		},
		{
			name: "markup and entities cleaned",
			body: `<head><meta property="og:title" content="Tom &amp; Jerry &lt;b&gt;live&lt;/b&gt;"></head>`,
			want: domain.Metadata{Title: "Tom & Jerry live"},
		},
		{
			name: "svg title ignored",
			body: `<body><svg><title>icon</title></svg></body>`,
			want: domain.Metadata{},
		},
		{
			name: "non-http image dropped",
			body: `<head><meta property="og:image" content="javascript:alert(1)"></head>`,
			want: domain.Metadata{},
		},
	}

	f := NewFetcher(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveHTML(t, tt.body)

			got, err := f.Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestFetch_RelativeImageFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/articles/post", http.StatusFound)
	})
	mux.HandleFunc("/articles/post", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<head><meta property="og:image" content="img/cover.jpg"></head>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := NewFetcher(Options{}).Fetch(context.Background(), srv.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/articles/img/cover.jpg", got.Image)
}

func TestFetch_RejectsNonHTTP(t *testing.T) {
	f := NewFetcher(Options{})
	for _, raw := range []string{"", "ftp://example.com", "HTTP://example.com", "example.com", "javascript:alert(1)", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), raw)
			assert.ErrorIs(t, err, domain.ErrInvalidURL)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestFetch_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(Options{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, "Failed to fetch: 404", err.Error())
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewFetcher(Options{}).Fetch(context.Background(), addr)

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Err)
}

func TestFetch_RespectsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewFetcher(Options{}).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<title>ok</title>`))
	}))
	defer srv.Close()

	_, err := NewFetcher(Options{UserAgent: "bookmarks-test/1.0"}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "bookmarks-test/1.0", got)
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := serveHTML(t, `<head><title>kept</title></head><body>`+string(make([]byte, 4096))+`<meta property="og:title" content="too far"></body>`)

	got, err := NewFetcher(Options{MaxBytes: 1024}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)
}

func TestFetch_DecodesCharset(t *testing.T) {
	const title = "日本語のページ"

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{
			name:        "charset in header",
			contentType: "text/html; charset=Shift_JIS",
			body:        `<html><head><title>` + title + `</title></head></html>`,
		},
		{
			name:        "charset in meta",
			contentType: "text/html",
			body:        `<html><head><meta charset="Shift_JIS"><title>` + title + `</title></head></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := japanese.ShiftJIS.NewEncoder().String(tt.body)
			require.NoError(t, err)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(encoded))
			}))
			defer srv.Close()

			got, err := NewFetcher(Options{}).Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, title, got.Title)
		})
	}
}
