package transfer

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + filepath.Join(t.TempDir(), "transfer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newService(repo *sqlite.SQLiteRepository) *Service {
	s := NewService(repo, logger.NewNop())
	s.now = func() time.Time { return t0.Add(time.Hour) }
	return s
}

func strPtr(s string) *string { return &s }

// seed gives alice one live bookmark in a folder and one deleted favorite.
func seed(t *testing.T, repo *sqlite.SQLiteRepository) {
	t.Helper()
	ctx := context.Background()

	folder := &domain.Folder{UserID: "alice", Name: "Reading", CreatedAt: t0}
	require.NoError(t, repo.CreateFolder(ctx, folder))

	gopher := &domain.Tag{UserID: "alice", Name: "go", Color: strPtr("#00ADD8"), CreatedAt: t0}
	require.NoError(t, repo.CreateTag(ctx, gopher))
	crab := &domain.Tag{UserID: "alice", Name: "rust", CreatedAt: t0}
	require.NoError(t, repo.CreateTag(ctx, crab))

	require.NoError(t, repo.CreateBookmark(ctx, &domain.Bookmark{
		UserID:      "alice",
		URL:         "https://go.dev/",
		Title:       strPtr("Go"),
		Description: strPtr("The Go language"),
		FolderID:    &folder.ID,
		CreatedAt:   t0,
		UpdatedAt:   t0.Add(time.Minute),
	}, []int64{gopher.ID}))

	deleted := t0.Add(2 * time.Minute)
	require.NoError(t, repo.CreateBookmark(ctx, &domain.Bookmark{
		UserID:      "alice",
		URL:         "https://www.rust-lang.org/",
		Title:       strPtr("Rust"),
		Description: strPtr(""),
		IsFavorite:  true,
		CreatedAt:   t0,
		UpdatedAt:   t0,
		DeletedAt:   &deleted,
	}, []int64{crab.ID}))
}

func TestExport(t *testing.T) {
	repo := newRepo(t)
	seed(t, repo)

	doc, err := newService(repo).Export(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, documentVersion, doc.Version)
	assert.Equal(t, []string{"Reading"}, doc.Folders)
	assert.ElementsMatch(t, []TagEntry{{Name: "go", Color: "#00ADD8"}, {Name: "rust"}}, doc.Tags)
	require.Len(t, doc.Bookmarks, 2)

	live := doc.Bookmarks[0]
	assert.Equal(t, "https://go.dev/", live.URL)
	assert.Equal(t, "Go", live.Title)
	assert.Equal(t, "Reading", live.Folder)
	assert.Equal(t, []string{"go"}, live.Tags)
	assert.True(t, live.CreatedAt.Equal(t0))
	assert.True(t, live.UpdatedAt.Equal(t0.Add(time.Minute)))
	assert.Nil(t, live.DeletedAt)

	gone := doc.Bookmarks[1]
	assert.True(t, gone.Favorite)
	require.NotNil(t, gone.DeletedAt)
	assert.True(t, gone.DeletedAt.Equal(t0.Add(2*time.Minute)))

	empty, err := newService(repo).Export(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty.Bookmarks)
}

func TestImportIntoAnotherAccount(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	seed(t, repo)
	svc := newService(repo)

	doc, err := svc.Export(ctx, "alice")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, doc))
	decoded, err := Decode(&buf, FormatJSON)
	require.NoError(t, err)

	res, err := svc.Import(ctx, "bob", decoded)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Bookmarks: 2, Tags: 2, Folders: 1}, res)

	back, err := svc.Export(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, back.Bookmarks, 2)
	assert.Equal(t, "Reading", back.Bookmarks[0].Folder)
	assert.Equal(t, []string{"go"}, back.Bookmarks[0].Tags)
	assert.True(t, back.Bookmarks[0].CreatedAt.Equal(t0))
	assert.True(t, back.Bookmarks[1].Favorite)
	assert.NotNil(t, back.Bookmarks[1].DeletedAt)
	assert.ElementsMatch(t, []TagEntry{{Name: "go", Color: "#00ADD8"}, {Name: "rust"}}, back.Tags)

	// A second run finds everything already there.
	again, err := svc.Import(ctx, "bob", decoded)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Skipped: 2}, again)
}

func TestImportSkipsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	svc := newService(repo)

	doc := &Document{
		Tags: []TagEntry{{Name: "misc", Color: "not-a-color"}},
		Bookmarks: []Entry{
			{URL: "ftp://files.example.com/"},
			{URL: ""},
			{URL: "https://example.com/", Tags: []string{"misc", " ", strings.Repeat("x", 65)}},
		},
	}

	res, err := svc.Import(ctx, "carol", doc)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Bookmarks: 1, Tags: 1, Skipped: 2}, res)

	tags, err := repo.ListTags(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "misc", tags[0].Name)
	assert.Nil(t, tags[0].Color)

	raws, err := repo.Dump(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, raws, 1)
	// Missing titles fall back to the URL.
	assert.Equal(t, "https://example.com/", *raws[0].Title)
	assert.Equal(t, domain.FormatTimestamp(t0.Add(time.Hour)), raws[0].CreatedAt)
}

func TestImportRequiresOwner(t *testing.T) {
	_, err := newService(newRepo(t)).Import(context.Background(), " ", &Document{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: ".YML", want: FormatYAML},
		{in: "yaml", want: FormatYAML},
		{in: "htm", want: FormatHTML},
		{in: "xlsx", want: FormatXLSX},
		{in: "csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleDoc() *Document {
	deleted := t0.Add(time.Hour)
	return &Document{
		Version:    documentVersion,
		ExportedAt: t0,
		Folders:    []string{"Work"},
		Tags:       []TagEntry{{Name: "docs", Color: "#336699"}, {Name: "ref"}},
		Bookmarks: []Entry{
			{
				URL:         "https://pkg.go.dev/",
				Title:       "Go Packages",
				Description: "Search & browse",
				Folder:      "Work",
				Tags:        []string{"docs", "ref"},
				Favorite:    true,
				CreatedAt:   t0,
				UpdatedAt:   t0.Add(time.Minute),
			},
			{
				URL:       "https://example.com/?a=1&b=2",
				Title:     "Example <root>",
				CreatedAt: t0,
				UpdatedAt: t0,
			},
			{
				URL:       "https://old.example.com/",
				Title:     "Old",
				CreatedAt: t0,
				UpdatedAt: t0,
				DeletedAt: &deleted,
			},
		},
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, sampleDoc()))
	assert.Contains(t, buf.String(), "url: https://pkg.go.dev/")

	got, err := Decode(&buf, FormatYAML)
	require.NoError(t, err)

	want := sampleDoc()
	assert.Equal(t, want.Folders, got.Folders)
	assert.Equal(t, want.Tags, got.Tags)
	require.Len(t, got.Bookmarks, 3)
	for i := range want.Bookmarks {
		assert.Equal(t, want.Bookmarks[i].URL, got.Bookmarks[i].URL)
		assert.Equal(t, want.Bookmarks[i].Tags, got.Bookmarks[i].Tags)
		assert.True(t, want.Bookmarks[i].UpdatedAt.Equal(got.Bookmarks[i].UpdatedAt))
	}
	require.NotNil(t, got.Bookmarks[2].DeletedAt)
}

func TestHTMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatHTML, sampleDoc()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Contains(t, out, `HREF="https://example.com/?a=1&amp;b=2"`)
	assert.NotContains(t, out, "old.example.com")

	got, err := Decode(&buf, FormatHTML)
	require.NoError(t, err)
	require.Len(t, got.Bookmarks, 2)

	first := got.Bookmarks[0]
	assert.Equal(t, "https://pkg.go.dev/", first.URL)
	assert.Equal(t, "Go Packages", first.Title)
	assert.Equal(t, "Search & browse", first.Description)
	assert.Equal(t, "Work", first.Folder)
	assert.Equal(t, []string{"docs", "ref"}, first.Tags)
	assert.True(t, first.Favorite)
	assert.True(t, first.CreatedAt.Equal(t0))
	assert.True(t, first.UpdatedAt.Equal(t0.Add(time.Minute)))

	second := got.Bookmarks[1]
	assert.Equal(t, "https://example.com/?a=1&b=2", second.URL)
	assert.Equal(t, "Example <root>", second.Title)
	assert.Empty(t, second.Folder)
}

func TestDecodeBrowserExport(t *testing.T) {
	const page = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1700000000">Dev</H3>
    <DL><p>
        <DT><H3>Go</H3>
        <DL><p>
            <DT><A HREF="https://go.dev/blog/" ADD_DATE="1700000100" TAGS="go, blog">The Go Blog</A>
            <DD>Posts from the team
        </DL><p>
        <DT><A HREF="https://github.com/">GitHub</A>
    </DL><p>
    <DT><A HREF="https://news.ycombinator.com/" ADD_DATE="bogus">HN</A>
    <DT><A>no href</A>
</DL><p>`

	doc, err := DecodeHTML(strings.NewReader(page))
	require.NoError(t, err)

	require.Len(t, doc.Bookmarks, 3)
	assert.Equal(t, []string{"Dev / Go", "Dev"}, doc.Folders)
	assert.Equal(t, []TagEntry{{Name: "go"}, {Name: "blog"}}, doc.Tags)

	blog := doc.Bookmarks[0]
	assert.Equal(t, "Dev / Go", blog.Folder)
	assert.Equal(t, []string{"go", "blog"}, blog.Tags)
	assert.Equal(t, "Posts from the team", blog.Description)
	assert.Equal(t, int64(1700000100), blog.CreatedAt.Unix())
	assert.True(t, blog.UpdatedAt.Equal(blog.CreatedAt))

	assert.Equal(t, "Dev", doc.Bookmarks[1].Folder)
	assert.Empty(t, doc.Bookmarks[1].Description)

	hn := doc.Bookmarks[2]
	assert.Empty(t, hn.Folder)
	assert.True(t, hn.CreatedAt.IsZero())
}

func TestXLSXExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatXLSX, sampleDoc()))

	xl, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xl.Close()

	assert.Equal(t, []string{bookmarkSheet, tagSheet}, xl.GetSheetList())

	rows, err := xl.GetRows(bookmarkSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "url", rows[0][0])
	assert.Equal(t, "https://pkg.go.dev/", rows[1][0])
	assert.Equal(t, "docs, ref", rows[1][6])
	assert.Equal(t, "2024-03-01T13:00:00Z", rows[3][9])

	tags, err := xl.GetRows(tagSheet)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, []string{"docs", "#336699"}, tags[1])
	assert.Equal(t, "ref", tags[2][0])

	_, err = Decode(&buf, FormatXLSX)
	assert.Error(t, err)
}
