package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

func strPtr(s string) *string { return &s }

func validRaw() *domain.RawBookmark {
	return &domain.RawBookmark{
		ID:          1,
		UserID:      "user-1",
		URL:         "https://go.dev/doc/",
		Title:       strPtr("Go docs"),
		Description: nil,
		CreatedAt:   "2024-05-01T10:00:00.000000000Z",
		UpdatedAt:   "2024-05-02 08:30:00",
		Folder:      &domain.RawFolder{ID: 3, Name: "Reading"},
		BookmarkTags: []domain.RawBookmarkTag{
			{Tag: &domain.RawTag{ID: 1, Name: "go", Color: strPtr("#00add8"), CreatedAt: "2024-04-01T00:00:00Z"}},
			{Tag: nil},
			{Tag: &domain.RawTag{ID: 2, Name: "docs", CreatedAt: "2024-04-02T00:00:00Z"}},
		},
	}
}

func TestBookmarkValid(t *testing.T) {
	b, err := New().Bookmark(validRaw())
	require.NoError(t, err)

	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, "Go docs", *b.Title)
	assert.Nil(t, b.Description, "null passes through unchanged")
	assert.Equal(t, 2024, b.CreatedAt.Year())
	assert.Equal(t, 8, b.UpdatedAt.Hour())
	require.NotNil(t, b.Folder)
	assert.Equal(t, "Reading", b.Folder.Name)
	assert.Equal(t, []int64{1, 2}, b.TagIDs(), "orphaned association is excluded")
	assert.Nil(t, b.DeletedAt)
}

func TestBookmarkRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.RawBookmark)
		field  string
	}{
		{"missing id", func(r *domain.RawBookmark) { r.ID = 0 }, "id"},
		{"negative id", func(r *domain.RawBookmark) { r.ID = -5 }, "id"},
		{"non-url string", func(r *domain.RawBookmark) { r.URL = "definitely not a url" }, "url"},
		{"empty url", func(r *domain.RawBookmark) { r.URL = "" }, "url"},
		{"missing created_at", func(r *domain.RawBookmark) { r.CreatedAt = "" }, "created_at"},
		{"garbage updated_at", func(r *domain.RawBookmark) { r.UpdatedAt = "last tuesday" }, "updated_at"},
		{"bad deleted_at", func(r *domain.RawBookmark) { r.DeletedAt = strPtr("soon") }, "deleted_at"},
		{"folder without name", func(r *domain.RawBookmark) { r.Folder.Name = "" }, "folder.name"},
		{"tag without id", func(r *domain.RawBookmark) { r.BookmarkTags[0].Tag.ID = 0 }, "bookmark_tags[0].tag.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			b, err := New().Bookmark(raw)
			assert.Nil(t, b)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.True(t, ve.Has(tt.field), "fields: %+v", ve.Fields)
		})
	}
}

func TestBookmarkNilRecord(t *testing.T) {
	_, err := New().Bookmark(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBookmarkKeepsDeletedAt(t *testing.T) {
	raw := validRaw()
	raw.DeletedAt = strPtr("2024-06-01T00:00:00Z")

	b, err := New().Bookmark(raw)
	require.NoError(t, err)
	require.NotNil(t, b.DeletedAt)
	assert.Equal(t, 6, int(b.DeletedAt.Month()))
}

func TestBookmarkInput(t *testing.T) {
	v := New()
	empty := ""

	tests := []struct {
		name   string
		in     domain.BookmarkInput
		fields []string
	}{
		{
			name: "valid with empty description",
			in:   domain.BookmarkInput{URL: "https://example.com", Title: "Example", Description: &empty},
		},
		{
			name:   "missing everything",
			in:     domain.BookmarkInput{},
			fields: []string{"url", "title", "description"},
		},
		{
			name:   "non-http url",
			in:     domain.BookmarkInput{URL: "ftp://example.com/file", Title: "x", Description: &empty},
			fields: []string{"url"},
		},
		{
			name:   "bad image url and tag id",
			in:     domain.BookmarkInput{URL: "https://example.com", Title: "x", Description: &empty, OGImageURL: "nope", TagIDs: []int64{1, 0}},
			fields: []string{"og_image_url", "tag_ids[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.in)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			for _, f := range tt.fields {
				assert.True(t, ve.Has(f), "missing %s in %+v", f, ve.Fields)
			}
		})
	}
}

func TestTagInput(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&domain.TagInput{Name: "go"}))
	assert.NoError(t, v.Struct(&domain.TagInput{Name: "go", Color: strPtr("#00ADD8")}))

	var ve *domain.ValidationError
	require.ErrorAs(t, v.Struct(&domain.TagInput{Name: "", Color: strPtr("blue")}), &ve)
	assert.True(t, ve.Has("name"))
	assert.True(t, ve.Has("color"))
}
