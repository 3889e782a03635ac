package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/query"
)

// BookmarkRepository defines storage operations. Every method is scoped by
// the owning user id.
type BookmarkRepository interface {
	ListBookmarks(ctx context.Context, q query.BookmarkQuery) ([]domain.RawBookmark, error)
	GetBookmark(ctx context.Context, ownerID string, id int64) (*domain.RawBookmark, error)
	CreateBookmark(ctx context.Context, b *domain.Bookmark, tagIDs []int64) error
	UpdateBookmark(ctx context.Context, b *domain.Bookmark, tagIDs []int64) error
	SoftDeleteBookmark(ctx context.Context, ownerID string, id int64, at time.Time) error
	SetFavorite(ctx context.Context, ownerID string, id int64, favorite bool, at time.Time) error
	ListTagLinks(ctx context.Context, ownerID string) ([]domain.BookmarkTagLink, error)
	Dump(ctx context.Context, ownerID string) ([]domain.RawBookmark, error) // For migration, includes soft-deleted

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, ownerID string, id int64) (*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTag(ctx context.Context, ownerID string, id int64) error
	ListTags(ctx context.Context, ownerID string) ([]domain.Tag, error)

	// Folders
	CreateFolder(ctx context.Context, folder *domain.Folder) error
	ListFolders(ctx context.Context, ownerID string) ([]domain.Folder, error)
}

// MetadataFetcher scrapes title/description/image from a page.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Metadata, error)
}

// SessionStore tracks revoked token ids until they would have expired anyway.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// BookmarkService defines the bookmark operations. A nil or empty identity
// fails with domain.ErrUnauthenticated.
type BookmarkService interface {
	ListBookmarks(ctx context.Context, id *domain.Identity, filter domain.BookmarkFilter) (*domain.BookmarkList, error)
	GetBookmark(ctx context.Context, id *domain.Identity, bookmarkID int64) (*domain.Bookmark, error)
	CreateBookmark(ctx context.Context, id *domain.Identity, in domain.BookmarkInput) (*domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, id *domain.Identity, bookmarkID int64, in domain.BookmarkInput) (*domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, id *domain.Identity, bookmarkID int64) error
	SetFavorite(ctx context.Context, id *domain.Identity, bookmarkID int64, favorite bool) (*domain.Bookmark, error)
	ListFolders(ctx context.Context, id *domain.Identity) ([]domain.Folder, error)
	FetchMetadata(ctx context.Context, id *domain.Identity, rawURL string) (*domain.Metadata, error)
}

// TagService defines the tag operations.
type TagService interface {
	CreateTag(ctx context.Context, id *domain.Identity, in domain.TagInput) (*domain.Tag, error)
	UpdateTag(ctx context.Context, id *domain.Identity, tagID int64, in domain.TagInput) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id *domain.Identity, tagID int64) error
	ListTags(ctx context.Context, id *domain.Identity, search string) ([]domain.Tag, error)
}
