package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/query"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/validate"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type BookmarkService struct {
	repo      ports.BookmarkRepository
	fetcher   ports.MetadataFetcher
	validator *validate.Validator
	log       logger.Logger
	now       func() time.Time
}

func NewBookmarkService(repo ports.BookmarkRepository, fetcher ports.MetadataFetcher, log logger.Logger) *BookmarkService {
	return &BookmarkService{
		repo:      repo,
		fetcher:   fetcher,
		validator: validate.New(),
		log:       log,
		now:       time.Now,
	}
}

// ListBookmarks returns the caller's live bookmarks, newest update first.
// Records that fail validation are logged and left out of the page.
func (s *BookmarkService) ListBookmarks(ctx context.Context, id *domain.Identity, filter domain.BookmarkFilter) (*domain.BookmarkList, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	q := query.NewBookmarkQuery(id.UserID).WithKeyword(filter.Keyword)

	var tagFilter query.TagFilterResult
	if selected := query.UniqueIDs(filter.TagIDs); len(selected) > 0 {
		links, err := s.repo.ListTagLinks(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		tagFilter = query.IntersectTags(selected, links)
		q = q.WithTagFilter(tagFilter)
	}

	raws, err := s.repo.ListBookmarks(ctx, q)
	if err != nil {
		return nil, err
	}

	list := &domain.BookmarkList{
		Bookmarks: make([]domain.Bookmark, 0, len(raws)),
		NoMatches: tagFilter.NoMatches(),
	}
	for i := range raws {
		b, err := s.validator.Bookmark(&raws[i])
		if err != nil {
			s.log.Warn("dropping invalid bookmark record",
				logger.Int64("bookmark_id", raws[i].ID),
				logger.Error(err))
			continue
		}
		list.Bookmarks = append(list.Bookmarks, *b)
	}

	return list, nil
}

func (s *BookmarkService) GetBookmark(ctx context.Context, id *domain.Identity, bookmarkID int64) (*domain.Bookmark, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	raw, err := s.repo.GetBookmark(ctx, id.UserID, bookmarkID)
	if err != nil {
		return nil, err
	}

	b, err := s.validator.Bookmark(raw)
	if err != nil {
		// A bad stored row is a store failure, not bad caller input.
		return nil, fmt.Errorf("stored bookmark %d is invalid: %v", bookmarkID, err)
	}
	return b, nil
}

// CreateBookmark persists the bookmark and its tags together. Either both
// land or neither does.
func (s *BookmarkService) CreateBookmark(ctx context.Context, id *domain.Identity, in domain.BookmarkInput) (*domain.Bookmark, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	in = normalizeBookmarkInput(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &domain.Bookmark{
		UserID:      id.UserID,
		URL:         in.URL,
		Title:       &in.Title,
		Description: in.Description,
		OGImageURL:  optional(in.OGImageURL),
		FolderID:    in.FolderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateBookmark(ctx, b, query.UniqueIDs(in.TagIDs)); err != nil {
		return nil, err
	}

	return s.GetBookmark(ctx, id, b.ID)
}

// UpdateBookmark replaces every editable field. Tags are replaced only when
// in.TagIDs is non-nil; an empty list clears them.
func (s *BookmarkService) UpdateBookmark(ctx context.Context, id *domain.Identity, bookmarkID int64, in domain.BookmarkInput) (*domain.Bookmark, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	in = normalizeBookmarkInput(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	b := &domain.Bookmark{
		ID:          bookmarkID,
		UserID:      id.UserID,
		URL:         in.URL,
		Title:       &in.Title,
		Description: in.Description,
		OGImageURL:  optional(in.OGImageURL),
		FolderID:    in.FolderID,
		UpdatedAt:   s.now().UTC(),
	}

	if err := s.repo.UpdateBookmark(ctx, b, query.UniqueIDs(in.TagIDs)); err != nil {
		return nil, err
	}

	return s.GetBookmark(ctx, id, bookmarkID)
}

// DeleteBookmark soft-deletes. Deleting twice is not an error.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, id *domain.Identity, bookmarkID int64) error {
	if err := domain.RequireIdentity(id); err != nil {
		return err
	}
	return s.repo.SoftDeleteBookmark(ctx, id.UserID, bookmarkID, s.now().UTC())
}

func (s *BookmarkService) SetFavorite(ctx context.Context, id *domain.Identity, bookmarkID int64, favorite bool) (*domain.Bookmark, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}
	if err := s.repo.SetFavorite(ctx, id.UserID, bookmarkID, favorite, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.GetBookmark(ctx, id, bookmarkID)
}

func (s *BookmarkService) ListFolders(ctx context.Context, id *domain.Identity) ([]domain.Folder, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}
	return s.repo.ListFolders(ctx, id.UserID)
}

// FetchMetadata pre-fills the create form. A failure here never blocks
// creating the bookmark by hand.
func (s *BookmarkService) FetchMetadata(ctx context.Context, id *domain.Identity, rawURL string) (*domain.Metadata, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}
	return s.fetcher.Fetch(ctx, rawURL)
}

func normalizeBookmarkInput(in domain.BookmarkInput) domain.BookmarkInput {
	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)
	in.OGImageURL = strings.TrimSpace(in.OGImageURL)
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ ports.BookmarkService = (*BookmarkService)(nil)
