package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/validate"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// Service moves a user's bookmarks in and out of portable documents.
type Service struct {
	repo      ports.BookmarkRepository
	validator *validate.Validator
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo ports.BookmarkRepository, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validate.New(),
		log:       log,
		now:       time.Now,
	}
}

// ImportResult counts what an import did.
type ImportResult struct {
	Bookmarks int
	Tags      int
	Folders   int
	Skipped   int
}

// Export dumps every bookmark the owner has, soft-deleted ones included.
// Records that fail validation are logged and left out.
func (s *Service) Export(ctx context.Context, ownerID string) (*Document, error) {
	raws, err := s.repo.Dump(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.ListTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	folders, err := s.repo.ListFolders(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:    documentVersion,
		ExportedAt: s.now().UTC(),
		Bookmarks:  make([]Entry, 0, len(raws)),
	}
	for _, f := range folders {
		doc.Folders = append(doc.Folders, f.Name)
	}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, TagEntry{Name: t.Name, Color: deref(t.Color)})
	}

	for i := range raws {
		b, err := s.validator.Bookmark(&raws[i])
		if err != nil {
			s.log.Warn("skipping invalid bookmark in export",
				logger.Int64("bookmark_id", raws[i].ID),
				logger.Error(err))
			continue
		}
		doc.Bookmarks = append(doc.Bookmarks, toEntry(b))
	}

	return doc, nil
}

// Import adds the document's bookmarks to the owner's account. Tags and
// folders are matched by name and created when missing. A live entry is
// skipped when the owner already has that URL live; a deleted entry is
// skipped when the URL is stored at all. Invalid entries are skipped too.
func (s *Service) Import(ctx context.Context, ownerID string, doc *Document) (*ImportResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	res := &ImportResult{}

	tagIDs, err := s.tagIndex(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	folderIDs, err := s.folderIndex(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	known, err := s.knownURLs(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	colors := map[string]string{}
	for _, t := range doc.Tags {
		colors[t.Name] = t.Color
	}

	for _, e := range doc.Bookmarks {
		in := domain.BookmarkInput{
			URL:         strings.TrimSpace(e.URL),
			Title:       strings.TrimSpace(e.Title),
			Description: &e.Description,
			OGImageURL:  strings.TrimSpace(e.OGImageURL),
		}
		if in.Title == "" {
			in.Title = in.URL
		}
		if err := s.validator.Struct(in); err != nil {
			s.log.Warn("skipping invalid import entry", logger.String("url", e.URL), logger.Error(err))
			res.Skipped++
			continue
		}
		if live, ok := known[in.URL]; ok && (live || e.DeletedAt != nil) {
			res.Skipped++
			continue
		}

		var ids []int64
		for _, name := range e.Tags {
			if strings.TrimSpace(name) == "" {
				continue
			}
			id, created, err := s.ensureTag(ctx, ownerID, name, colors[name], tagIDs)
			if errors.Is(err, domain.ErrInvalidInput) {
				s.log.Warn("dropping invalid tag", logger.String("tag", name), logger.Error(err))
				continue
			}
			if err != nil {
				return res, err
			}
			if created {
				res.Tags++
			}
			ids = append(ids, id)
		}

		var folderID *int64
		if name := strings.TrimSpace(e.Folder); name != "" {
			id, ok := folderIDs[name]
			if !ok {
				f := &domain.Folder{UserID: ownerID, Name: name, CreatedAt: s.now().UTC()}
				if err := s.repo.CreateFolder(ctx, f); err != nil {
					return res, err
				}
				id = f.ID
				folderIDs[name] = id
				res.Folders++
			}
			folderID = &id
		}

		b := &domain.Bookmark{
			UserID:      ownerID,
			URL:         in.URL,
			Title:       &in.Title,
			Description: in.Description,
			OGImageURL:  optional(in.OGImageURL),
			IsFavorite:  e.Favorite,
			FolderID:    folderID,
			CreatedAt:   orNow(e.CreatedAt, s.now),
			UpdatedAt:   orNow(e.UpdatedAt, s.now),
			DeletedAt:   e.DeletedAt,
		}
		if err := s.repo.CreateBookmark(ctx, b, ids); err != nil {
			return res, fmt.Errorf("importing %s: %w", e.URL, err)
		}
		known[b.URL] = known[b.URL] || b.DeletedAt == nil
		res.Bookmarks++
	}

	return res, nil
}

func (s *Service) ensureTag(ctx context.Context, ownerID, name, color string, index map[string]int64) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if id, ok := index[name]; ok {
		return id, false, nil
	}

	in := domain.TagInput{Name: name, Color: optional(strings.TrimSpace(color))}
	if err := s.validator.Struct(in); err != nil {
		// Keep the tag, drop the unusable color.
		in.Color = nil
		if err := s.validator.Struct(in); err != nil {
			return 0, false, fmt.Errorf("tag %q: %w", name, err)
		}
	}

	tag := &domain.Tag{UserID: ownerID, Name: in.Name, Color: in.Color, CreatedAt: s.now().UTC()}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return 0, false, err
	}
	index[name] = tag.ID
	return tag.ID, true, nil
}

func (s *Service) tagIndex(ctx context.Context, ownerID string) (map[string]int64, error) {
	tags, err := s.repo.ListTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int64, len(tags))
	for _, t := range tags {
		if _, dup := index[t.Name]; !dup {
			index[t.Name] = t.ID
		}
	}
	return index, nil
}

func (s *Service) folderIndex(ctx context.Context, ownerID string) (map[string]int64, error) {
	folders, err := s.repo.ListFolders(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int64, len(folders))
	for _, f := range folders {
		if _, dup := index[f.Name]; !dup {
			index[f.Name] = f.ID
		}
	}
	return index, nil
}

// knownURLs maps every URL the owner has stored to whether any copy of it
// is still live.
func (s *Service) knownURLs(ctx context.Context, ownerID string) (map[string]bool, error) {
	raws, err := s.repo.Dump(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	urls := make(map[string]bool, len(raws))
	for _, r := range raws {
		urls[r.URL] = urls[r.URL] || r.DeletedAt == nil
	}
	return urls, nil
}

func toEntry(b *domain.Bookmark) Entry {
	e := Entry{
		URL:         b.URL,
		Title:       deref(b.Title),
		Description: deref(b.Description),
		OGImageURL:  deref(b.OGImageURL),
		Favorite:    b.IsFavorite,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		DeletedAt:   b.DeletedAt,
	}
	if b.Folder != nil {
		e.Folder = b.Folder.Name
	}
	for _, t := range b.Tags {
		e.Tags = append(e.Tags, t.Name)
	}
	return e
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orNow(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now().UTC()
	}
	return t.UTC()
}
