package services

import (
	"context"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/validate"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type TagService struct {
	repo      ports.BookmarkRepository
	validator *validate.Validator
	now       func() time.Time
}

func NewTagService(repo ports.BookmarkRepository) *TagService {
	return &TagService{
		repo:      repo,
		validator: validate.New(),
		now:       time.Now,
	}
}

func (s *TagService) CreateTag(ctx context.Context, id *domain.Identity, in domain.TagInput) (*domain.Tag, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	in = normalizeTagInput(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		UserID:    id.UserID,
		Name:      in.Name,
		Color:     in.Color,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id *domain.Identity, tagID int64, in domain.TagInput) (*domain.Tag, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	in = normalizeTagInput(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	tag := &domain.Tag{ID: tagID, UserID: id.UserID, Name: in.Name, Color: in.Color}
	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}
	return s.repo.GetTag(ctx, id.UserID, tagID)
}

// DeleteTag hard-deletes the tag and every association pointing at it.
func (s *TagService) DeleteTag(ctx context.Context, id *domain.Identity, tagID int64) error {
	if err := domain.RequireIdentity(id); err != nil {
		return err
	}
	return s.repo.DeleteTag(ctx, id.UserID, tagID)
}

// ListTags returns the caller's tags oldest first. With a search term the
// result is narrowed to fuzzy name matches, best match first.
func (s *TagService) ListTags(ctx context.Context, id *domain.Identity, search string) ([]domain.Tag, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}

	tags, err := s.repo.ListTags(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	search = strings.TrimSpace(search)
	if search == "" {
		return tags, nil
	}

	matches := fuzzy.FindFrom(search, tagNames(tags))
	out := make([]domain.Tag, 0, len(matches))
	for _, m := range matches {
		out = append(out, tags[m.Index])
	}
	return out, nil
}

// tagNames implements fuzzy.Source.
type tagNames []domain.Tag

func (t tagNames) String(i int) string { return t[i].Name }
func (t tagNames) Len() int            { return len(t) }

func normalizeTagInput(in domain.TagInput) domain.TagInput {
	in.Name = strings.TrimSpace(in.Name)
	if in.Color != nil {
		c := strings.TrimSpace(*in.Color)
		if c == "" {
			in.Color = nil
		} else {
			in.Color = &c
		}
	}
	return in
}

var _ ports.TagService = (*TagService)(nil)
