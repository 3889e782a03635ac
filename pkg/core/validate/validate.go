package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

// Validator checks raw store records and mutation inputs. Field names in
// errors are the json names, with the root type stripped
// (e.g. "url", "bookmark_tags[0].tag.id").
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimestamp(fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// Struct validates s and converts failures to *domain.ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(ves))}
	for _, fe := range ves {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// Bookmark validates one raw record and coerces it to the canonical shape.
// Orphaned tag associations are dropped, not reported.
func (v *Validator) Bookmark(raw *domain.RawBookmark) (*domain.Bookmark, error) {
	if raw == nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "record", Rule: "required", Message: "is required"},
		}}
	}
	if err := v.Struct(raw); err != nil {
		return nil, err
	}

	// Already checked by the "timestamp" rule.
	createdAt, _ := domain.ParseTimestamp(raw.CreatedAt)
	updatedAt, _ := domain.ParseTimestamp(raw.UpdatedAt)

	b := &domain.Bookmark{
		ID:          raw.ID,
		UserID:      raw.UserID,
		URL:         raw.URL,
		Title:       raw.Title,
		Description: raw.Description,
		OGImageURL:  raw.OGImageURL,
		IsFavorite:  raw.IsFavorite,
		FolderID:    raw.FolderID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Tags:        make([]domain.Tag, 0, len(raw.BookmarkTags)),
	}

	if raw.DeletedAt != nil {
		deletedAt, _ := domain.ParseTimestamp(*raw.DeletedAt)
		b.DeletedAt = &deletedAt
	}

	if raw.Folder != nil {
		b.Folder = &domain.Folder{ID: raw.Folder.ID, Name: raw.Folder.Name}
	}

	for _, bt := range raw.BookmarkTags {
		if bt.Tag == nil {
			continue
		}
		tagCreated, _ := domain.ParseTimestamp(bt.Tag.CreatedAt)
		b.Tags = append(b.Tags, domain.Tag{
			ID:        bt.Tag.ID,
			Name:      bt.Tag.Name,
			Color:     bt.Tag.Color,
			CreatedAt: tagCreated,
		})
	}

	return b, nil
}

func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url", "http_url":
		return "must be a valid absolute URL"
	case "timestamp":
		return "must be a date-time string"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "hexcolor":
		return "must be a hex color like #aabbcc"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
