package domain

import "time"

// Bookmark is the canonical, validated shape handed to the presentation layer.
type Bookmark struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	URL         string     `json:"url"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	OGImageURL  *string    `json:"og_image_url"`
	IsFavorite  bool       `json:"is_favorite"`
	FolderID    *int64     `json:"folder_id"`
	Folder      *Folder    `json:"folder"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// TagIDs returns the ids of the bookmark's tags in their stored order.
func (b *Bookmark) TagIDs() []int64 {
	ids := make([]int64, 0, len(b.Tags))
	for _, t := range b.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// BookmarkTagLink is one row of the bookmark <-> tag join table.
type BookmarkTagLink struct {
	BookmarkID int64 `json:"bookmark_id" db:"bookmark_id"`
	TagID      int64 `json:"tag_id" db:"tag_id"`
}

// BookmarkFilter carries the list page's query parameters.
type BookmarkFilter struct {
	TagIDs  []int64
	Keyword string
}

// BookmarkList is the result of a filtered read. NoMatches is set when a tag
// filter was requested and nothing carries every selected tag.
type BookmarkList struct {
	Bookmarks []Bookmark `json:"data"`
	NoMatches bool       `json:"no_matches"`
}

// BookmarkInput is the payload for create and update.
// A nil TagIDs on update leaves the existing associations untouched.
type BookmarkInput struct {
	URL         string  `json:"url" validate:"required,http_url"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	OGImageURL  string  `json:"og_image_url" validate:"omitempty,url"`
	TagIDs      []int64 `json:"tag_ids" validate:"omitempty,dive,gt=0"`
	FolderID    *int64  `json:"folder_id" validate:"omitempty,gt=0"`
}
