package domain

// RawBookmark is a bookmark exactly as the store returns it: nullable
// columns stay nullable, timestamps stay strings, and nested tag
// associations may point at a tag that no longer exists.
type RawBookmark struct {
	ID           int64            `json:"id" validate:"gt=0"`
	UserID       string           `json:"user_id" validate:"required"`
	URL          string           `json:"url" validate:"required,url"`
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	OGImageURL   *string          `json:"og_image_url"`
	IsFavorite   bool             `json:"is_favorite"`
	FolderID     *int64           `json:"folder_id"`
	CreatedAt    string           `json:"created_at" validate:"required,timestamp"`
	UpdatedAt    string           `json:"updated_at" validate:"required,timestamp"`
	DeletedAt    *string          `json:"deleted_at" validate:"omitempty,timestamp"`
	Folder       *RawFolder       `json:"folder"`
	BookmarkTags []RawBookmarkTag `json:"bookmark_tags" validate:"dive"`
}

type RawFolder struct {
	ID   int64  `json:"id" validate:"gt=0"`
	Name string `json:"name" validate:"required"`
}

// RawBookmarkTag is one association; Tag is nil when the association is orphaned.
type RawBookmarkTag struct {
	Tag *RawTag `json:"tag"`
}

type RawTag struct {
	ID        int64   `json:"id" validate:"gt=0"`
	Name      string  `json:"name" validate:"required"`
	Color     *string `json:"color"`
	CreatedAt string  `json:"created_at" validate:"required,timestamp"`
}
