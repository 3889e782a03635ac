package domain

import "time"

// Folder groups bookmarks. It is read-only from the API.
type Folder struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}
