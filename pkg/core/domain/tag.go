package domain

import "time"

type Tag struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type TagInput struct {
	Name  string  `json:"name" validate:"required,max=64"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}
