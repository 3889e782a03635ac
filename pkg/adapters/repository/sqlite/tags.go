package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

type tagRow struct {
	ID        int64   `db:"id"`
	UserID    string  `db:"user_id"`
	Name      string  `db:"name"`
	Color     *string `db:"color"`
	CreatedAt string  `db:"created_at"`
}

func (row tagRow) toDomain() (domain.Tag, error) {
	createdAt, err := domain.ParseTimestamp(row.CreatedAt)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("tag %d: %w", row.ID, err)
	}
	return domain.Tag{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		Color:     row.Color,
		CreatedAt: createdAt,
	}, nil
}

// CreateTag inserts a new tag and sets tag.ID.
func (r *SQLiteRepository) CreateTag(ctx context.Context, tag *domain.Tag) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (user_id, name, color, created_at) VALUES (?, ?, ?, ?)",
		tag.UserID, tag.Name, tag.Color, domain.FormatTimestamp(tag.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tag id: %w", err)
	}
	tag.ID = id
	return nil
}

func (r *SQLiteRepository) GetTag(ctx context.Context, ownerID string, id int64) (*domain.Tag, error) {
	var row tagRow
	err := r.db.GetContext(ctx, &row,
		"SELECT id, user_id, name, color, created_at FROM tags WHERE id = ? AND user_id = ?", id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag %d: %w", id, err)
	}
	tag, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// UpdateTag updates a tag's name and color.
func (r *SQLiteRepository) UpdateTag(ctx context.Context, tag *domain.Tag) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?",
		tag.Name, tag.Color, tag.ID, tag.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating tag %d: %w", tag.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}

// DeleteTag hard-deletes a tag together with its associations. The
// associations are removed explicitly rather than left to a cascade.
func (r *SQLiteRepository) DeleteTag(ctx context.Context, ownerID string, id int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM tags WHERE id = ? AND user_id = ?", id, ownerID); err != nil {
			return fmt.Errorf("checking tag %d: %w", id, err)
		}
		if count == 0 {
			return domain.ErrTagNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM bookmark_tags WHERE tag_id = ?", id); err != nil {
			return fmt.Errorf("unlinking tag %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ? AND user_id = ?", id, ownerID); err != nil {
			return fmt.Errorf("deleting tag %d: %w", id, err)
		}
		return nil
	})
}

// ListTags returns the owner's tags, oldest first.
func (r *SQLiteRepository) ListTags(ctx context.Context, ownerID string) ([]domain.Tag, error) {
	var rows []tagRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT id, user_id, name, color, created_at FROM tags WHERE user_id = ? ORDER BY created_at ASC, id ASC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}

	tags := make([]domain.Tag, 0, len(rows))
	for _, row := range rows {
		tag, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
