package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/query"
)

const bookmarkSelect = `
	SELECT b.id, b.user_id, b.url, b.title, b.description, b.og_image_url,
		b.is_favorite, b.folder_id, b.created_at, b.updated_at, b.deleted_at,
		f.id AS folder_ref, f.name AS folder_name
	FROM bookmarks b
	LEFT JOIN folders f ON f.id = b.folder_id AND f.user_id = b.user_id`

type bookmarkRow struct {
	ID          int64   `db:"id"`
	UserID      string  `db:"user_id"`
	URL         string  `db:"url"`
	Title       *string `db:"title"`
	Description *string `db:"description"`
	OGImageURL  *string `db:"og_image_url"`
	IsFavorite  bool    `db:"is_favorite"`
	FolderID    *int64  `db:"folder_id"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
	DeletedAt   *string `db:"deleted_at"`
	FolderRef   *int64  `db:"folder_ref"`
	FolderName  *string `db:"folder_name"`
}

func (row bookmarkRow) toRaw() domain.RawBookmark {
	raw := domain.RawBookmark{
		ID:           row.ID,
		UserID:       row.UserID,
		URL:          row.URL,
		Title:        row.Title,
		Description:  row.Description,
		OGImageURL:   row.OGImageURL,
		IsFavorite:   row.IsFavorite,
		FolderID:     row.FolderID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
		BookmarkTags: []domain.RawBookmarkTag{},
	}
	if row.FolderRef != nil {
		name := ""
		if row.FolderName != nil {
			name = *row.FolderName
		}
		raw.Folder = &domain.RawFolder{ID: *row.FolderRef, Name: name}
	}
	return raw
}

type bookmarkTagRow struct {
	BookmarkID   int64   `db:"bookmark_id"`
	TagID        *int64  `db:"tag_id"`
	TagName      *string `db:"tag_name"`
	TagColor     *string `db:"tag_color"`
	TagCreatedAt *string `db:"tag_created_at"`
}

func (r *SQLiteRepository) ListBookmarks(ctx context.Context, q query.BookmarkQuery) ([]domain.RawBookmark, error) {
	where, args, err := q.WithFold(r.fold).Where()
	if err != nil {
		return nil, err
	}

	stmt := bookmarkSelect + " WHERE " + where + " ORDER BY " + q.OrderBy()

	var rows []bookmarkRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(stmt), args...); err != nil {
		return nil, fmt.Errorf("querying bookmarks: %w", err)
	}
	return r.withTags(ctx, rows)
}

func (r *SQLiteRepository) GetBookmark(ctx context.Context, ownerID string, id int64) (*domain.RawBookmark, error) {
	stmt := bookmarkSelect + " WHERE b.user_id = ? AND b.id = ? AND b.deleted_at IS NULL"

	var row bookmarkRow
	err := r.db.GetContext(ctx, &row, stmt, ownerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting bookmark %d: %w", id, err)
	}

	raws, err := r.withTags(ctx, []bookmarkRow{row})
	if err != nil {
		return nil, err
	}
	return &raws[0], nil
}

// Dump returns every bookmark of the owner, soft-deleted ones included.
func (r *SQLiteRepository) Dump(ctx context.Context, ownerID string) ([]domain.RawBookmark, error) {
	stmt := bookmarkSelect + " WHERE b.user_id = ? ORDER BY b.id"

	var rows []bookmarkRow
	if err := r.db.SelectContext(ctx, &rows, stmt, ownerID); err != nil {
		return nil, fmt.Errorf("dumping bookmarks: %w", err)
	}
	return r.withTags(ctx, rows)
}

// withTags attaches tag associations in insertion order. An association whose
// tag row is gone comes back with a nil Tag.
func (r *SQLiteRepository) withTags(ctx context.Context, rows []bookmarkRow) ([]domain.RawBookmark, error) {
	out := make([]domain.RawBookmark, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	index := make(map[int64]int, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		out[i] = row.toRaw()
		index[row.ID] = i
		ids[i] = row.ID
	}

	// The ids travel as one JSON array so long lists stay under SQLite's
	// bind variable limit.
	list, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding bookmark ids: %w", err)
	}
	stmt := `
		SELECT bt.bookmark_id, t.id AS tag_id, t.name AS tag_name,
			t.color AS tag_color, t.created_at AS tag_created_at
		FROM bookmark_tags bt
		LEFT JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id IN (SELECT value FROM json_each(?))
		ORDER BY bt.bookmark_id, bt.rowid`

	var tagRows []bookmarkTagRow
	if err := r.db.SelectContext(ctx, &tagRows, r.db.Rebind(stmt), string(list)); err != nil {
		return nil, fmt.Errorf("loading bookmark tags: %w", err)
	}

	for _, tr := range tagRows {
		i, ok := index[tr.BookmarkID]
		if !ok {
			continue
		}
		var tag *domain.RawTag
		if tr.TagID != nil {
			tag = &domain.RawTag{ID: *tr.TagID, Color: tr.TagColor}
			if tr.TagName != nil {
				tag.Name = *tr.TagName
			}
			if tr.TagCreatedAt != nil {
				tag.CreatedAt = *tr.TagCreatedAt
			}
		}
		out[i].BookmarkTags = append(out[i].BookmarkTags, domain.RawBookmarkTag{Tag: tag})
	}

	return out, nil
}

// CreateBookmark inserts the bookmark and its tag associations in one
// transaction. b.ID is set on success.
func (r *SQLiteRepository) CreateBookmark(ctx context.Context, b *domain.Bookmark, tagIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkFolder(ctx, tx, b.UserID, b.FolderID); err != nil {
			return err
		}

		var deletedAt *string
		if b.DeletedAt != nil {
			s := domain.FormatTimestamp(*b.DeletedAt)
			deletedAt = &s
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO bookmarks (user_id, url, title, description, og_image_url,
				is_favorite, folder_id, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.UserID, b.URL, b.Title, b.Description, b.OGImageURL,
			b.IsFavorite, b.FolderID,
			domain.FormatTimestamp(b.CreatedAt), domain.FormatTimestamp(b.UpdatedAt), deletedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting bookmark: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading bookmark id: %w", err)
		}

		if err := insertTags(ctx, tx, b.UserID, id, tagIDs); err != nil {
			return err
		}

		b.ID = id
		return nil
	})
}

// UpdateBookmark replaces the editable fields. A nil tagIDs leaves the
// associations alone; a non-nil one replaces them wholesale.
func (r *SQLiteRepository) UpdateBookmark(ctx context.Context, b *domain.Bookmark, tagIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkFolder(ctx, tx, b.UserID, b.FolderID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE bookmarks
			SET url = ?, title = ?, description = ?, og_image_url = ?, folder_id = ?, updated_at = ?
			WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
			b.URL, b.Title, b.Description, b.OGImageURL, b.FolderID,
			domain.FormatTimestamp(b.UpdatedAt), b.ID, b.UserID,
		)
		if err != nil {
			return fmt.Errorf("updating bookmark %d: %w", b.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrBookmarkNotFound
		}

		if tagIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookmark_tags WHERE bookmark_id = ?", b.ID); err != nil {
			return fmt.Errorf("clearing tags of bookmark %d: %w", b.ID, err)
		}
		return insertTags(ctx, tx, b.UserID, b.ID, tagIDs)
	})
}

// SoftDeleteBookmark stamps deleted_at. Repeating it moves the stamp forward
// instead of failing.
func (r *SQLiteRepository) SoftDeleteBookmark(ctx context.Context, ownerID string, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookmarks SET deleted_at = ? WHERE id = ? AND user_id = ?",
		domain.FormatTimestamp(at), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("soft-deleting bookmark %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBookmarkNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetFavorite(ctx context.Context, ownerID string, id int64, favorite bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookmarks SET is_favorite = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL",
		favorite, domain.FormatTimestamp(at), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("setting favorite on bookmark %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBookmarkNotFound
	}
	return nil
}

// ListTagLinks returns every association row on the owner's bookmarks.
func (r *SQLiteRepository) ListTagLinks(ctx context.Context, ownerID string) ([]domain.BookmarkTagLink, error) {
	var links []domain.BookmarkTagLink
	err := r.db.SelectContext(ctx, &links, `
		SELECT bt.bookmark_id, bt.tag_id
		FROM bookmark_tags bt
		JOIN bookmarks b ON b.id = bt.bookmark_id
		WHERE b.user_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tag links: %w", err)
	}
	return links, nil
}

// insertTags links only tags owned by ownerID; any other id aborts the
// surrounding transaction.
func insertTags(ctx context.Context, tx *sqlx.Tx, ownerID string, bookmarkID int64, tagIDs []int64) error {
	for _, tagID := range query.UniqueIDs(tagIDs) {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bookmark_tags (bookmark_id, tag_id)
			SELECT ?, id FROM tags WHERE id = ? AND user_id = ?`,
			bookmarkID, tagID, ownerID,
		)
		if err != nil {
			return fmt.Errorf("linking tag %d: %w", tagID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %d", domain.ErrUnknownTag, tagID)
		}
	}
	return nil
}

func checkFolder(ctx context.Context, tx *sqlx.Tx, ownerID string, folderID *int64) error {
	if folderID == nil {
		return nil
	}
	var count int
	if err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM folders WHERE id = ? AND user_id = ?", *folderID, ownerID); err != nil {
		return fmt.Errorf("checking folder %d: %w", *folderID, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %d", domain.ErrUnknownFolder, *folderID)
	}
	return nil
}
