package sqlite

import (
	"context"
	"fmt"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

// CreateFolder is only used by imports; the API treats folders as read-only.
func (r *SQLiteRepository) CreateFolder(ctx context.Context, folder *domain.Folder) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO folders (user_id, name, created_at) VALUES (?, ?, ?)",
		folder.UserID, folder.Name, domain.FormatTimestamp(folder.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading folder id: %w", err)
	}
	folder.ID = id
	return nil
}

func (r *SQLiteRepository) ListFolders(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	var rows []struct {
		ID     int64  `db:"id"`
		UserID string `db:"user_id"`
		Name   string `db:"name"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT id, user_id, name FROM folders WHERE user_id = ? ORDER BY name, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}

	folders := make([]domain.Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, domain.Folder{ID: row.ID, UserID: row.UserID, Name: row.Name})
	}
	return folders, nil
}
