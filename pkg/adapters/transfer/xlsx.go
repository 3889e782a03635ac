package transfer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	bookmarkSheet = "Bookmarks"
	tagSheet      = "Tags"
)

// EncodeXLSX writes a workbook with one row per bookmark and a tag sheet.
func EncodeXLSX(w io.Writer, doc *Document) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), bookmarkSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []string{"url", "title", "description", "og_image_url", "favorite", "folder", "tags", "created_at", "updated_at", "deleted_at"}
	if err := xl.SetSheetRow(bookmarkSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range doc.Bookmarks {
		deletedAt := ""
		if e.DeletedAt != nil {
			deletedAt = e.DeletedAt.UTC().Format(time.RFC3339)
		}
		record := []interface{}{
			e.URL,
			e.Title,
			e.Description,
			e.OGImageURL,
			e.Favorite,
			e.Folder,
			strings.Join(e.Tags, ", "),
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.UpdatedAt.UTC().Format(time.RFC3339),
			deletedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(bookmarkSheet, cell, &record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := xl.NewSheet(tagSheet); err != nil {
		return fmt.Errorf("creating tag sheet: %w", err)
	}
	tagHeader := []string{"name", "color"}
	if err := xl.SetSheetRow(tagSheet, "A1", &tagHeader); err != nil {
		return fmt.Errorf("writing tag header: %w", err)
	}
	for i, t := range doc.Tags {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []string{t.Name, t.Color}
		if err := xl.SetSheetRow(tagSheet, cell, &row); err != nil {
			return fmt.Errorf("writing tag row %d: %w", i+2, err)
		}
	}

	if err := xl.SetPanes(bookmarkSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	_, err := xl.WriteTo(w)
	return err
}
