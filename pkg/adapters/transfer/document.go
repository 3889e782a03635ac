package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const documentVersion = 1

// Document is the portable form of one user's bookmarks. Folders and tags
// are referenced by name so a document can be imported into any account.
type Document struct {
	Version    int        `json:"version" yaml:"version"`
	ExportedAt time.Time  `json:"exported_at" yaml:"exported_at"`
	Folders    []string   `json:"folders,omitempty" yaml:"folders,omitempty"`
	Tags       []TagEntry `json:"tags,omitempty" yaml:"tags,omitempty"`
	Bookmarks  []Entry    `json:"bookmarks" yaml:"bookmarks"`
}

type TagEntry struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

type Entry struct {
	URL         string     `json:"url" yaml:"url"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	OGImageURL  string     `json:"og_image_url,omitempty" yaml:"og_image_url,omitempty"`
	Favorite    bool       `json:"favorite,omitempty" yaml:"favorite,omitempty"`
	Folder      string     `json:"folder,omitempty" yaml:"folder,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml, html or xlsx)", s)
	}
}

// Encode writes doc in the given format.
func Encode(w io.Writer, f Format, doc *Document) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatHTML:
		return EncodeHTML(w, doc)
	case FormatXLSX:
		return EncodeXLSX(w, doc)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// Decode reads a document. Spreadsheets are export-only.
func Decode(r io.Reader, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatHTML:
		return DecodeHTML(r)
	default:
		return nil, fmt.Errorf("unsupported import format %q", f)
	}
	return &doc, nil
}
