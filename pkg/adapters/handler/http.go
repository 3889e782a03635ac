package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type HTTPHandler struct {
	service ports.BookmarkService
	log     logger.Logger
}

func NewHTTPHandler(service ports.BookmarkService, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

type listResponse struct {
	Data      []domain.Bookmark `json:"data"`
	Total     int               `json:"total"`
	NoMatches bool              `json:"no_matches"`
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

// List Bookmarks. ?tags=1,2 narrows to bookmarks carrying every listed tag,
// ?q= searches title, description and URL.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	tagIDs, err := parseTagIDs(r.URL.Query()["tags"])
	if err != nil {
		fail(w, r, h.log, "list bookmarks", err)
		return
	}

	list, err := h.service.ListBookmarks(r.Context(), IdentityFrom(r.Context()), domain.BookmarkFilter{
		TagIDs:  tagIDs,
		Keyword: r.URL.Query().Get("q"),
	})
	if err != nil {
		fail(w, r, h.log, "list bookmarks", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:      list.Bookmarks,
		Total:     len(list.Bookmarks),
		NoMatches: list.NoMatches,
	})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "get bookmark", err)
		return
	}

	b, err := h.service.GetBookmark(r.Context(), IdentityFrom(r.Context()), id)
	if err != nil {
		fail(w, r, h.log, "get bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.BookmarkInput
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, "create bookmark", err)
		return
	}

	b, err := h.service.CreateBookmark(r.Context(), IdentityFrom(r.Context()), req)
	if err != nil {
		fail(w, r, h.log, "create bookmark", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Update replaces the bookmark's fields. Omitting tag_ids keeps the current tags.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "update bookmark", err)
		return
	}

	var req domain.BookmarkInput
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, "update bookmark", err)
		return
	}

	b, err := h.service.UpdateBookmark(r.Context(), IdentityFrom(r.Context()), id, req)
	if err != nil {
		fail(w, r, h.log, "update bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "delete bookmark", err)
		return
	}

	if err := h.service.DeleteBookmark(r.Context(), IdentityFrom(r.Context()), id); err != nil {
		fail(w, r, h.log, "delete bookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "favorite bookmark", err)
		return
	}

	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, "favorite bookmark", err)
		return
	}
	if req.Favorite == nil {
		fail(w, r, h.log, "favorite bookmark", &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "favorite", Rule: "required", Message: "is required"},
		}})
		return
	}

	b, err := h.service.SetFavorite(r.Context(), IdentityFrom(r.Context()), id, *req.Favorite)
	if err != nil {
		fail(w, r, h.log, "favorite bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *HTTPHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.service.ListFolders(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		fail(w, r, h.log, "list folders", err)
		return
	}
	if folders == nil {
		folders = []domain.Folder{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": folders})
}

// parseTagIDs accepts both ?tags=1,2 and ?tags=1&tags=2.
func parseTagIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, &domain.ValidationError{Fields: []domain.FieldError{
					{Field: "tags", Rule: "gt", Message: "must be a list of positive ids"},
				}}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
