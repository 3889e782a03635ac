package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type TagHandler struct {
	service ports.TagService
	log     logger.Logger
}

func NewTagHandler(service ports.TagService, log logger.Logger) *TagHandler {
	return &TagHandler{service: service, log: log}
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context(), IdentityFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, h.log, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": tags})
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.TagInput
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, "create tag", err)
		return
	}

	tag, err := h.service.CreateTag(r.Context(), IdentityFrom(r.Context()), req)
	if err != nil {
		fail(w, r, h.log, "create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "update tag", err)
		return
	}

	var req domain.TagInput
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, h.log, "update tag", err)
		return
	}

	tag, err := h.service.UpdateTag(r.Context(), IdentityFrom(r.Context()), id, req)
	if err != nil {
		fail(w, r, h.log, "update tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// Delete removes the tag for good, along with its bookmark associations.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "delete tag", err)
		return
	}

	if err := h.service.DeleteTag(r.Context(), IdentityFrom(r.Context()), id); err != nil {
		fail(w, r, h.log, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
