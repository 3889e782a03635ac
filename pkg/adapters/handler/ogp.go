package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// MetadataHandler serves POST /api/v1/ogp: {url} in, {title, description,
// image} or {error} out.
type MetadataHandler struct {
	service ports.BookmarkService
	log     logger.Logger
}

func NewMetadataHandler(service ports.BookmarkService, log logger.Logger) *MetadataHandler {
	return &MetadataHandler{service: service, log: log}
}

type ogpRequest struct {
	URL interface{} `json:"url"`
}

func (h *MetadataHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req ogpRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, r, "Invalid JSON", err)
		return
	}

	rawURL, ok := req.URL.(string)
	if !ok || rawURL == "" {
		h.reject(w, r, "Invalid URL", nil)
		return
	}

	meta, err := h.service.FetchMetadata(r.Context(), IdentityFrom(r.Context()), rawURL)
	switch {
	case err == nil:
		metadataFetches.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, meta)
	case errors.Is(err, domain.ErrInvalidURL):
		metadataFetches.WithLabelValues("invalid_url").Inc()
		h.reject(w, r, "Only http/https supported", err)
	case errors.Is(err, domain.ErrUnauthenticated):
		fail(w, r, h.log, "fetch metadata", err)
	default:
		metadataFetches.WithLabelValues("upstream_error").Inc()
		h.log.Warn("metadata fetch failed",
			logger.String("url", rawURL),
			logger.Error(err))
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			writeError(w, http.StatusInternalServerError, fe.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch")
	}
}

func (h *MetadataHandler) reject(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.Warn("metadata request rejected", logger.String("reason", msg), logger.Error(err))
	writeError(w, http.StatusBadRequest, msg)
}
