package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps the core error taxonomy onto HTTP.
func statusFor(err error) (int, errorResponse) {
	var ve *domain.ValidationError
	var fe *domain.FetchError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Error: "invalid input", Fields: ve.Fields}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.As(err, &fe):
		return http.StatusInternalServerError, errorResponse{Error: fe.Error()}
	default:
		// Store failures stay opaque to the caller.
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}
}

// fail logs a failed action and writes its error response.
func fail(w http.ResponseWriter, r *http.Request, log logger.Logger, action string, err error) {
	status, body := statusFor(err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("action", action),
			logger.Int("status", status),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
	} else {
		log.Warn("request rejected",
			logger.String("action", action),
			logger.Int("status", status),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
	}

	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}
