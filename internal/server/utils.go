package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chartsync/internal/charts"
	"chartsync/internal/dashboard"
	"chartsync/internal/logger"
	"chartsync/internal/storage"
)

const maxBodyBytes = 1 << 20

// badRequest marks errors caused by the request itself
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// GetContentType returns the content type for a served chart file
func GetContentType(filePath string) string {
	switch {
	case strings.HasSuffix(filePath, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(filePath, ".png"):
		return "image/png"
	case strings.HasSuffix(filePath, ".json"):
		return "application/json"
	}
	return "application/octet-stream"
}

// statusCode maps domain errors onto HTTP statuses
func statusCode(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownChart),
		errors.Is(err, dashboard.ErrUnknownGroup),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, charts.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrUnsupported),
		errors.Is(err, dashboard.ErrNoStorage),
		errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", err, logger.Fields{"method": r.Method, "path": r.URL.Path})
	} else {
		s.log.Debug("request rejected", logger.Fields{"path": r.URL.Path, "status": status, "error": err.Error()})
	}
	writeJSON(w, status, map[string]interface{}{
		"error":  err.Error(),
		"status": status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into target. An empty body leaves target unchanged.
func decodeJSON(r *http.Request, target interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return badRequest{fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

// statusRecorder remembers the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
