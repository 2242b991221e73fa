package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"libris/internal/api"
	"libris/internal/library"
	"libris/internal/logging"
)

const (
	maxBodyBytes      = 1 << 20
	codeMalformedBody = "MalformedBody"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrInvalidInput), errors.Is(err, library.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response", logging.Error(err))
	}
}

// writeFailure reports err to the client. Storage faults are logged and
// replaced by a generic message.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err))
	}
	s.writeJSON(w, r, status, api.FromError(err))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	s.writeJSON(w, r, status, api.ErrorResponse{Error: message, Code: code})
}

// decodeBody reads a JSON object into dst. An empty body decodes as {}.
// A field of the wrong JSON type is reported by name as InvalidField.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		s.writeError(w, r, http.StatusBadRequest,
			typeErr.Field+" must be "+jsonTypeName(typeErr.Type), library.CodeInvalidField)
		return false
	}
	s.writeError(w, r, http.StatusBadRequest, "Request body must be a JSON object", codeMalformedBody)
	return false
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "true or false"
	case reflect.String:
		return "a string"
	}
	return "a valid value"
}

// parseID parses a positive integer id. Anything else cannot name a record,
// so callers answer with the entity's not-found message.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, label string) (int64, bool) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, label+" not found", "")
	}
	return id, ok
}

// prefersHTML reports whether the Accept header ranks text/html above
// application/json. Missing or wildcard-only headers select JSON.
func prefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	htmlQ, jsonQ := -1.0, -1.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				q = parsed
			}
		}
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			htmlQ = max(htmlQ, q)
		case "application/json":
			jsonQ = max(jsonQ, q)
		}
	}
	return htmlQ > 0 && htmlQ > jsonQ
}
