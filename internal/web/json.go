package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vbonduro/emulsion/internal/domain"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// badRequest marks input that could not be read at all.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"detail":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}

// writeError maps err onto a status code and writes it as an errorBody.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *domain.ValidationError
		bad *badRequest
	)
	switch {
	case errors.As(err, &bad):
		writeJSON(w, s.logger, http.StatusBadRequest, errorBody{Detail: bad.msg})
	case errors.As(err, &ve):
		writeJSON(w, s.logger, http.StatusUnprocessableEntity, errorBody{Detail: "validation failed", Fields: ve.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, s.logger, http.StatusNotFound, errorBody{Detail: err.Error()})
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrInUse):
		writeJSON(w, s.logger, http.StatusConflict, errorBody{Detail: err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, s.logger, http.StatusInternalServerError, errorBody{Detail: "internal error"})
	}
}

// decodeJSON reads one JSON object from the request body into dst. Type
// mismatches on a named field are reported as validation errors on that
// field; anything else unreadable is a bad request.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var (
			typeErr *json.UnmarshalTypeError
			tooBig  *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return &badRequest{msg: "request body is empty"}
		case errors.As(err, &tooBig):
			return &badRequest{msg: fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit)}
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return domain.Invalid(typeErr.Field, "expected "+typeErr.Type.String())
		default:
			return &badRequest{msg: "malformed JSON: " + err.Error()}
		}
	}
	if dec.More() {
		return &badRequest{msg: "request body must hold a single JSON object"}
	}
	return nil
}

// queryInt parses a non-negative integer query parameter, returning def
// when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid(name, "must be a non-negative integer")
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.Invalid(name, "must be true or false")
	}
	return v, nil
}
