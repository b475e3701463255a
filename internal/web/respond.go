package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/importer"
)

const maxBodyBytes = 4 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Available *float64 `json:"available,omitempty"`
	Problems  []string `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps an error onto an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, calc.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, calc.ErrExceedsAvailable):
		return http.StatusConflict, "exceeds_available"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	detail := errorDetail{Code: code, Message: err.Error()}

	var allocErr *calc.AllocationError
	if errors.As(err, &allocErr) {
		available := allocErr.Available
		detail.Available = &available
	}
	var schemaErr *importer.SchemaError
	if errors.As(err, &schemaErr) {
		for _, p := range schemaErr.Problems {
			detail.Problems = append(detail.Problems, p.Error())
		}
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		detail.Message = "internal error"
	}
	writeJSON(w, status, errorBody{Error: detail})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalidf("decoding request body: %v", err)
	}
	return nil
}

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.Invalidf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t.UTC(), nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	switch strings.ToLower(v) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	}
	return false, domain.Invalidf("query parameter %s: invalid boolean %q", name, v)
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", domain.Invalidf("query parameter %s is required", name)
	}
	return v, nil
}
