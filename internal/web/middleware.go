package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/kv"
)

const (
	headerUserID         = "X-User-ID"
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

// responseRecorder tees the status and body of a response.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter, captureBody bool) *responseRecorder {
	rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
	if captureBody {
		rec.body = &bytes.Buffer{}
	}
	return rec
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.body != nil {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newResponseRecorder(w, false)
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if id := r.Header.Get(headerUserID); id != "" {
			fields = append(fields, zap.String("actor", id))
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("http_request", fields...)
			return
		}
		s.logger.Debug("http_request", fields...)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// withActor attaches X-User-ID to the request context. Mutating requests
// without it are rejected, except user registration.
func (s *Server) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerUserID))
		if id == "" {
			if isMutating(r.Method) && !(r.Method == http.MethodPost && r.URL.Path == "/users") {
				s.writeError(w, r, fmt.Errorf("%w: %s header is required", domain.ErrUnauthenticated, headerUserID))
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(actor.WithUserID(r.Context(), id)))
	})
}

// storedResponse is what the idempotency layer keeps per actor and key.
type storedResponse struct {
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

// keyLocks rejects a second request for an idempotency key that is still
// being served.
type keyLocks struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (l *keyLocks) claim(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.keys == nil {
		l.keys = map[string]struct{}{}
	}
	if _, busy := l.keys[key]; busy {
		return false
	}
	l.keys[key] = struct{}{}
	return true
}

func (l *keyLocks) release(key string) {
	l.mu.Lock()
	delete(l.keys, key)
	l.mu.Unlock()
}

// idempotency replays the first non-5xx response recorded for the same
// actor and Idempotency-Key on POST and PUT.
func (s *Server) idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientKey := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
		userID, hasActor := actor.UserID(r.Context())
		if clientKey == "" || !hasActor || s.svc.KV == nil ||
			(r.Method != http.MethodPost && r.Method != http.MethodPut) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := kv.Key("idempotency", userID, clientKey)

		// The claim covers the lookup too, so a request that misses cannot
		// run the handler after another one has stored its record.
		if !s.inflight.claim(key) {
			s.writeError(w, r, fmt.Errorf("%w: a request with idempotency key %q is in progress", domain.ErrConflict, clientKey))
			return
		}
		defer s.inflight.release(key)

		raw, err := s.svc.KV.Get(ctx, key)
		switch {
		case err == nil:
			s.replay(w, r, clientKey, raw)
			return
		case !errors.Is(err, domain.ErrNotFound):
			s.writeError(w, r, fmt.Errorf("reading idempotency record: %w", err))
			return
		}

		rec := newResponseRecorder(w, true)
		next.ServeHTTP(rec, r)
		if rec.status >= http.StatusInternalServerError {
			return
		}

		payload, err := json.Marshal(storedResponse{
			Method:      r.Method,
			Path:        r.URL.Path,
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			StoredAt:    time.Now().UTC(),
		})
		if err == nil {
			err = s.svc.KV.Set(ctx, key, payload)
		}
		if err != nil {
			s.logger.Warn("storing idempotency record", zap.String("key", key), zap.Error(err))
		}
	})
}

func (s *Server) replay(w http.ResponseWriter, r *http.Request, clientKey string, raw []byte) {
	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.writeError(w, r, fmt.Errorf("decoding idempotency record: %w", err))
		return
	}
	if stored.Method != r.Method || stored.Path != r.URL.Path {
		s.writeError(w, r, fmt.Errorf("%w: idempotency key %q was used for %s %s",
			domain.ErrConflict, clientKey, stored.Method, stored.Path))
		return
	}
	w.Header().Set("Content-Type", stored.ContentType)
	w.Header().Set(headerReplayed, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
