package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/kv"
)

// gatedKV parks the first lookup that misses until release is closed.
type gatedKV struct {
	kv.Store
	once    sync.Once
	missed  chan struct{}
	release chan struct{}
}

func newGatedKV(inner kv.Store) *gatedKV {
	return &gatedKV{Store: inner, missed: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := g.Store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		first := false
		g.once.Do(func() { first = true })
		if first {
			close(g.missed)
			<-g.release
		}
	}
	return v, err
}

func TestIdempotencyKey_ConcurrentMissRunsHandlerOnce(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	gate := newGatedKV(env.svc.KV)
	env.svc.KV = gate

	req := createTaskRequest{ProjectID: p.ID, Title: "write brief"}
	send := func() *httptest.ResponseRecorder {
		return env.do(http.MethodPost, "/tasks", owner.ID, req, headerIdempotencyKey, "k-race")
	}

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() { firstDone <- send() }()
	<-gate.missed

	// The first request has missed and holds the key.
	requireStatus(t, send(), http.StatusConflict)

	close(gate.release)
	first := <-firstDone
	requireStatus(t, first, http.StatusCreated)
	assert.Empty(t, first.Header().Get(headerReplayed))

	again := send()
	requireStatus(t, again, http.StatusCreated)
	assert.Equal(t, "true", again.Header().Get(headerReplayed))
	assert.JSONEq(t, first.Body.String(), again.Body.String())

	rec := env.do(http.MethodGet, "/projects/"+p.ID+"/tasks", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decodeBody[[]taskDTO](t, rec), 1)
}

func TestIdempotencyKey_ReplaysClientErrors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	rec := env.do(http.MethodPost, "/tasks", owner.ID, createTaskRequest{ProjectID: p.ID, Title: ""}, headerIdempotencyKey, "k-bad")
	requireStatus(t, rec, http.StatusBadRequest)

	// 4xx answers are stored too, and the key is free again afterwards.
	rec = env.do(http.MethodPost, "/tasks", owner.ID, createTaskRequest{ProjectID: p.ID, Title: ""}, headerIdempotencyKey, "k-bad")
	requireStatus(t, rec, http.StatusBadRequest)
	require.Equal(t, "true", rec.Header().Get(headerReplayed))
}
