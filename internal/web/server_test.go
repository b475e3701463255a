package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMutationsRequireActor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/projects", "", createProjectRequest{ShortID: "WEB01", Name: "Web"})
	requireStatus(t, rec, http.StatusUnauthorized)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "unauthenticated", body.Error.Code)

	// Reads and registration stay open.
	requireStatus(t, env.do(http.MethodGet, "/projects", "", nil), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/users", "", createUserRequest{Email: "a@example.com", Name: "A"}), http.StatusCreated)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NotFoundf("project %s", "x"), http.StatusNotFound, "not_found"},
		{fmt.Errorf("wrap: %w", domain.ErrForbidden), http.StatusForbidden, "forbidden"},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{domain.Invalidf("bad"), http.StatusBadRequest, "validation"},
		{&calc.AllocationError{Kind: calc.ErrInvalidRange, Requested: 120}, http.StatusBadRequest, "invalid_range"},
		{&calc.AllocationError{Kind: calc.ErrExceedsAvailable, Requested: 30, Available: 25}, http.StatusConflict, "exceeds_available"},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict, "conflict"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/users", "", `{"email":"a@example.com","name":"A","admin":true}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestServe_GracefulShutdown(t *testing.T) {
	env := newTestEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ctx, ln) }()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ListenerFailureStopsShutdownWatcher(t *testing.T) {
	env := newTestEnv(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	// ctx is never cancelled; Serve must still clean up after itself.
	err = env.server.Serve(context.Background(), ln)
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}
