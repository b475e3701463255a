package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alexanderramin/taskup/internal/app"
	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/testutil"
)

type testEnv struct {
	t       *testing.T
	svc     *app.Services
	server  *Server
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	svc := app.New(testutil.NewTestDB(t), calc.DetailScale)
	server := NewServer(svc, zaptest.NewLogger(t), "127.0.0.1:0", 0)
	return &testEnv{t: t, svc: svc, server: server, handler: server.Handler()}
}

// do sends a request. body may be nil, a string (sent raw) or any value
// (JSON-encoded). headers are key/value pairs.
func (e *testEnv) do(method, path, userID string, body any, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set(headerUserID, userID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

func (e *testEnv) createUser(name, email string) userDTO {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/users", "", createUserRequest{Email: email, Name: name})
	requireStatus(e.t, rec, http.StatusCreated)
	return decodeBody[userDTO](e.t, rec)
}

func (e *testEnv) createProject(ownerID, shortID string) projectDTO {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/projects", ownerID, createProjectRequest{
		ShortID:     shortID,
		Name:        "Project " + shortID,
		TotalBudget: 1000,
	})
	requireStatus(e.t, rec, http.StatusCreated)
	return decodeBody[projectDTO](e.t, rec)
}

func (e *testEnv) addStakeholder(ownerID, projectID, userID string, pct float64) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(http.MethodPost, "/stakeholders", ownerID, createStakeholderRequest{
		ProjectID:  projectID,
		UserID:     userID,
		Role:       "sponsor",
		Percentage: pct,
	})
}

func ptr[T any](v T) *T { return &v }
