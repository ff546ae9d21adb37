package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/config"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
	"github.com/phrazzld/vocab-drill/internal/task"
	"github.com/phrazzld/vocab-drill/internal/testutils"
)

type testServer struct {
	server *httptest.Server
	stores testutils.TestStores
}

func newTestServer(t *testing.T, words ...*domain.WordEntry) *testServer {
	t.Helper()

	stores := testutils.NewSQLiteStores(t)
	if len(words) > 0 {
		testutils.MustInsertWords(t, stores.Words, words...)
	}

	log := testutils.DiscardLogger()
	cfg := config.EngineConfig{
		Tiers:       []string{"A1", "A2"},
		DefaultTier: "A1",
		WorkerCount: 2,
		QueueSize:   16,
	}

	engine := drill.NewEngine(stores.DB, stores.Words, stores.Fields, log,
		drill.WithRand(rand.New(rand.NewPCG(7, 7))))
	dispatcher := task.NewDispatcher(cfg, log)
	dispatcher.Start()
	t.Cleanup(dispatcher.Stop)

	handler := NewDrillHandler(engine, dispatcher, cfg, log)
	server := httptest.NewServer(NewRouter(handler, log))
	t.Cleanup(server.Close)

	return &testServer{server: server, stores: stores}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func assertError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()

	assert.Equal(t, status, resp.StatusCode)
	body := decode[shared.ErrorResponse](t, resp)
	assert.Equal(t, message, body.Error)
	assert.NotEmpty(t, body.TraceID)
}

func hund(t *testing.T) *domain.WordEntry {
	return testutils.Word(t, "der", "Hund", "dog", "A1")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDrillFlow(t *testing.T) {
	s := newTestServer(t, hund(t))

	resp := s.do(t, http.MethodPost, "/api/session", StartSessionRequest{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[SessionResponse](t, resp)
	assert.Equal(t, SessionResponse{Tier: "A1", Mode: "normal", TotalCount: 1}, session,
		"an empty request starts the default tier")

	resp = s.do(t, http.MethodGet, "/api/session/prompt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prompt := decode[drill.Prompt](t, resp)
	assert.Equal(t, "Hund", prompt.Text)
	assert.True(t, prompt.MarkerRequired)
	assert.Len(t, prompt.Options, drill.OptionCount)
	assert.Contains(t, prompt.Options, "dog")

	resp = s.do(t, http.MethodPost, "/api/session/answer", AnswerRequest{Marker: "die", Translation: "dog"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer := decode[AnswerResponse](t, resp)
	assert.Equal(t, AnswerResponse{
		Correct:     false,
		Text:        "Hund",
		Marker:      "der",
		Translation: "dog",
		ErrorCount:  1,
	}, answer)

	resp = s.do(t, http.MethodGet, "/api/errors", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	errs := decode[ErrorsResponse](t, resp)
	assert.Equal(t, 1, errs.Count)
	require.Len(t, errs.Words, 1)
	assert.Equal(t, "Hund", errs.Words[0].Text)

	resp = s.do(t, http.MethodPost, "/api/session/answer", AnswerRequest{Marker: "der", Translation: "dog"})
	assertError(t, resp, http.StatusConflict, "no word pending, fetch a prompt first")

	resp = s.do(t, http.MethodGet, "/api/session/prompt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/session/answer", AnswerRequest{Marker: "der", Translation: "dog"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer = decode[AnswerResponse](t, resp)
	assert.True(t, answer.Correct)
	assert.Equal(t, 1, answer.CompletedCount)
	assert.Zero(t, answer.ErrorCount)

	resp = s.do(t, http.MethodPost, "/api/session/suspend", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/tiers/A1/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ProgressResponse{Tier: "A1", Completed: 1, Total: 1, Ratio: 1}, decode[ProgressResponse](t, resp))
}

func TestErrorCorrectionFlow(t *testing.T) {
	s := newTestServer(t, hund(t))

	resp := s.do(t, http.MethodPost, "/api/session", StartSessionRequest{Mode: "error_correction"})
	assertError(t, resp, http.StatusNotFound, "no words to correct")

	require.NoError(t, s.stores.Words.SetError(context.Background(), "Hund", true))

	resp = s.do(t, http.MethodPost, "/api/session", StartSessionRequest{Mode: "error_correction"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "error_correction", decode[SessionResponse](t, resp).Mode)

	resp = s.do(t, http.MethodGet, "/api/session/prompt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/session/answer", AnswerRequest{Marker: "der", Translation: "dog"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[AnswerResponse](t, resp).Cleared)

	resp = s.do(t, http.MethodGet, "/api/session/prompt", nil)
	assertError(t, resp, http.StatusGone, "all mistakes corrected")
}

func TestStartSession_Errors(t *testing.T) {
	s := newTestServer(t, hund(t))

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"empty tier", StartSessionRequest{Tier: "B2"}, http.StatusNotFound, "nothing to learn here"},
		{"unknown mode", map[string]string{"mode": "sprint"}, http.StatusBadRequest, "Invalid mode: invalid value"},
		{"unknown field", map[string]string{"level": "A1"}, http.StatusBadRequest, "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/session", tt.body)
			assertError(t, resp, tt.status, tt.message)
		})
	}
}

func TestNoActiveSession(t *testing.T) {
	s := newTestServer(t, hund(t))

	resp := s.do(t, http.MethodGet, "/api/session/prompt", nil)
	assertError(t, resp, http.StatusConflict, "no active session")

	resp = s.do(t, http.MethodPost, "/api/session/answer", AnswerRequest{Translation: "dog"})
	assertError(t, resp, http.StatusConflict, "no active session")

	resp = s.do(t, http.MethodGet, "/api/session", nil)
	assertError(t, resp, http.StatusConflict, "no active session")

	resp = s.do(t, http.MethodPost, "/api/session/suspend", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSubmitAnswer_Validation(t *testing.T) {
	s := newTestServer(t, hund(t))
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/session", StartSessionRequest{Tier: "A1"}).StatusCode)

	resp := s.do(t, http.MethodPost, "/api/session/answer", AnswerRequest{Marker: "der"})
	assertError(t, resp, http.StatusBadRequest, "Invalid translation: required field")
}

func TestGetProgress(t *testing.T) {
	s := newTestServer(t, hund(t), testutils.Word(t, "", "gehen", "to go", "A1"))
	require.NoError(t, s.stores.Fields.Set(context.Background(), "completedCount_A1", "3"))

	resp := s.do(t, http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []ProgressResponse{
		{Tier: "A1", Completed: 3, Total: 2, Ratio: 1},
		{Tier: "A2", Completed: 0, Total: 0, Ratio: 0},
	}, decode[[]ProgressResponse](t, resp))

	resp = s.do(t, http.MethodGet, "/api/progress?tier=B1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []ProgressResponse{{Tier: "B1"}}, decode[[]ProgressResponse](t, resp))

	resp = s.do(t, http.MethodGet, "/api/progress?tier=", nil)
	assertError(t, resp, http.StatusBadRequest, "tier is required")
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t, hund(t))
	require.NoError(t, s.stores.DB.Close())

	resp := s.do(t, http.MethodPost, "/api/session", StartSessionRequest{Tier: "A1"})
	assertError(t, resp, http.StatusServiceUnavailable, "try again")

	resp = s.do(t, http.MethodGet, "/api/tiers/A1/progress", nil)
	assertError(t, resp, http.StatusServiceUnavailable, "try again")
}
