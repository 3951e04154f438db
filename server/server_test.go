package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakamo-io/supportflow/ai/agents"
	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/metrics"
	"github.com/nakamo-io/supportflow/ai/orchestrator"
	"github.com/nakamo-io/supportflow/ai/routing"
	"github.com/nakamo-io/supportflow/internal/profile"
)

type cannedModel struct {
	response string
}

func (m *cannedModel) Chat(context.Context, []llm.Message) (string, *llm.CallStats, error) {
	return m.response, &llm.CallStats{}, nil
}

type noopPlanner struct{}

func (noopPlanner) Run(context.Context, string) (string, error) { return "", nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	model := &cannedModel{response: "a helpful answer"}
	m := metrics.New()

	executor := orchestrator.NewExecutor(
		agents.NewRegistry(
			agents.NewDomainExpert(model),
			agents.NewKnowledgeQA(model, nil, nil),
			agents.NewDirectHandler(model),
		),
		agents.NewDirectHandler(model),
		agents.NewEmailFormatter(model, nil),
		noopPlanner{},
		orchestrator.NewSynthesizer(model, nil),
		m,
		orchestrator.DefaultConfig(),
		nil,
	)
	orch := orchestrator.New(routing.NewLadderPolicy(), executor, m, nil)

	p := &profile.Profile{Addr: "127.0.0.1", Port: 0, Version: "test"}
	return New(p, orch, m, nil)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echoContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func TestServer_Chat(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/chat", `{"message": "tell me a good story"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a helpful answer", resp.Response)
	assert.NotEmpty(t, resp.ThreadID)

	// Same thread id reuses the conversation.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/chat",
		`{"message": "and another one", "thread_id": "`+resp.ThreadID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.threads.len())
}

func TestServer_ChatRejectsEmptyMessage(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/chat", `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_ListAgents(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []agentInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	assert.Len(t, infos, 6)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.Contains(t, names, "qna")
	assert.Contains(t, names, "support_email")
	assert.Contains(t, names, "planning")
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "supportflow_")
}

func TestThreadRegistry_SeparateThreads(t *testing.T) {
	r := newThreadRegistry()

	id1, th1, release1 := r.acquire("")
	release1()
	id2, th2, release2 := r.acquire("")
	release2()

	assert.NotEqual(t, id1, id2)
	assert.NotSame(t, th1, th2)
	assert.Equal(t, 2, r.len())

	id3, th3, release3 := r.acquire(id1)
	release3()
	assert.Equal(t, id1, id3)
	assert.Same(t, th1, th3)
}

func TestThreadRegistry_ThreadState(t *testing.T) {
	r := newThreadRegistry()
	id, thread, release := r.acquire("")
	thread.AddUserTurn("hi")
	release()

	_, same, release2 := r.acquire(id)
	defer release2()
	assert.Equal(t, 1, same.Len())
}
