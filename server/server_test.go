package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shopguard/agent"
	"github.com/hupe1980/shopguard/catalog"
	"github.com/hupe1980/shopguard/guard"
	"github.com/hupe1980/shopguard/model"
	"github.com/hupe1980/shopguard/pipeline"
	"github.com/hupe1980/shopguard/session"
	"github.com/hupe1980/shopguard/tool"
)

type yesJudge struct{}

func (yesJudge) Judge(context.Context, string, string) (bool, string, error) {
	return true, "", nil
}

func newTestServer(t *testing.T, m *model.MockModel, optFns ...func(o *Options)) *Server {
	t.Helper()
	store := catalog.NewStore(catalog.SeedProducts()...)
	registry := tool.NewRegistry(tool.NewLookupTool(store), tool.NewBasketTool(store, 0))

	p := pipeline.New(session.NewInMemoryStore(), agent.New(m, registry), func(o *pipeline.Options) {
		o.PromptGuard = guard.NewDefaultPromptGuard()
		o.ResponseGuard = guard.NewDefaultResponseGuard(guard.StrictnessReject)
		o.RelevanceGuard = guard.NewRelevanceGuard(yesJudge{})
		o.Integrity = guard.NewIntegrityChecker(store)
	})
	return New(p, optFns...)
}

func postChat(srv *Server, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_ChatSuccess(t *testing.T) {
	m := model.NewMockModel(&model.Decision{Text: "The Smart Speaker costs $79.00."})
	srv := newTestServer(t, m)

	rec := postChat(srv, `{"message":"how much is the speaker?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The Smart Speaker costs $79.00.", resp.Reply)
	assert.Equal(t, "agent", resp.Source)
	assert.NotEmpty(t, resp.SessionID)
	assert.Nil(t, resp.GuardrailsApplied, "clean turn omits guardrails")
}

func TestServer_ChatReusesSessionID(t *testing.T) {
	m := model.NewMockModel(
		&model.Decision{Text: "Hello!"},
		&model.Decision{Text: "Still here."})
	srv := newTestServer(t, m)

	rec := postChat(srv, `{"message":"hi"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var first ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = postChat(srv, `{"session_id":"`+first.SessionID+`","message":"still there?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestServer_ChatGuardrailsReported(t *testing.T) {
	m := model.NewMockModel(&model.Decision{Text: "The Smart Speaker costs $59."})
	srv := newTestServer(t, m)

	rec := postChat(srv, `{"message":"price of the speaker?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The Smart Speaker costs $79.00.", resp.Reply)
	assert.NotNil(t, resp.GuardrailsApplied)
}

func TestServer_ChatEmptyMessage(t *testing.T) {
	srv := newTestServer(t, model.NewMockModel())

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		rec := postChat(srv, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestServer_ChatInvalidJSON(t *testing.T) {
	srv := newTestServer(t, model.NewMockModel())

	rec := postChat(srv, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ChatModelUnavailable(t *testing.T) {
	m := model.NewMockModel()
	m.FailWith(errors.New("connection refused"))
	srv := newTestServer(t, m)

	rec := postChat(srv, `{"message":"hello"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestServer_BearerAuth(t *testing.T) {
	m := model.NewMockModel(&model.Decision{Text: "Hello!"})
	srv := newTestServer(t, m, func(o *Options) { o.AuthToken = "sesame" })

	// Missing token
	rec := postChat(srv, `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token
	rec = postChat(srv, `{"message":"hi"}`, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token
	rec = postChat(srv, `{"message":"hi"}`, map[string]string{"Authorization": "Bearer sesame"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_HealthzStaysOpen(t *testing.T) {
	srv := newTestServer(t, model.NewMockModel(), func(o *Options) { o.AuthToken = "sesame" })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, model.NewMockModel())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
