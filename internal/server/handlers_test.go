package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/crashlens/crashlens/api/schemas"
	"github.com/crashlens/crashlens/internal/analyzer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validReportJSON = `{
  "crash_type": "Oops",
  "severity": "high",
  "confidence": 87,
  "root_cause": "NULL pointer dereference in the slab allocator.",
  "detailed_analysis": "The oops shows a fault in __kmalloc.",
  "affected_subsystem": "memory management",
  "probable_trigger": "Race between kfree and a delayed work item.",
  "suggested_fixes": ["Update to 6.8.12"],
  "related_issues": [{"id": "CVE-2024-1086", "title": "nf_tables use-after-free", "url": "#"}],
  "annotated_trace": [{"func": "__kmalloc+0x1a/0x2c0", "note": "allocating the write buffer"}]
}`

// stubCompletionClient replies with canned output and counts invocations.
type stubCompletionClient struct {
	reply string
	err   error
	calls int
}

func (s *stubCompletionClient) Complete(context.Context, schemas.CompletionRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompletionClient) Close() error { return nil }

func newTestRouter(t *testing.T, stub *stubCompletionClient) chi.Router {
	t.Helper()
	a := analyzer.New(stub, zap.NewNop(), analyzer.Options{MaxTokens: 1024})
	h := NewHandlers(zap.NewNop(), a)

	r := chi.NewRouter()
	r.Use(corsMiddleware)
	h.RegisterRoutes(r)
	return r
}

func doAnalyze(t *testing.T, r chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, &stubCompletionClient{reply: validReportJSON})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestAnalyze_Success(t *testing.T) {
	stub := &stubCompletionClient{reply: validReportJSON}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": "kernel BUG at mm/slab.c:123", "kernel_version": "6.8.0"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report schemas.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Oops", report.CrashType)
	assert.Equal(t, 87, report.Confidence)
	require.Len(t, report.AnnotatedTrace, 1)
	assert.Equal(t, 1, stub.calls)
}

func TestAnalyze_FencedReply(t *testing.T) {
	stub := &stubCompletionClient{reply: "```json\n" + validReportJSON + "\n```"}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": "Oops: 0002 [#1] SMP"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var report schemas.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "high", report.Severity)
}

func TestAnalyze_EmptyLogRejected(t *testing.T) {
	stub := &stubCompletionClient{reply: validReportJSON}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": "   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "log_text cannot be empty")
	assert.Equal(t, 0, stub.calls, "provider must not be contacted")
}

func TestAnalyze_InvalidRequestBody(t *testing.T) {
	stub := &stubCompletionClient{reply: validReportJSON}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
	assert.Equal(t, 0, stub.calls)
}

func TestAnalyze_MalformedUpstreamReply(t *testing.T) {
	stub := &stubCompletionClient{reply: "not json at all"}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": "Oops"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestAnalyze_SchemaViolation(t *testing.T) {
	// Valid JSON, but the report is missing almost everything.
	stub := &stubCompletionClient{reply: `{"crash_type": "Oops"}`}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": "Oops"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "schema violation")
}

func TestAnalyze_ProviderFailure(t *testing.T) {
	stub := &stubCompletionClient{err: errors.New("anthropic API error (status 529): overloaded")}
	r := newTestRouter(t, stub)

	rec := doAnalyze(t, r, `{"log_text": "Oops"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "overloaded")
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &stubCompletionClient{reply: validReportJSON})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
