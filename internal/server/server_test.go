package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/diagnose"
	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/metrics"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/resolver"
	"github.com/tinkerloft/errdoctor/internal/server"
	"github.com/tinkerloft/errdoctor/internal/validate"
)

// mockService is a test double for DiagnosisService.
type mockService struct {
	result   *diagnose.Result
	err      error
	verdict  validate.Verdict
	profile  model.UserProfile
	history  []model.HistoryEntry
	lastUser string
	lastText string
	limit    int
	update   [3]string
}

func (m *mockService) Diagnose(_ context.Context, userID, text string) (*diagnose.Result, error) {
	m.lastUser, m.lastText = userID, text
	return m.result, m.err
}

func (m *mockService) Validate(text string) validate.Verdict {
	m.lastText = text
	return m.verdict
}

func (m *mockService) Profile(_ context.Context, userID string) model.UserProfile {
	m.lastUser = userID
	return m.profile
}

func (m *mockService) UpdateProfile(_ context.Context, userID, os, pm, editor string) (model.UserProfile, error) {
	m.lastUser = userID
	m.update = [3]string{os, pm, editor}
	return m.profile.Update(os, pm, editor), m.err
}

func (m *mockService) History(_ context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	m.lastUser, m.limit = userID, limit
	return m.history, m.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := server.New(&mockService{}, server.Options{})
	w := do(t, s, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestDiagnose_OK(t *testing.T) {
	ms := &mockService{result: &diagnose.Result{
		RequestID: "r1",
		Diagnostic: model.DiagnosticRecord{
			ErrorType:  "ModuleNotFoundError",
			Solutions:  []string{"conda install numpy"},
			Confidence: 1,
			Source:     model.SourceKnowledgeBase,
		},
	}}
	s := server.New(ms, server.Options{})

	w := do(t, s, http.MethodPost, "/api/v1/diagnose", `{"user_id":"u1","text":"ModuleNotFoundError numpy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", ms.lastUser)
	assert.Equal(t, "ModuleNotFoundError numpy", ms.lastText)

	var body diagnose.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.SourceKnowledgeBase, body.Diagnostic.Source)
	assert.Equal(t, "r1", body.RequestID)
}

func TestDiagnose_Rejected(t *testing.T) {
	ms := &mockService{err: &diagnose.RejectionError{
		Rule:   validate.RuleVaguePhrase,
		Result: model.Invalid("too vague", 0.1),
	}}
	s := server.New(ms, server.Options{})

	w := do(t, s, http.MethodPost, "/api/v1/diagnose", `{"text":"my code doesn't work"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body server.RejectionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, validate.RuleVaguePhrase, body.Rule)
	assert.Equal(t, "too vague", body.Reason)
}

func TestDiagnose_RateLimited(t *testing.T) {
	s := server.New(&mockService{err: resolver.ErrRateLimited}, server.Options{})
	w := do(t, s, http.MethodPost, "/api/v1/diagnose", `{"text":"OSError errno 24"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestDiagnose_Errors(t *testing.T) {
	s := server.New(&mockService{err: errors.New("boom")}, server.Options{})

	w := do(t, s, http.MethodPost, "/api/v1/diagnose", `{"text":"OSError errno 24"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = do(t, s, http.MethodPost, "/api/v1/diagnose", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateEndpoint(t *testing.T) {
	ms := &mockService{verdict: validate.Verdict{ValidationResult: model.Invalid("too short", 0.1), Rule: validate.RuleMinimumLength}}
	s := server.New(ms, server.Options{})

	w := do(t, s, http.MethodPost, "/api/v1/validate", `{"text":"err"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "err", ms.lastText)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["is_valid"])
	assert.Equal(t, "too short", body["reason"])
	assert.Equal(t, validate.RuleMinimumLength, body["rule"])
}

func TestProfiles(t *testing.T) {
	ms := &mockService{profile: model.DefaultProfile}
	s := server.New(ms, server.Options{})

	w := do(t, s, http.MethodGet, "/api/v1/profiles/u7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u7", ms.lastUser)
	assert.Contains(t, w.Body.String(), `"os":"linux"`)

	w = do(t, s, http.MethodPut, "/api/v1/profiles/u7", `{"os":"mac","package_manager":"conda"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [3]string{"mac", "conda", ""}, ms.update)

	var p model.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, model.OSMacOS, p.OS)
	assert.Equal(t, model.PackageManagerConda, p.PackageManager)
	assert.True(t, p.Configured)
}

func TestHistory(t *testing.T) {
	ms := &mockService{history: []model.HistoryEntry{{ID: "h1", ErrorType: "KeyError"}}}
	s := server.New(ms, server.Options{})

	w := do(t, s, http.MethodGet, "/api/v1/users/u1/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, ms.limit)
	assert.Contains(t, w.Body.String(), `"id":"h1"`)

	w = do(t, s, http.MethodGet, "/api/v1/users/u1/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	empty := server.New(&mockService{}, server.Options{})
	w = do(t, empty, http.MethodGet, "/api/v1/users/u2/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"history":[]}`, w.Body.String())
}

func TestTemplates(t *testing.T) {
	base, err := knowledge.Load(nil)
	require.NoError(t, err)
	s := server.New(&mockService{}, server.Options{Templates: base})

	w := do(t, s, http.MethodGet, "/api/v1/templates", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Templates  []model.Template `json:"templates"`
		Categories []string         `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Templates, base.Len())
	assert.NotEmpty(t, body.Categories)

	w = do(t, s, http.MethodGet, "/api/v1/templates?category=does-not-exist", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"templates":[]`)
}

func TestTemplatesDisabled(t *testing.T) {
	s := server.New(&mockService{}, server.Options{})
	w := do(t, s, http.MethodGet, "/api/v1/templates", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.Register(reg)
	require.NoError(t, err)
	m.RecordRateLimited()

	s := server.New(&mockService{}, server.Options{Gatherer: reg})
	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "errdoctor_rate_limited_total 1")
}
