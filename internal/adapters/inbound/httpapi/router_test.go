package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/complyai/comply/internal/adapters/inbound/httpapi"
	"github.com/complyai/comply/internal/adapters/outbound/extract"
	"github.com/complyai/comply/internal/adapters/outbound/gitrepo"
	"github.com/complyai/comply/internal/adapters/outbound/logging"
	"github.com/complyai/comply/internal/adapters/outbound/rules"
	"github.com/complyai/comply/internal/adapters/outbound/scanner"
	"github.com/complyai/comply/internal/application"
	"github.com/complyai/comply/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completePolicy = "../../../../testdata/policies/complete.txt"

func testConfig() domain.ServiceConfig {
	cfg := domain.DefaultServiceConfig()
	cfg.Version = "1.2.3"
	cfg.RateLimit = 1000
	cfg.RateBurst = 1000
	return cfg
}

func newRouter(t *testing.T, svc httpapi.Analyzer, cfg domain.ServiceConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if svc == nil {
		rs, err := rules.LoadDefault()
		require.NoError(t, err)
		svc = application.NewAnalysisService(rs, gitrepo.New(), scanner.New(), 5*time.Second, logging.Discard())
	}
	return httpapi.NewRouter(svc, extract.New(), cfg, logging.Discard())
}

// multipartRequest builds POST /analyze. An empty filename omits the file.
func multipartRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := w.CreateFormFile(httpapi.FormFieldPolicy, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httpapi.ErrorBody {
	t.Helper()
	var body httpapi.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	return body
}

func TestHealthCheck(t *testing.T) {
	r := newRouter(t, nil, testConfig())

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp httpapi.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "comply", resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	r := newRouter(t, nil, testConfig())
	rr := serve(r, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRequestID(t *testing.T) {
	r := newRouter(t, nil, testConfig())

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rr.Header().Get(httpapi.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpapi.HeaderRequestID, "abc-123")
	rr = serve(r, req)
	assert.Equal(t, "abc-123", rr.Header().Get(httpapi.HeaderRequestID))

	req = multipartRequest(t, "", nil, map[string]string{"other": "x"})
	req.Header.Set(httpapi.HeaderRequestID, "rid-7")
	rr = serve(r, req)
	assert.Equal(t, "rid-7", decodeError(t, rr).Error.RequestID)

	assert.Empty(t, httpapi.GetRequestID(context.Background()))
}

func TestAnalyze_Success(t *testing.T) {
	policy, err := os.ReadFile(completePolicy)
	require.NoError(t, err)
	r := newRouter(t, nil, testConfig())

	rr := serve(r, multipartRequest(t, "complete.txt", policy, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp httpapi.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.ReportID)
	assert.Equal(t, "complete.txt", resp.Filename)
	assert.Equal(t, 100, resp.OverallScore)
	assert.Equal(t, domain.StatusCompliant, resp.ComplianceStatus)
	assert.Equal(t, 100, resp.Results.Consent.Score)
}

func TestAnalyze_ResponseShape(t *testing.T) {
	r := newRouter(t, nil, testConfig())
	rr := serve(r, multipartRequest(t, "weak.md", []byte("We may sell your data."), nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, key := range []string{"status", "report_id", "filename", "results", "overall_score", "compliance_status", "metadata"} {
		assert.Contains(t, raw, key)
	}
	results := raw["results"].(map[string]any)
	for _, c := range []string{"consent", "security", "lifecycle"} {
		cat := results[c].(map[string]any)
		assert.Contains(t, cat, "score")
		assert.Contains(t, cat, "issues")
		assert.Contains(t, cat, "recommendations")
	}
}

func TestAnalyze_RejectsLocalRepository(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "private"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "private", "payroll_keys.py"), []byte("hashlib.md5(x)\n"), 0644))

	policy, err := os.ReadFile(completePolicy)
	require.NoError(t, err)
	r := newRouter(t, nil, testConfig())

	for _, ref := range []string{root, "file://" + root, "http://example.com/org/app.git"} {
		t.Run(ref, func(t *testing.T) {
			rr := serve(r, multipartRequest(t, "complete.txt", policy, map[string]string{httpapi.FormFieldRepo: ref}))
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Equal(t, "input", decodeError(t, rr).Error.Kind)
			assert.NotContains(t, rr.Body.String(), "payroll_keys")
			assert.NotContains(t, rr.Body.String(), "md5")
		})
	}
}

// recordingAnalyzer keeps the last input and returns an empty report.
type recordingAnalyzer struct {
	got domain.AnalysisInput
}

func (a *recordingAnalyzer) RunAnalysis(_ context.Context, input domain.AnalysisInput) (*domain.ComplianceReport, error) {
	a.got = input
	return &domain.ComplianceReport{ID: "r1"}, nil
}

func (a *recordingAnalyzer) Rules() *domain.RuleSet { return nil }

func TestAnalyze_RemoteRepositoryPassedThrough(t *testing.T) {
	rec := &recordingAnalyzer{}
	r := newRouter(t, rec, testConfig())

	const repo = "https://github.com/example/app.git"
	rr := serve(r, multipartRequest(t, "p.txt", []byte("explicit consent"), map[string]string{httpapi.FormFieldRepo: " " + repo}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, repo, rec.got.RepoRef)
	var resp httpapi.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, repo, resp.RepoURL)
	assert.Equal(t, "r1", resp.ReportID)
}

func TestAnalyze_InputErrors(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 64
	r := newRouter(t, nil, cfg)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
	}{
		{"missing file", multipartRequest(t, "", nil, map[string]string{"other": "x"}), http.StatusBadRequest},
		{"unsupported type", multipartRequest(t, "policy.docx", []byte("x"), nil), http.StatusUnsupportedMediaType},
		{"invalid utf8", multipartRequest(t, "policy.txt", []byte{0xff, 0xfe}, nil), http.StatusBadRequest},
		{"too large", multipartRequest(t, "policy.txt", []byte(strings.Repeat("a", 65)), nil), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(r, tt.req)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			body := decodeError(t, rr)
			assert.Equal(t, "input", body.Error.Kind)
			assert.NotEmpty(t, body.Error.Message)
			assert.Equal(t, rr.Header().Get(httpapi.HeaderRequestID), body.Error.RequestID)
		})
	}
}

type stubAnalyzer struct {
	err error
}

func (s stubAnalyzer) RunAnalysis(context.Context, domain.AnalysisInput) (*domain.ComplianceReport, error) {
	return nil, s.err
}

func (s stubAnalyzer) Rules() *domain.RuleSet { return nil }

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantKind string
	}{
		{domain.Errorf(domain.KindAnalysis, "analyzing security", "no rules"), http.StatusUnprocessableEntity, "analysis"},
		{domain.Errorf(domain.KindFetch, "cloning", "not found"), http.StatusBadGateway, "fetch"},
		{domain.Errorf(domain.KindTimeout, "running analysis", "exceeded 30s"), http.StatusGatewayTimeout, "timeout"},
		{domain.Errorf(domain.KindConfig, "loading", "broken"), http.StatusInternalServerError, "config"},
		{domain.WrapError(domain.KindCanceled, "running analysis", context.Canceled), httpapi.StatusClientClosedRequest, "canceled"},
		{errors.New("unexpected"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			r := newRouter(t, stubAnalyzer{err: tt.err}, testConfig())
			rr := serve(r, multipartRequest(t, "p.txt", []byte("text"), nil))
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, rr).Error.Kind)
		})
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	r := newRouter(t, nil, cfg)

	first := serve(r, multipartRequest(t, "p.txt", []byte("explicit consent"), nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(r, multipartRequest(t, "p.txt", []byte("explicit consent"), nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate_limit", decodeError(t, second).Error.Kind)

	health := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code, "only /analyze is rate limited")
}

func TestListRules(t *testing.T) {
	r := newRouter(t, nil, testConfig())
	rr := serve(r, httptest.NewRequest(http.MethodGet, "/rules", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp httpapi.RulesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Version)
	assert.Equal(t, len(resp.Rules), resp.Count)
	assert.Positive(t, resp.Count)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}
	r := newRouter(t, nil, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := serve(r, req)

	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
}
