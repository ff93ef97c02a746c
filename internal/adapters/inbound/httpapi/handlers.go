package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/complyai/comply/internal/domain"
	"github.com/gin-gonic/gin"
)

// FormFieldPolicy and FormFieldRepo name the multipart fields of /analyze.
const (
	FormFieldPolicy = "privacy_policy"
	FormFieldRepo   = "repo_url"
)

// AnalyzeResponse is the success body of POST /analyze.
type AnalyzeResponse struct {
	Status           string                  `json:"status"`
	ReportID         string                  `json:"report_id"`
	Filename         string                  `json:"filename"`
	RepoURL          string                  `json:"repo_url,omitempty"`
	Results          domain.CategoryResults  `json:"results"`
	OverallScore     int                     `json:"overall_score"`
	ComplianceStatus domain.ComplianceStatus `json:"compliance_status"`
	Metadata         domain.ReportMetadata   `json:"metadata"`
}

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RulesResponse is the body of GET /rules.
type RulesResponse struct {
	Version string        `json:"version"`
	Count   int           `json:"count"`
	Rules   []domain.Rule `json:"rules"`
}

type AnalysisHandler struct {
	svc       Analyzer
	extractor domain.DocumentExtractor
	maxUpload int64
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)

	file, err := c.FormFile(FormFieldPolicy)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortTooLarge(c, h.maxUpload)
			return
		}
		abortWithError(c, http.StatusBadRequest, string(domain.KindInput),
			fmt.Sprintf("multipart field %q with the privacy policy is required", FormFieldPolicy))
		return
	}
	if file.Size > h.maxUpload {
		abortTooLarge(c, h.maxUpload)
		return
	}

	f, err := file.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, string(domain.KindInput), "uploaded file could not be read")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, string(domain.KindInput), "uploaded file could not be read")
		return
	}

	// Remote callers may only name https or ssh repositories, never paths on
	// this host.
	repoURL := strings.TrimSpace(c.PostForm(FormFieldRepo))
	if repoURL != "" {
		if err := domain.ValidateRemoteRef(repoURL); err != nil {
			abortWithDomainError(c, err)
			return
		}
	}

	filename := filepath.Base(file.Filename)
	text, err := h.extractor.Extract(filename, data)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	report, err := h.svc.RunAnalysis(c.Request.Context(), domain.AnalysisInput{
		DocumentText: text,
		Filename:     filename,
		RepoRef:      repoURL,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Status:           "success",
		ReportID:         report.ID,
		Filename:         filename,
		RepoURL:          repoURL,
		Results:          report.Results,
		OverallScore:     report.OverallScore,
		ComplianceStatus: report.Status,
		Metadata:         report.Metadata,
	})
}

func (h *AnalysisHandler) ListRules(c *gin.Context) {
	rs := h.svc.Rules()
	c.JSON(http.StatusOK, RulesResponse{
		Version: rs.Version(),
		Count:   rs.Len(),
		Rules:   rs.Rules(),
	})
}

// StatusClientClosedRequest reports a client that disconnected before the
// analysis finished.
const StatusClientClosedRequest = 499

// StatusFor maps a classified error onto an HTTP status code.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInput:
		if errors.Is(err, domain.ErrUnsupportedFile) {
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	case domain.KindAnalysis:
		return http.StatusUnprocessableEntity
	case domain.KindFetch:
		return http.StatusBadGateway
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithDomainError(c *gin.Context, err error) {
	kind := string(domain.KindOf(err))
	if kind == "" {
		kind = "internal"
	}
	abortWithError(c, StatusFor(err), kind, err.Error())
}

func abortTooLarge(c *gin.Context, limit int64) {
	abortWithError(c, http.StatusRequestEntityTooLarge, string(domain.KindInput),
		fmt.Sprintf("privacy policy exceeds the %d MiB upload limit", limit>>20))
}

func abortWithError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Status: "error",
		Error: ErrorDetail{
			Kind:      kind,
			Message:   message,
			RequestID: GetRequestID(c.Request.Context()),
		},
	})
}
