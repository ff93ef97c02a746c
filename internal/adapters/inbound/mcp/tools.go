package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/complyai/comply/internal/application"
	"github.com/complyai/comply/internal/domain"
)

// registerTools registers all comply MCP tools on the given server.
func registerTools(s *server.MCPServer, svc *application.AnalysisService, extractor domain.DocumentExtractor) {
	// 1. comply_analyze
	s.AddTool(
		mcplib.NewTool("comply_analyze",
			mcplib.WithDescription("Analyze a privacy policy (.pdf, .txt, .md) for RGPD compliance and return the compliance report as JSON"),
			mcplib.WithString("document",
				mcplib.Required(),
				mcplib.Description("Path to the privacy policy file"),
			),
			mcplib.WithString("repo",
				mcplib.Description("Optional git URL or local directory of the application's source code"),
			),
		),
		handleAnalyze(svc, extractor),
	)

	// 2. comply_list_rules
	s.AddTool(
		mcplib.NewTool("comply_list_rules",
			mcplib.WithDescription("List the RGPD rules the analyzer evaluates, optionally for one category"),
			mcplib.WithString("category",
				mcplib.Description("consent, security or lifecycle (default: all)"),
			),
		),
		handleListRules(svc),
	)
}

func handleAnalyze(svc *application.AnalysisService, extractor domain.DocumentExtractor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("document")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return errorResult(fmt.Sprintf("reading document: %v", err)), nil
		}
		text, err := extractor.Extract(path, data)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		report, err := svc.RunAnalysis(ctx, domain.AnalysisInput{
			DocumentText: text,
			Filename:     filepath.Base(path),
			RepoRef:      request.GetString("repo", ""),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleListRules(svc *application.AnalysisService) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		category := domain.Category(request.GetString("category", ""))
		if category == "" {
			return jsonResult(rulesDocument(svc.Rules(), svc.Rules().Rules()))
		}
		if !domain.IsValidCategory(category) {
			return errorResult(fmt.Sprintf("unknown category %q (valid: consent, security, lifecycle)", category)), nil
		}
		return jsonResult(rulesDocument(svc.Rules(), svc.Rules().ForCategory(category)))
	}
}

type rulesDoc struct {
	Version string        `json:"version"`
	Count   int           `json:"count"`
	Rules   []domain.Rule `json:"rules"`
}

func rulesDocument(rs *domain.RuleSet, rules []domain.Rule) rulesDoc {
	return rulesDoc{Version: rs.Version(), Count: len(rules), Rules: rules}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
