package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/complyai/comply/internal/application"
	"github.com/complyai/comply/internal/domain"
)

const rulesURI = "comply://rules"

// registerResources registers all comply MCP resources on the given server.
func registerResources(s *server.MCPServer, svc *application.AnalysisService) {
	// 1. comply://rules - the full rule set
	s.AddResource(
		mcplib.NewResource(
			rulesURI,
			"RGPD Rules",
			mcplib.WithResourceDescription("Every rule the compliance analyzer evaluates"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRulesResource(svc),
	)

	// 2. comply://rules/{category} - rules of one category
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			rulesURI+"/{category}",
			"RGPD Rules by Category",
			mcplib.WithTemplateDescription("Rules for consent, security or lifecycle"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleCategoryResource(svc),
	)
}

func handleRulesResource(svc *application.AnalysisService) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonContents(rulesURI, rulesDocument(svc.Rules(), svc.Rules().Rules()))
	}
}

func handleCategoryResource(svc *application.AnalysisService) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		category := domain.Category(categoryArg(request))
		if !domain.IsValidCategory(category) {
			return nil, fmt.Errorf("unknown category %q", category)
		}
		return jsonContents(request.Params.URI, rulesDocument(svc.Rules(), svc.Rules().ForCategory(category)))
	}
}

// categoryArg reads the template variable, falling back to the URI suffix
// when the server did not populate arguments.
func categoryArg(request mcplib.ReadResourceRequest) string {
	switch v := request.Params.Arguments["category"].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return strings.TrimPrefix(request.Params.URI, rulesURI+"/")
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
