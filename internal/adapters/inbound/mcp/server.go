package mcp

import (
	"github.com/complyai/comply/internal/application"
	"github.com/complyai/comply/internal/domain"
	"github.com/mark3labs/mcp-go/server"
)

// NewComplyMCPServer creates an MCP server exposing the analysis service as
// tools and the loaded rule set as resources.
func NewComplyMCPServer(svc *application.AnalysisService, extractor domain.DocumentExtractor, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"comply",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, svc, extractor)
	registerResources(s, svc)

	return s
}
