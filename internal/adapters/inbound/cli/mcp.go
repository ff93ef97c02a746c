package cli

import (
	mcpadapter "github.com/complyai/comply/internal/adapters/inbound/mcp"
	"github.com/complyai/comply/internal/adapters/outbound/extract"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the comply MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start comply MCP server (stdio)",
		Long:  "Start the comply MCP server using stdio transport. This lets AI assistants analyze privacy policies and browse the RGPD rules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			svc, err := newAnalysisService(cfg, opts.logger(cmd.ErrOrStderr(), cfg), true)
			if err != nil {
				return err
			}
			s := mcpadapter.NewComplyMCPServer(svc, extract.New(), version)
			return server.ServeStdio(s)
		},
	}
	return cmd
}
