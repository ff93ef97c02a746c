package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/complyai/comply/internal/adapters/outbound/extract"
	"github.com/complyai/comply/internal/adapters/outbound/tui"
	"github.com/complyai/comply/internal/domain"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var (
		repo       string
		jsonOutput bool
		ciMode     bool
		minScore   int
		badge      bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan <policy>",
		Short: "Score a privacy policy for RGPD compliance",
		Long:  "Analyze a privacy policy (.pdf, .txt, .md) and, with --repo, the application's source code, then print a compliance report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if timeout > 0 {
				cfg.AnalysisTimeout = timeout
			}

			svc, err := newAnalysisService(cfg, opts.logger(cmd.ErrOrStderr(), cfg), true)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading policy: %w", err)
			}
			text, err := extract.New().Extract(path, data)
			if err != nil {
				return err
			}

			report, err := svc.RunAnalysis(cmd.Context(), domain.AnalysisInput{
				DocumentText: text,
				Filename:     filepath.Base(path),
				RepoRef:      repo,
			})
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			switch {
			case jsonOutput:
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			case badge:
				renderBadge(cmd, report)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			}

			if ciMode && report.OverallScore < minScore {
				return fmt.Errorf("score %d is below minimum %d", report.OverallScore, minScore)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Git URL or local directory of the application's source code")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if below --min")
	cmd.Flags().IntVar(&minScore, "min", 70, "Minimum overall score for CI mode")
	cmd.Flags().BoolVar(&badge, "badge", false, "Output shields.io badge URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Analysis timeout (overrides COMPLY_ANALYSIS_TIMEOUT)")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderBadge(cmd *cobra.Command, report *domain.ComplianceReport) {
	color := domain.BadgeColor(report.OverallScore)
	url := fmt.Sprintf("https://img.shields.io/badge/rgpd-%d%%2F100-%s", report.OverallScore, color)
	fmt.Fprintln(cmd.OutOrStdout(), url)
}
