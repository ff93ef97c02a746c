package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/complyai/comply/internal/adapters/outbound/config"
	"github.com/complyai/comply/internal/adapters/outbound/gitrepo"
	"github.com/complyai/comply/internal/adapters/outbound/logging"
	"github.com/complyai/comply/internal/adapters/outbound/rules"
	"github.com/complyai/comply/internal/adapters/outbound/scanner"
	"github.com/complyai/comply/internal/application"
	"github.com/complyai/comply/internal/domain"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	rulesPath string
	envFile   string
	verbose   bool
}

// loadConfig reads the environment and applies flag overrides.
func (o *globalOptions) loadConfig() (domain.ServiceConfig, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return domain.ServiceConfig{}, err
	}
	if o.rulesPath != "" {
		cfg.RulesPath = o.rulesPath
	}
	cfg.Version = version
	return cfg, nil
}

// logger returns a stderr logger when --verbose is set and a silent one
// otherwise, so command output stays clean.
func (o *globalOptions) logger(stderr io.Writer, cfg domain.ServiceConfig) *slog.Logger {
	if !o.verbose {
		return logging.Discard()
	}
	return logging.New(stderr, cfg.LogFormat, "debug")
}

// newAnalysisService loads the configured rule set and wires the standard
// outbound adapters around it. localRepos allows local directories as
// repository references; only local front ends (scan, mcp) set it.
func newAnalysisService(cfg domain.ServiceConfig, logger *slog.Logger, localRepos bool) (*application.AnalysisService, error) {
	rs, err := rules.New().Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	fetcher := gitrepo.New().WithLocalPaths(localRepos)
	return application.NewAnalysisService(rs, fetcher, scanner.New(), cfg.AnalysisTimeout, logger), nil
}
