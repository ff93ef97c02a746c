package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/complyai/comply/internal/domain"
	"github.com/complyai/comply/internal/domain/analysis"
	"github.com/complyai/comply/internal/domain/textnorm"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalysisService orchestrates one compliance run:
// normalize → fetch + inspect repository → analyze categories → aggregate.
type AnalysisService struct {
	rules     *domain.RuleSet
	analyzers []analysis.Analyzer
	fetcher   domain.RepositoryFetcher
	inspector domain.RepositoryInspector
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAnalysisService wires a service around a loaded rule set. fetcher and
// inspector may be nil, in which case requests naming a repository fail with
// a fetch error. A non-positive timeout disables the deadline.
func NewAnalysisService(
	rules *domain.RuleSet,
	fetcher domain.RepositoryFetcher,
	inspector domain.RepositoryInspector,
	timeout time.Duration,
	logger *slog.Logger,
) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		rules:     rules,
		analyzers: analysis.NewAnalyzers(rules),
		fetcher:   fetcher,
		inspector: inspector,
		timeout:   timeout,
		logger:    logger,
	}
}

// Rules returns the rule set every run is evaluated against.
func (s *AnalysisService) Rules() *domain.RuleSet { return s.rules }

// RunAnalysis scores input against the rule set. On timeout it returns a
// timeout error and no report.
func (s *AnalysisService) RunAnalysis(ctx context.Context, input domain.AnalysisInput) (*domain.ComplianceReport, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	log := s.logger.With("report_id", id, "filename", input.Filename)
	log.Info("analysis started", "repo", input.RepoRef)

	report, err := s.run(ctx, input)
	if err != nil {
		err = s.classify(ctx, err)
		log.Warn("analysis failed",
			"kind", string(domain.KindOf(err)),
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	report.ID = id
	report.Metadata.Filename = input.Filename
	report.Metadata.RuleSetVersion = s.rules.Version()
	report.Metadata.GeneratedAt = time.Now().UTC()
	report.Metadata.DurationMS = time.Since(start).Milliseconds()

	log.Info("analysis complete",
		"overall_score", report.OverallScore,
		"status", string(report.Status),
		"issues", len(report.Issues()),
		"duration_ms", report.Metadata.DurationMS,
	)
	return report, nil
}

func (s *AnalysisService) run(ctx context.Context, input domain.AnalysisInput) (*domain.ComplianceReport, error) {
	// 1. Normalize the document
	doc := textnorm.Normalize(input.DocumentText)

	// 2. Materialize and inspect the repository, if any
	var (
		repo *domain.RepoEvidence
		meta domain.ReportMetadata
	)
	if input.RepoRef != "" {
		if s.fetcher == nil || s.inspector == nil {
			return nil, domain.Errorf(domain.KindFetch, "fetching repository", "repository analysis is not configured")
		}
		checkout, err := s.fetcher.Fetch(ctx, input.RepoRef)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", input.RepoRef, err)
		}
		defer func() {
			if err := checkout.Release(); err != nil {
				s.logger.Warn("releasing checkout failed", "path", checkout.Path, "error", err.Error())
			}
		}()

		repo, err = s.inspector.Inspect(ctx, checkout.Path)
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", input.RepoRef, err)
		}
		meta.RepoURL = input.RepoRef
		meta.CommitHash = checkout.CommitHash
		meta.FilesInspected = len(repo.Files)
	}

	// 3. Run the category analyzers concurrently
	results, err := s.analyze(ctx, doc, repo)
	if err != nil {
		return nil, err
	}

	// 4. Aggregate
	byCategory := make(map[domain.Category]domain.CategoryResult, len(results))
	for _, r := range results {
		byCategory[r.Category] = r
	}
	report := analysis.Aggregate(
		byCategory[domain.CategoryConsent],
		byCategory[domain.CategorySecurity],
		byCategory[domain.CategoryLifecycle],
	)
	report.Metadata = meta
	return &report, nil
}

func (s *AnalysisService) analyze(ctx context.Context, doc textnorm.Tokens, repo *domain.RepoEvidence) ([]domain.CategoryResult, error) {
	results := make([]domain.CategoryResult, len(s.analyzers))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range s.analyzers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := a.Analyze(doc, repo)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		// A result that lands after the deadline is discarded.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// classify turns deadline errors into timeout errors and caller
// cancellation into canceled errors. Classified errors from the pipeline
// pass through unchanged.
func (s *AnalysisService) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.Errorf(domain.KindTimeout, "running analysis", "exceeded %s", s.timeout)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return domain.WrapError(domain.KindCanceled, "running analysis", context.Canceled)
	}
	return err
}
