package analysis

import "github.com/complyai/comply/internal/domain"

// Aggregate folds the three category results into a report. It is pure: the
// overall score is the half-up rounded mean of the category scores, and
// metadata is left for the caller to fill.
func Aggregate(consent, security, lifecycle domain.CategoryResult) domain.ComplianceReport {
	overall := domain.ComputeOverallScore(consent.Score, security.Score, lifecycle.Score)
	return domain.ComplianceReport{
		Results: domain.CategoryResults{
			Consent:   consent,
			Security:  security,
			Lifecycle: lifecycle,
		},
		OverallScore: overall,
		Status:       domain.StatusFor(overall),
	}
}
