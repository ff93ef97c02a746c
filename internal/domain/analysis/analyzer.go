// Package analysis holds the three RGPD category analyzers and the
// aggregator that folds their results into a ComplianceReport.
package analysis

import (
	"github.com/complyai/comply/internal/domain"
	"github.com/complyai/comply/internal/domain/textnorm"
)

const maxScore = 100

// Analyzer scores one category. Implementations hold their rules from
// construction and are safe for concurrent use.
type Analyzer interface {
	Category() domain.Category
	Analyze(doc textnorm.Tokens, repo *domain.RepoEvidence) (domain.CategoryResult, error)
}

// NewAnalyzers builds the consent, security and lifecycle analyzers from rs,
// in report order.
func NewAnalyzers(rs *domain.RuleSet) []Analyzer {
	return []Analyzer{
		NewConsentAnalyzer(rs.ForCategory(domain.CategoryConsent)),
		NewSecurityAnalyzer(rs.ForCategory(domain.CategorySecurity)),
		NewLifecycleAnalyzer(rs.ForCategory(domain.CategoryLifecycle)),
	}
}

// ruleEvaluator is the shared scoring core: required rules fail on absence,
// forbidden rules fail on presence, and each failure costs its weight.
type ruleEvaluator struct {
	category domain.Category
	rules    []domain.Rule
}

func newRuleEvaluator(category domain.Category, rules []domain.Rule) ruleEvaluator {
	return ruleEvaluator{category: category, rules: append([]domain.Rule(nil), rules...)}
}

func (e ruleEvaluator) evaluate(doc textnorm.Tokens, repo *domain.RepoEvidence) (domain.CategoryResult, error) {
	if len(e.rules) == 0 {
		return domain.CategoryResult{}, domain.Errorf(domain.KindAnalysis,
			"analyzing "+string(e.category), "no rules configured for category %s", e.category)
	}

	result := domain.CategoryResult{
		Category:        e.category,
		Issues:          []domain.Issue{},
		Recommendations: []string{},
	}
	seenRec := make(map[string]bool)
	penalty := 0

	for _, r := range e.rules {
		var (
			evidence, file string
			found          bool
		)
		switch r.Source {
		case domain.SourceRepository:
			if repo == nil {
				result.RulesSkipped++
				continue
			}
			evidence, file, found = r.MatchRepository(repo)
		default:
			evidence, found = r.Match(doc)
		}
		result.RulesEvaluated++

		failed := (r.Kind == domain.RuleRequired && !found) || (r.Kind == domain.RuleForbidden && found)
		if !failed {
			continue
		}

		iss := domain.Issue{
			RuleID:      r.ID,
			Category:    e.category,
			Description: r.Description,
			Severity:    r.Weight,
			Level:       domain.LevelFor(r.Weight),
			Kind:        r.Kind,
			Article:     r.Article,
		}
		if r.Kind == domain.RuleForbidden {
			iss.Evidence = evidence
			iss.File = file
		}
		result.Issues = append(result.Issues, iss)
		penalty += r.Weight

		if !seenRec[r.Recommendation] {
			seenRec[r.Recommendation] = true
			result.Recommendations = append(result.Recommendations, r.Recommendation)
		}
	}

	result.Score = max(0, maxScore-penalty)
	return result, nil
}
