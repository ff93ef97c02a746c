package analysis

import (
	"github.com/complyai/comply/internal/domain"
	"github.com/complyai/comply/internal/domain/textnorm"
)

// LifecycleAnalyzer checks retention, erasure, access and portability
// commitments (RGPD Art. 5(1)(e), 15-20).
type LifecycleAnalyzer struct {
	eval ruleEvaluator
}

func NewLifecycleAnalyzer(rules []domain.Rule) *LifecycleAnalyzer {
	return &LifecycleAnalyzer{eval: newRuleEvaluator(domain.CategoryLifecycle, rules)}
}

func (a *LifecycleAnalyzer) Category() domain.Category { return domain.CategoryLifecycle }

func (a *LifecycleAnalyzer) Analyze(doc textnorm.Tokens, _ *domain.RepoEvidence) (domain.CategoryResult, error) {
	return a.eval.evaluate(doc, nil)
}
