package analysis

import (
	"github.com/complyai/comply/internal/domain"
	"github.com/complyai/comply/internal/domain/textnorm"
)

// SecurityAnalyzer checks security commitments in the policy (RGPD Art. 32-34)
// and, when a repository was inspected, code markers such as encryption
// primitives or weak hashes.
type SecurityAnalyzer struct {
	eval ruleEvaluator
}

func NewSecurityAnalyzer(rules []domain.Rule) *SecurityAnalyzer {
	return &SecurityAnalyzer{eval: newRuleEvaluator(domain.CategorySecurity, rules)}
}

func (a *SecurityAnalyzer) Category() domain.Category { return domain.CategorySecurity }

// Analyze scores the policy text and, if repo is non-nil, the repository
// rules. A nil repo skips repository rules instead of failing them.
func (a *SecurityAnalyzer) Analyze(doc textnorm.Tokens, repo *domain.RepoEvidence) (domain.CategoryResult, error) {
	return a.eval.evaluate(doc, repo)
}
