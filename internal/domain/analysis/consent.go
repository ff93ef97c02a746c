package analysis

import (
	"github.com/complyai/comply/internal/domain"
	"github.com/complyai/comply/internal/domain/textnorm"
)

// ConsentAnalyzer checks how a policy obtains, records and lets users
// withdraw consent (RGPD Art. 6-8).
type ConsentAnalyzer struct {
	eval ruleEvaluator
}

func NewConsentAnalyzer(rules []domain.Rule) *ConsentAnalyzer {
	return &ConsentAnalyzer{eval: newRuleEvaluator(domain.CategoryConsent, rules)}
}

func (a *ConsentAnalyzer) Category() domain.Category { return domain.CategoryConsent }

// Analyze scores the policy text. Consent is judged from the policy alone,
// so repository evidence is ignored.
func (a *ConsentAnalyzer) Analyze(doc textnorm.Tokens, _ *domain.RepoEvidence) (domain.CategoryResult, error) {
	return a.eval.evaluate(doc, nil)
}
