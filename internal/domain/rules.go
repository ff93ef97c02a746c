package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/complyai/comply/internal/domain/textnorm"
)

// RuleKind says whether a rule's evidence must be present or must be absent.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleForbidden RuleKind = "forbidden"
)

// EvidenceSource says where a rule looks for its evidence.
type EvidenceSource string

const (
	SourcePolicy     EvidenceSource = "policy"
	SourceRepository EvidenceSource = "repository"
)

const maxRuleWeight = 100

// Rule is a single compliance check. Keywords are any-of phrases matched on
// token boundaries; Pattern is a case-insensitive regex over the normalized
// text. Rules are immutable once they are part of a RuleSet.
type Rule struct {
	ID             string         `yaml:"id"                       json:"id"`
	Category       Category       `yaml:"category"                 json:"category"`
	Kind           RuleKind       `yaml:"kind"                     json:"kind"`
	Source         EvidenceSource `yaml:"source,omitempty"         json:"source"`
	Keywords       []string       `yaml:"keywords,omitempty"       json:"keywords,omitempty"`
	Pattern        string         `yaml:"pattern,omitempty"        json:"pattern,omitempty"`
	Weight         int            `yaml:"weight"                   json:"weight"`
	Description    string         `yaml:"description"              json:"description"`
	Recommendation string         `yaml:"recommendation"           json:"recommendation"`
	Article        string         `yaml:"article,omitempty"        json:"article,omitempty"`

	phrases  []textnorm.Tokens
	keywords []string
	re       *regexp.Regexp
}

// Match reports whether tokens carry this rule's evidence and returns the
// keyword or regex match that was found.
func (r Rule) Match(tokens textnorm.Tokens) (string, bool) {
	for i, p := range r.phrases {
		if tokens.ContainsPhrase(p) {
			return r.keywords[i], true
		}
	}
	if r.re != nil {
		if m := r.re.FindString(tokens.Text()); m != "" {
			return m, true
		}
	}
	return "", false
}

// MatchRepository runs Match over every inspected file and returns the first
// file that carries the evidence.
func (r Rule) MatchRepository(ev *RepoEvidence) (evidence, file string, ok bool) {
	if ev == nil {
		return "", "", false
	}
	for _, f := range ev.Files {
		if m, found := r.Match(f.Tokens); found {
			return m, f.Path, true
		}
	}
	return "", "", false
}

// compile validates r and prepares its matchers. Defaults: kind required,
// source policy.
func (r *Rule) compile() error {
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return fmt.Errorf("missing id")
	}
	if !IsValidCategory(r.Category) {
		return fmt.Errorf("rule %q: unknown category %q (valid: consent, security, lifecycle)", r.ID, r.Category)
	}
	if r.Kind == "" {
		r.Kind = RuleRequired
	}
	if r.Kind != RuleRequired && r.Kind != RuleForbidden {
		return fmt.Errorf("rule %q: unknown kind %q (valid: required, forbidden)", r.ID, r.Kind)
	}
	if r.Source == "" {
		r.Source = SourcePolicy
	}
	switch r.Source {
	case SourcePolicy:
	case SourceRepository:
		if r.Category != CategorySecurity {
			return fmt.Errorf("rule %q: repository evidence is only supported for the security category", r.ID)
		}
	default:
		return fmt.Errorf("rule %q: unknown source %q (valid: policy, repository)", r.ID, r.Source)
	}
	if r.Weight <= 0 || r.Weight > maxRuleWeight {
		return fmt.Errorf("rule %q: weight must be between 1 and %d (got %d)", r.ID, maxRuleWeight, r.Weight)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("rule %q: missing description", r.ID)
	}
	if strings.TrimSpace(r.Recommendation) == "" {
		return fmt.Errorf("rule %q: missing recommendation", r.ID)
	}

	r.phrases = nil
	r.keywords = nil
	for _, kw := range r.Keywords {
		p := textnorm.Normalize(kw)
		if p.Len() == 0 {
			return fmt.Errorf("rule %q: keyword %q has no matchable words", r.ID, kw)
		}
		r.phrases = append(r.phrases, p)
		r.keywords = append(r.keywords, kw)
	}
	if r.Pattern != "" {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return fmt.Errorf("rule %q: pattern: %w", r.ID, err)
		}
		r.re = re
	}
	if len(r.phrases) == 0 && r.re == nil {
		return fmt.Errorf("rule %q: needs at least one keyword or a pattern", r.ID)
	}
	return nil
}

// RuleSet is an ordered, read-only collection of rules grouped by category.
// It is safe for concurrent use because nothing mutates it after NewRuleSet.
type RuleSet struct {
	version    string
	rules      []Rule
	byCategory map[Category][]Rule
}

// NewRuleSet validates rules and builds a RuleSet. Any invalid rule, an
// id repeated within a category, or an empty list yields a config error.
func NewRuleSet(version string, rules []Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, Errorf(KindConfig, "building rule set", "rule set is empty")
	}

	rs := &RuleSet{
		version:    version,
		rules:      make([]Rule, 0, len(rules)),
		byCategory: make(map[Category][]Rule, len(ValidCategories)),
	}
	seen := make(map[Category]map[string]bool, len(ValidCategories))

	for i, r := range rules {
		r.Keywords = slices.Clone(r.Keywords)
		if err := r.compile(); err != nil {
			return nil, Errorf(KindConfig, "building rule set", "rules[%d]: %w", i, err)
		}
		ids := seen[r.Category]
		if ids == nil {
			ids = make(map[string]bool)
			seen[r.Category] = ids
		}
		if ids[r.ID] {
			return nil, Errorf(KindConfig, "building rule set", "rules[%d]: duplicate id %q in category %s", i, r.ID, r.Category)
		}
		ids[r.ID] = true

		rs.rules = append(rs.rules, r)
		rs.byCategory[r.Category] = append(rs.byCategory[r.Category], r)
	}
	return rs, nil
}

// Version returns the version label declared by the rule source.
func (rs *RuleSet) Version() string { return rs.version }

// Len returns the total number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns a copy of all rules in load order.
func (rs *RuleSet) Rules() []Rule {
	return cloneRules(rs.rules)
}

// ForCategory returns a copy of the rules of one category in load order.
func (rs *RuleSet) ForCategory(c Category) []Rule {
	return cloneRules(rs.byCategory[c])
}

// cloneRules copies rules and their exported keyword slices. Compiled
// matchers are never mutated and stay shared.
func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keywords = slices.Clone(r.Keywords)
		out[i] = r
	}
	return out
}
