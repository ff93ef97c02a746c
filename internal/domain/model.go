package domain

import (
	"math"
	"time"
)

// Category is one RGPD compliance dimension.
type Category string

const (
	CategoryConsent   Category = "consent"
	CategorySecurity  Category = "security"
	CategoryLifecycle Category = "lifecycle"
)

// ValidCategories enumerates all categories in report order.
var ValidCategories = []Category{CategoryConsent, CategorySecurity, CategoryLifecycle}

func IsValidCategory(c Category) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// LevelFor maps a rule weight onto a display level.
func LevelFor(weight int) string {
	switch {
	case weight >= 25:
		return SeverityError
	case weight >= 10:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Issue is a single failed rule. Severity is always the weight of RuleID.
type Issue struct {
	RuleID      string   `json:"rule_id"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Severity    int      `json:"severity"`
	Level       string   `json:"level"`
	Kind        RuleKind `json:"kind"`
	Article     string   `json:"article,omitempty"`
	Evidence    string   `json:"evidence,omitempty"`
	File        string   `json:"file,omitempty"`
}

// CategoryResult is the output of one category analyzer.
type CategoryResult struct {
	Category        Category `json:"category"`
	Score           int      `json:"score"`
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
	RulesEvaluated  int      `json:"rules_evaluated"`
	RulesSkipped    int      `json:"rules_skipped,omitempty"`
}

// CategoryResults holds one result per category.
type CategoryResults struct {
	Consent   CategoryResult `json:"consent"`
	Security  CategoryResult `json:"security"`
	Lifecycle CategoryResult `json:"lifecycle"`
}

// All returns the results in report order.
func (r CategoryResults) All() []CategoryResult {
	return []CategoryResult{r.Consent, r.Security, r.Lifecycle}
}

// ReportMetadata describes the inputs of an analysis run.
type ReportMetadata struct {
	Filename       string    `json:"filename"`
	RepoURL        string    `json:"repo_url,omitempty"`
	CommitHash     string    `json:"commit_hash,omitempty"`
	FilesInspected int       `json:"files_inspected,omitempty"`
	RuleSetVersion string    `json:"rule_set_version,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
	DurationMS     int64     `json:"duration_ms"`
}

// ComplianceReport is the terminal artifact of one analysis run.
type ComplianceReport struct {
	ID           string           `json:"report_id"`
	Results      CategoryResults  `json:"results"`
	OverallScore int              `json:"overall_score"`
	Status       ComplianceStatus `json:"compliance_status"`
	Metadata     ReportMetadata   `json:"metadata"`
}

// Issues returns every issue of the report in category order.
func (r ComplianceReport) Issues() []Issue {
	var all []Issue
	for _, res := range r.Results.All() {
		all = append(all, res.Issues...)
	}
	return all
}

// ComputeOverallScore returns the arithmetic mean of scores rounded half-up.
// The mean is order independent, so relabeling categories never changes it.
func ComputeOverallScore(scores ...int) int {
	if len(scores) == 0 {
		return 0
	}
	var sum int
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return int(math.Floor(mean + 0.5))
}

// ComplianceStatus is the band an overall score falls into.
type ComplianceStatus string

const (
	StatusCompliant          ComplianceStatus = "compliant"
	StatusPartiallyCompliant ComplianceStatus = "partially_compliant"
	StatusAttentionRequired  ComplianceStatus = "attention_required"
	StatusNonCompliant       ComplianceStatus = "non_compliant"
)

func StatusFor(score int) ComplianceStatus {
	switch {
	case score >= 85:
		return StatusCompliant
	case score >= 70:
		return StatusPartiallyCompliant
	case score >= 50:
		return StatusAttentionRequired
	default:
		return StatusNonCompliant
	}
}

func BadgeColor(score int) string {
	switch StatusFor(score) {
	case StatusCompliant:
		return "brightgreen"
	case StatusPartiallyCompliant:
		return "yellow"
	case StatusAttentionRequired:
		return "orange"
	default:
		return "critical"
	}
}
