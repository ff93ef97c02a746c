package domain_test

import (
	"testing"

	"github.com/complyai/comply/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeOverallScore(t *testing.T) {
	assert.Equal(t, 80, domain.ComputeOverallScore(80, 60, 100))
	assert.Equal(t, 0, domain.ComputeOverallScore(0, 0, 0))
	assert.Equal(t, 100, domain.ComputeOverallScore(100, 100, 100))
	// 241/3 = 80.33, 242/3 = 80.67
	assert.Equal(t, 80, domain.ComputeOverallScore(81, 60, 100))
	assert.Equal(t, 81, domain.ComputeOverallScore(82, 60, 100))
	// half-up on an even split
	assert.Equal(t, 51, domain.ComputeOverallScore(50, 51))
}

func TestComputeOverallScore_Empty(t *testing.T) {
	assert.Equal(t, 0, domain.ComputeOverallScore())
}

func TestComputeOverallScore_OrderIndependent(t *testing.T) {
	perms := [][]int{
		{80, 60, 100}, {80, 100, 60}, {60, 80, 100},
		{60, 100, 80}, {100, 80, 60}, {100, 60, 80},
	}
	for _, p := range perms {
		assert.Equal(t, 80, domain.ComputeOverallScore(p...), "%v", p)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  domain.ComplianceStatus
	}{
		{100, domain.StatusCompliant}, {85, domain.StatusCompliant},
		{84, domain.StatusPartiallyCompliant}, {70, domain.StatusPartiallyCompliant},
		{69, domain.StatusAttentionRequired}, {50, domain.StatusAttentionRequired},
		{49, domain.StatusNonCompliant}, {0, domain.StatusNonCompliant},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.StatusFor(tt.score), "score %d", tt.score)
	}
}

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, "brightgreen", domain.BadgeColor(95))
	assert.Equal(t, "critical", domain.BadgeColor(30))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, domain.SeverityError, domain.LevelFor(30))
	assert.Equal(t, domain.SeverityWarning, domain.LevelFor(10))
	assert.Equal(t, domain.SeverityInfo, domain.LevelFor(5))
}

func TestComplianceReport_Issues(t *testing.T) {
	r := domain.ComplianceReport{
		Results: domain.CategoryResults{
			Consent:   domain.CategoryResult{Issues: []domain.Issue{{RuleID: "c1"}}},
			Lifecycle: domain.CategoryResult{Issues: []domain.Issue{{RuleID: "l1"}, {RuleID: "l2"}}},
		},
	}
	ids := []string{}
	for _, iss := range r.Issues() {
		ids = append(ids, iss.RuleID)
	}
	assert.Equal(t, []string{"c1", "l1", "l2"}, ids)
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, domain.IsValidCategory(domain.CategorySecurity))
	assert.False(t, domain.IsValidCategory("privacy"))
}
