package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/complyai/comply/internal/domain"
)

// ── palette ──
var (
	accent  = lipgloss.Color("#2563EB") // EU blue
	gold    = lipgloss.Color("#FACC15")
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	lime    = lipgloss.Color("#A3E635")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	orange  = lipgloss.Color("#FB923C")
	info    = lipgloss.Color("#8B949E")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(gold).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	statusColors = map[domain.ComplianceStatus]lipgloss.Color{
		domain.StatusCompliant:          success,
		domain.StatusPartiallyCompliant: lime,
		domain.StatusAttentionRequired:  orange,
		domain.StatusNonCompliant:       danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	catNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport formats a compliance report for terminal output.
func RenderReport(report *domain.ComplianceReport) string {
	var b strings.Builder

	// ── Header ──
	color := statusColor(report.Status)
	title := headerStyle.Render("comply")
	subtitle := dimStyle.Render("RGPD Compliance Report")
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(fmt.Sprintf("%d / 100", report.OverallScore))
	statusStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(statusLabel(report.Status))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + statusStyled))
	b.WriteString("\n\n")

	if meta := metadataLine(report.Metadata); meta != "" {
		b.WriteString("  " + dimStyle.Render(meta) + "\n\n")
	}

	// ── Categories ──
	for _, res := range report.Results.All() {
		renderCategory(&b, res)
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Issues ──
	issues := sortedIssues(report.Issues())
	if len(issues) > 0 {
		errorCount, warnCount, infoCount := countLevels(issues)
		b.WriteString("  ")
		b.WriteString(titleStyle.Render("Issues"))
		b.WriteString("  ")
		if errorCount > 0 {
			b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errorCount)))
			b.WriteString("  ")
		}
		if warnCount > 0 {
			b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warnCount)))
			b.WriteString("  ")
		}
		if infoCount > 0 {
			b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infoCount)))
		}
		b.WriteString("\n\n")

		for _, issue := range issues {
			renderIssue(&b, issue)
		}
	} else {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
	}

	// ── Recommendations ──
	if recs := recommendations(report); len(recs) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Recommendations") + "\n\n")
		for i, r := range recs {
			fmt.Fprintf(&b, "    %s %s\n", dimStyle.Render(fmt.Sprintf("%d.", i+1)), r)
		}
	}

	b.WriteString("\n")
	return b.String()
}

func renderCategory(b *strings.Builder, res domain.CategoryResult) {
	color := scoreColor(res.Score)
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%3d", res.Score))
	bar := coloredBar(res.Score, 20)
	name := catNameStyle.Render(padRight(string(res.Category), 12))

	detail := fmt.Sprintf("%d rules", res.RulesEvaluated)
	if res.RulesSkipped > 0 {
		detail += fmt.Sprintf(", %d skipped", res.RulesSkipped)
	}
	fmt.Fprintf(b, "  %s %s  %s  %s\n", name, bar, scoreText, faintStyle.Render(detail))
}

func renderIssue(b *strings.Builder, issue domain.Issue) {
	tag := levelTag(issue.Level)
	ref := string(issue.Category) + "/" + issue.RuleID
	if issue.Article != "" {
		ref += "  " + issue.Article
	}
	fmt.Fprintf(b, "    %s %s\n", tag, fileStyle.Render(ref))
	fmt.Fprintf(b, "          %s\n", dimStyle.Render(issue.Description))

	switch {
	case issue.File != "" && issue.Evidence != "":
		fmt.Fprintf(b, "          %s\n", faintStyle.Render(fmt.Sprintf("found %q in %s", issue.Evidence, issue.File)))
	case issue.Evidence != "":
		fmt.Fprintf(b, "          %s\n", faintStyle.Render(fmt.Sprintf("found %q", issue.Evidence)))
	}
}

func levelTag(level string) string {
	switch level {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func countLevels(issues []domain.Issue) (errors, warnings, infos int) {
	for _, i := range issues {
		switch i.Level {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

// sortedIssues orders by severity weight, heaviest first. The sort is stable
// so equal weights keep category order.
func sortedIssues(issues []domain.Issue) []domain.Issue {
	out := append([]domain.Issue(nil), issues...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

func recommendations(report *domain.ComplianceReport) []string {
	var out []string
	seen := make(map[string]bool)
	for _, res := range report.Results.All() {
		for _, r := range res.Recommendations {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

func metadataLine(m domain.ReportMetadata) string {
	var parts []string
	if m.Filename != "" {
		parts = append(parts, m.Filename)
	}
	if m.RepoURL != "" {
		repo := m.RepoURL
		if len(m.CommitHash) >= 7 {
			repo += "@" + m.CommitHash[:7]
		}
		parts = append(parts, fmt.Sprintf("%s (%d files)", repo, m.FilesInspected))
	}
	if m.RuleSetVersion != "" {
		parts = append(parts, "rules "+m.RuleSetVersion)
	}
	return strings.Join(parts, " · ")
}

func statusLabel(s domain.ComplianceStatus) string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

func statusColor(s domain.ComplianceStatus) lipgloss.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return fg
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	return statusColor(domain.StatusFor(score))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderRules lists a rule set grouped by category.
func RenderRules(rs *domain.RuleSet) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Rule set "+rs.Version()) + "  " +
		dimStyle.Render(fmt.Sprintf("%d rules", rs.Len())) + "\n")
	b.WriteString("  " + separatorLine + "\n")

	for _, c := range domain.ValidCategories {
		rules := rs.ForCategory(c)
		b.WriteString("\n  " + catNameStyle.Render(string(c)) + "\n")
		if len(rules) == 0 {
			b.WriteString("    " + dimStyle.Render("no rules") + "\n")
			continue
		}
		for _, r := range rules {
			kind := passStyle.Render("must")
			if r.Kind == domain.RuleForbidden {
				kind = errorTagStyle.Render("never")
			}
			src := ""
			if r.Source == domain.SourceRepository {
				src = " " + infoTagStyle.Render("[repo]")
			}
			fmt.Fprintf(&b, "    %s %s %s%s\n",
				padRight(kind, 5),
				padRight(r.ID, 32),
				dimStyle.Render(fmt.Sprintf("w%-3d %s", r.Weight, r.Article)),
				src,
			)
		}
	}
	b.WriteString("\n")
	return b.String()
}
