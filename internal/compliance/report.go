package compliance

import (
	"fmt"
	"strings"
)

const (
	reportHistoryDays = 90
	defaultPeriodDays = 30
)

// Band names the qualitative level of a score.
func Band(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "moderate"
	default:
		return "needs improvement"
	}
}

func trendSentence(t Trend) string {
	switch t {
	case TrendImproving:
		return fmt.Sprintf("The score has improved over the last %d days.", reportHistoryDays)
	case TrendDeclining:
		return fmt.Sprintf("The score has declined over the last %d days.", reportHistoryDays)
	default:
		return fmt.Sprintf("The score has remained stable over the last %d days.", reportHistoryDays)
	}
}

func frameworkLabel(f Framework) string {
	return strings.ToUpper(string(f))
}

// executiveSummary depends only on its arguments.
func executiveSummary(s CheckSummary, trend Trend) string {
	var b strings.Builder
	if s.TotalPolicies == 0 {
		fmt.Fprintf(&b, "No enabled %s policies are configured, so the compliance score is 0/100 (%s). ",
			frameworkLabel(s.Framework), Band(0))
	} else {
		fmt.Fprintf(&b, "%s compliance score is %d/100 (%s). %d of %d policies passed and %d failed. ",
			frameworkLabel(s.Framework), s.Score, Band(s.Score), s.Passed, s.TotalPolicies, s.Failed)
	}
	b.WriteString(trendSentence(trend))
	return b.String()
}

func findings(checks []CheckResult) []Finding {
	out := make([]Finding, 0, len(checks))
	for _, c := range checks {
		severity := "info"
		if c.Status == StatusFailed {
			severity = "high"
		}
		out = append(out, Finding{
			PolicyID:        c.PolicyID,
			PolicyName:      c.PolicyName,
			PolicyType:      c.PolicyType,
			Severity:        severity,
			Status:          c.Status,
			Score:           c.Score,
			Recommendations: c.Recommendations,
		})
	}
	return out
}

func reportTitle(f Framework, p Period) string {
	return fmt.Sprintf("%s Compliance Report %s to %s",
		frameworkLabel(f), p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// dedupe keeps the first occurrence of each string, in order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
