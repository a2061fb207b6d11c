package visuals

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"jira-wip/internal/stats"
)

// GenerateStageDurationChart creates a Mermaid bar chart of the average days spent per stage.
func GenerateStageDurationChart(stages []stats.StageStats) string {
	if len(stages) == 0 {
		return ""
	}

	var labels []string
	var values []string

	maxVal := 0.0
	for _, s := range stages {
		avgDays := s.AverageHours() / 24
		labels = append(labels, fmt.Sprintf("%q", s.Status))
		values = append(values, fmt.Sprintf("%.1f", avgDays))
		maxVal = math.Max(maxVal, avgDays)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Average Time per Stage\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.2)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateMonthlyViolationChart creates a Mermaid bar chart of violating days per month,
// with one bar series per monitored status in the order of statuses.
func GenerateMonthlyViolationChart(monthly []stats.MonthlyViolation, statuses []string) string {
	if len(monthly) == 0 || len(statuses) == 0 {
		return ""
	}

	var months []string
	counts := make(map[string]map[string]int)
	for _, m := range monthly {
		if _, ok := counts[m.Month]; !ok {
			counts[m.Month] = make(map[string]int)
			months = append(months, m.Month)
		}
		counts[m.Month][m.Status] = m.ViolatingDays
	}
	slices.Sort(months)

	var labels []string
	for _, month := range months {
		labels = append(labels, fmt.Sprintf("%q", stats.MonthLabel(month)))
	}

	maxVal := 0
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"WIP Violating Days per Month (%s)\"\n", strings.Join(statuses, ", ")))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))

	var series []string
	for _, status := range statuses {
		var values []string
		for _, month := range months {
			n := counts[month][status]
			values = append(values, fmt.Sprintf("%d", n))
			maxVal = max(maxVal, n)
		}
		series = append(series, fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	}

	// Days per month never exceed 31
	sb.WriteString(fmt.Sprintf("    y-axis \"Days\" 0 --> %d\n", min(31, maxVal+int(math.Max(1, float64(maxVal)*0.2)))))
	for _, s := range series {
		sb.WriteString(s)
	}
	sb.WriteString("```")
	return sb.String()
}
