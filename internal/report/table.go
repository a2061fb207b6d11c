package report

import (
	"fmt"
	"io"
	"strconv"

	"jira-wip/internal/stats"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Printer renders results as console tables.
type Printer struct {
	w         io.Writer
	useColors bool
}

// NewPrinter returns a printer writing to w. Colours are applied only when useColors is
// set and fatih/color has not disabled them for a non-terminal output.
func NewPrinter(w io.Writer, useColors bool) *Printer {
	return &Printer{w: w, useColors: useColors && !color.NoColor}
}

func (p *Printer) paint(attrs ...color.Attribute) func(...any) string {
	if !p.useColors {
		return fmt.Sprint
	}
	return color.New(attrs...).SprintFunc()
}

func (p *Printer) render(headers []string, data [][]string) error {
	table := tablewriter.NewWriter(p.w)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// Stages prints the dataset-wide stage table followed by the longest-stage and
// max-task-age headlines.
func (p *Printer) Stages(stages []stats.StageStats, longest, maxAge *stats.StageStats) error {
	var data [][]string
	for _, s := range stages {
		data = append(data, []string{
			s.Status,
			formatFloat(s.TotalHours),
			formatFloat(s.TotalHours / 24),
			strconv.Itoa(s.Count),
			formatFloat(s.MaxHours),
			formatFloat(s.MaxHours / 24),
			formatFloat(s.AverageHours()),
			formatFloat(s.AverageHours() / 24),
		})
	}
	headers := []string{"Status", "Total Hours", "Total Days", "Count", "Max Hours", "Max Days", "Avg Hours", "Avg Days"}
	if err := p.render(headers, data); err != nil {
		return err
	}

	bold := p.paint(color.FgYellow, color.Bold)
	if longest != nil {
		if _, err := fmt.Fprintf(p.w, "Longest stage: %s (%s days on average)\n", bold(longest.Status), formatFloat(longest.AverageHours()/24)); err != nil {
			return err
		}
	}
	if maxAge != nil {
		if _, err := fmt.Fprintf(p.w, "Max task age: %s (%s days in a single stay)\n", bold(maxAge.Status), formatFloat(maxAge.MaxHours/24)); err != nil {
			return err
		}
	}
	return nil
}

// ItemStages prints the stage statistics of every item, one row per item and status.
func (p *Printer) ItemStages(items []stats.ItemStageStats) error {
	var data [][]string
	for _, item := range items {
		for _, s := range item.Stages {
			data = append(data, []string{
				item.ItemKey,
				s.Status,
				formatFloat(s.TotalHours),
				strconv.Itoa(s.Count),
				formatFloat(s.MaxHours),
				formatFloat(s.AverageHours()),
			})
		}
	}
	return p.render([]string{"Issue", "Status", "Total Hours", "Count", "Max Hours", "Avg Hours"}, data)
}

// Violations prints the continuous detector summary; rows with violations are red.
func (p *Printer) Violations(summaries []stats.ViolationSummary) error {
	red := p.paint(color.FgRed, color.Bold)
	green := p.paint(color.FgGreen)

	var data [][]string
	for _, s := range summaries {
		count := strconv.Itoa(s.Violations)
		if s.Violations > 0 {
			count = red(count)
		} else {
			count = green(count)
		}
		data = append(data, []string{
			s.Status,
			strconv.Itoa(s.Limit),
			strconv.Itoa(s.Peak),
			count,
			formatFloat(s.LongestDays),
		})
	}
	return p.render([]string{"Status", "Limit", "Peak", "Violations", "Longest (days)"}, data)
}

// Spans prints every continuous violation span.
func (p *Printer) Spans(spans []stats.ViolationSpan) error {
	var data [][]string
	for _, sp := range spans {
		open := ""
		if sp.OpenEnded {
			open = "yes"
		}
		data = append(data, []string{sp.Status, formatTime(sp.Start), formatTime(sp.End), formatFloat(sp.Days()), open})
	}
	return p.render([]string{"Status", "Start", "End", "Days", "Open"}, data)
}

// Monthly prints violating day counts per month.
func (p *Printer) Monthly(monthly []stats.MonthlyViolation) error {
	if len(monthly) == 0 {
		_, err := fmt.Fprintln(p.w, p.paint(color.FgGreen)("No WIP limit violations found."))
		return err
	}

	var data [][]string
	for _, m := range monthly {
		data = append(data, []string{stats.MonthLabel(m.Month), m.Status, strconv.Itoa(m.ViolatingDays)})
	}
	return p.render([]string{"Month", "Status", "Violating Days"}, data)
}

// Timeline prints the intervals of a single item.
func (p *Printer) Timeline(intervals []stats.StageInterval) error {
	var data [][]string
	for _, iv := range intervals {
		data = append(data, []string{iv.Status, formatTime(iv.Start), formatTime(iv.End), formatFloat(iv.Hours())})
	}
	return p.render([]string{"Status", "Start", "End", "Hours"}, data)
}
