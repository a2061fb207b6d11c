package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"jira-wip/internal/stats"
)

// Column headers of the CSV outputs.
var (
	IntervalHeader   = []string{"issueKey", "status", "startDate", "endDate", "hoursSpent"}
	StageHeader      = []string{"status", "totalHours", "count", "maxHours", "avgHours"}
	ItemStageHeader  = []string{"issueKey", "status", "totalHours", "count", "maxHours", "avgHours"}
	ContinuousHeader = []string{"status", "violationCount", "longestViolationDurationDays"}
	SpanHeader       = []string{"status", "start", "end", "durationDays", "openEnded"}
	MonthlyHeader    = []string{"month", "status", "violatingDayCount"}
)

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteIntervalsCSV writes one row per stage interval.
func WriteIntervalsCSV(w io.Writer, intervals []stats.StageInterval) error {
	return writeCSVWithHeader(w, IntervalHeader, func(cw *csv.Writer) error {
		for _, iv := range intervals {
			if err := cw.Write([]string{
				iv.ItemKey,
				iv.Status,
				formatTime(iv.Start),
				formatTime(iv.End),
				formatFloat(iv.Hours()),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteStagesCSV writes dataset-wide stage statistics.
func WriteStagesCSV(w io.Writer, stages []stats.StageStats) error {
	return writeCSVWithHeader(w, StageHeader, func(cw *csv.Writer) error {
		for _, s := range stages {
			if err := cw.Write(stageRow(s)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteItemStagesCSV writes per-item stage statistics.
func WriteItemStagesCSV(w io.Writer, items []stats.ItemStageStats) error {
	return writeCSVWithHeader(w, ItemStageHeader, func(cw *csv.Writer) error {
		for _, item := range items {
			for _, s := range item.Stages {
				if err := cw.Write(append([]string{item.ItemKey}, stageRow(s)...)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func stageRow(s stats.StageStats) []string {
	return []string{
		s.Status,
		formatFloat(s.TotalHours),
		strconv.Itoa(s.Count),
		formatFloat(s.MaxHours),
		formatFloat(s.AverageHours()),
	}
}

// WriteContinuousCSV writes one summary row per monitored status.
func WriteContinuousCSV(w io.Writer, summaries []stats.ViolationSummary) error {
	return writeCSVWithHeader(w, ContinuousHeader, func(cw *csv.Writer) error {
		for _, s := range summaries {
			if err := cw.Write([]string{s.Status, strconv.Itoa(s.Violations), formatFloat(s.LongestDays)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSpansCSV writes every violation span.
func WriteSpansCSV(w io.Writer, spans []stats.ViolationSpan) error {
	return writeCSVWithHeader(w, SpanHeader, func(cw *csv.Writer) error {
		for _, sp := range spans {
			if err := cw.Write([]string{
				sp.Status,
				formatTime(sp.Start),
				formatTime(sp.End),
				formatFloat(sp.Days()),
				strconv.FormatBool(sp.OpenEnded),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteMonthlyCSV writes the discretized monthly violation counts.
func WriteMonthlyCSV(w io.Writer, monthly []stats.MonthlyViolation) error {
	return writeCSVWithHeader(w, MonthlyHeader, func(cw *csv.Writer) error {
		for _, m := range monthly {
			if err := cw.Write([]string{m.Month, m.Status, strconv.Itoa(m.ViolatingDays)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadIntervalsCSV parses an interval file written by WriteIntervalsCSV. Columns are
// located by header name; an empty endDate marks an interval that is still active and
// is closed at now. Rows with unparsable dates, no status, or an end that is not after
// the start are skipped.
func ReadIntervalsCSV(r io.Reader, now time.Time) ([]stats.StageInterval, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range []string{"issueKey", "status", "startDate", "endDate"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing CSV column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		if i := col[name]; i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var intervals []stats.StageInterval
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		start, err := time.Parse(time.RFC3339, field(rec, "startDate"))
		if err != nil {
			continue
		}
		end := now
		if raw := field(rec, "endDate"); raw != "" {
			if end, err = time.Parse(time.RFC3339, raw); err != nil {
				continue
			}
		}

		status := field(rec, "status")
		if status == "" || !end.After(start) {
			continue
		}

		intervals = append(intervals, stats.StageInterval{
			ItemKey: field(rec, "issueKey"),
			Status:  status,
			Start:   start,
			End:     end,
		})
	}
	return intervals, nil
}
