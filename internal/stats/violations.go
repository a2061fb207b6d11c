package stats

import (
	"cmp"
	"slices"
	"time"
)

// ViolationSpan is a maximal stretch of time during which a stage held more items than its limit.
type ViolationSpan struct {
	Status string    `json:"status"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	// OpenEnded marks a span that was still in violation when the events ran out;
	// End is then the last observed event time. Signals built by BuildOccupancy always
	// close every enter, so only signals assembled elsewhere (truncated or partial event
	// streams) produce open-ended spans.
	OpenEnded bool `json:"open_ended,omitempty"`
}

// Duration returns End - Start.
func (v ViolationSpan) Duration() time.Duration {
	return v.End.Sub(v.Start)
}

// Days returns the span length in days.
func (v ViolationSpan) Days() float64 {
	return v.Duration().Hours() / 24
}

// DetectViolations sweeps each monitored status' occupancy signal and returns every span
// during which the count exceeded the limit, ordered by status and then start time.
// The count is compared once all events of an instant have been applied.
func DetectViolations(signal OccupancySignal, limits WIPLimits) []ViolationSpan {
	var spans []ViolationSpan
	for _, status := range limits.Statuses() {
		spans = append(spans, sweep(status, signal[status], limits[status])...)
	}
	return spans
}

func sweep(status string, events []OccupancyEvent, limit int) []ViolationSpan {
	var (
		spans     []ViolationSpan
		count     int
		start     time.Time
		violating bool
		last      time.Time
	)

	forEachInstant(events, func(t time.Time, delta int) {
		count += delta
		last = t
		switch over := count > limit; {
		case over && !violating:
			start, violating = t, true
		case !over && violating:
			spans = append(spans, ViolationSpan{Status: status, Start: start, End: t})
			violating = false
		}
	})

	if violating {
		spans = append(spans, ViolationSpan{Status: status, Start: start, End: last, OpenEnded: true})
	}
	return spans
}

// ViolationSummary condenses the spans of one status.
type ViolationSummary struct {
	Status      string  `json:"status"`
	Limit       int     `json:"limit"`
	Violations  int     `json:"violations"`
	LongestDays float64 `json:"longest_violation_days"`
	Peak        int     `json:"peak"`
}

// SummarizeViolations reports one row per monitored status, including statuses that never
// exceeded their limit.
func SummarizeViolations(spans []ViolationSpan, signal OccupancySignal, limits WIPLimits) []ViolationSummary {
	byStatus := make(map[string]*ViolationSummary, len(limits))
	for status, limit := range limits {
		byStatus[status] = &ViolationSummary{
			Status: status,
			Limit:  limit,
			Peak:   signal.Peak(status),
		}
	}

	for _, sp := range spans {
		s, ok := byStatus[sp.Status]
		if !ok {
			continue
		}
		s.Violations++
		s.LongestDays = max(s.LongestDays, sp.Days())
	}

	out := make([]ViolationSummary, 0, len(byStatus))
	for _, s := range byStatus {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b ViolationSummary) int {
		return cmp.Compare(a.Status, b.Status)
	})
	return out
}
