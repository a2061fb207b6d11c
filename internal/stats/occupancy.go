package stats

import (
	"slices"
	"time"
)

// WIPLimits maps a monitored status to the maximum number of items allowed in it at once.
// Statuses missing from the table are not monitored.
type WIPLimits map[string]int

// Limit returns the configured limit for status.
func (l WIPLimits) Limit(status string) (int, bool) {
	limit, ok := l[status]
	return limit, ok
}

// Monitors reports whether status carries a limit.
func (l WIPLimits) Monitors(status string) bool {
	_, ok := l[status]
	return ok
}

// Statuses returns the monitored statuses in lexical order.
func (l WIPLimits) Statuses() []string {
	out := make([]string, 0, len(l))
	for s := range l {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// OccupancyKind tells whether an item enters or leaves a stage.
type OccupancyKind int

// Exit sorts before Enter so that a hand-over at the same instant never inflates the count.
const (
	Exit OccupancyKind = iota
	Enter
)

func (k OccupancyKind) String() string {
	if k == Enter {
		return "enter"
	}
	return "exit"
}

// OccupancyEvent is the start or the end of one stage interval.
type OccupancyEvent struct {
	Time    time.Time     `json:"time"`
	Status  string        `json:"status"`
	ItemKey string        `json:"issueKey"`
	Kind    OccupancyKind `json:"kind"`
}

// OccupancySignal holds, per monitored status, the time-ordered enter/exit events.
// It is materialized once and read by both violation detectors.
type OccupancySignal map[string][]OccupancyEvent

// BuildOccupancy turns the intervals of monitored statuses into per-status event sequences
// ordered by time, exits before enters at equal instants, input order otherwise.
func BuildOccupancy(intervals []StageInterval, limits WIPLimits) OccupancySignal {
	signal := make(OccupancySignal, len(limits))
	for _, iv := range intervals {
		if !limits.Monitors(iv.Status) {
			continue
		}
		signal[iv.Status] = append(signal[iv.Status],
			OccupancyEvent{Time: iv.Start, Status: iv.Status, ItemKey: iv.ItemKey, Kind: Enter},
			OccupancyEvent{Time: iv.End, Status: iv.Status, ItemKey: iv.ItemKey, Kind: Exit},
		)
	}

	for status := range signal {
		slices.SortStableFunc(signal[status], compareOccupancy)
	}
	return signal
}

func compareOccupancy(a, b OccupancyEvent) int {
	if c := a.Time.Compare(b.Time); c != 0 {
		return c
	}
	return int(a.Kind) - int(b.Kind)
}

// OccupancyStep is the number of items in a stage from Time until the next step.
type OccupancyStep struct {
	Time  time.Time `json:"time"`
	Count int       `json:"count"`
}

// Steps collapses the events of status into one step per distinct instant.
func (s OccupancySignal) Steps(status string) []OccupancyStep {
	var steps []OccupancyStep
	count := 0
	forEachInstant(s[status], func(t time.Time, delta int) {
		count += delta
		steps = append(steps, OccupancyStep{Time: t, Count: count})
	})
	return steps
}

// Peak returns the highest occupancy ever reached by status.
func (s OccupancySignal) Peak(status string) int {
	peak := 0
	for _, st := range s.Steps(status) {
		peak = max(peak, st.Count)
	}
	return peak
}

// forEachInstant groups consecutive events sharing a timestamp and reports their net effect.
func forEachInstant(events []OccupancyEvent, fn func(t time.Time, delta int)) {
	for i := 0; i < len(events); {
		t := events[i].Time
		delta := 0
		for ; i < len(events) && events[i].Time.Equal(t); i++ {
			if events[i].Kind == Enter {
				delta++
			} else {
				delta--
			}
		}
		fn(t, delta)
	}
}
