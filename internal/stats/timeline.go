package stats

import (
	"context"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// StatusChange is one observed transition of an item into ToStatus.
type StatusChange struct {
	OccurredAt time.Time `json:"occurredAt"`
	ToStatus   string    `json:"toStatus"`
}

// ItemHistory is the raw material for a single item's timeline.
type ItemHistory struct {
	Key       string `json:"key"`
	IssueType string `json:"issueType,omitempty"`
	// InitialStatus is the status the item held at creation, before any recorded change.
	InitialStatus string         `json:"initialStatus"`
	Created       time.Time      `json:"created"`
	Resolved      *time.Time     `json:"resolved,omitempty"`
	Changes       []StatusChange `json:"changes"`
}

// Terminal returns the resolution time, or now for items that are still open.
func (h ItemHistory) Terminal(now time.Time) time.Time {
	if h.Resolved != nil {
		return *h.Resolved
	}
	return now
}

// StageInterval is a contiguous stay of one item in one status.
type StageInterval struct {
	ItemKey string    `json:"issueKey"`
	Status  string    `json:"status"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Duration returns End - Start.
func (iv StageInterval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Hours returns the interval length in hours.
func (iv StageInterval) Hours() float64 {
	return iv.Duration().Hours()
}

// Timeline is the ordered interval sequence of one item.
type Timeline struct {
	ItemKey   string          `json:"issueKey"`
	Intervals []StageInterval `json:"intervals"`
}

// BuildTimeline turns an item's history into ordered, contiguous stage intervals covering
// [Created, Resolved or now]. Spans that are not strictly positive are dropped, as are
// spans whose status is unknown (an item with changes but no initial status).
func BuildTimeline(h ItemHistory, now time.Time) []StageInterval {
	changes := slices.Clone(h.Changes)
	slices.SortStableFunc(changes, func(a, b StatusChange) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})

	var intervals []StageInterval
	emit := func(status string, start, end time.Time) {
		if status == "" || !end.After(start) {
			return
		}
		intervals = append(intervals, StageInterval{
			ItemKey: h.Key,
			Status:  status,
			Start:   start,
			End:     end,
		})
	}

	currentStatus := h.InitialStatus
	currentStart := h.Created

	for _, c := range changes {
		emit(currentStatus, currentStart, c.OccurredAt)
		currentStatus = c.ToStatus
		currentStart = c.OccurredAt
	}

	emit(currentStatus, currentStart, h.Terminal(now))
	return intervals
}

// BuildTimelines builds every item's timeline. Items are independent, so the work is
// spread across a bounded worker pool; the returned slice keeps the input order and is
// only available once every item has been processed.
func BuildTimelines(ctx context.Context, histories []ItemHistory, now time.Time) ([]Timeline, error) {
	timelines := make([]Timeline, len(histories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range histories {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			timelines[i] = Timeline{
				ItemKey:   histories[i].Key,
				Intervals: BuildTimeline(histories[i], now),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return timelines, nil
}

// Flatten concatenates all timelines into a single interval slice.
func Flatten(timelines []Timeline) []StageInterval {
	n := 0
	for _, t := range timelines {
		n += len(t.Intervals)
	}
	all := make([]StageInterval, 0, n)
	for _, t := range timelines {
		all = append(all, t.Intervals...)
	}
	return all
}
