// Package analysis wires the stage-duration and WIP-violation computations into a
// single run over a dataset of item histories.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jira-wip/internal/stats"
)

// ErrNoLimits is returned when a run has no monitored statuses.
var ErrNoLimits = errors.New("no WIP limits configured")

// Options controls a run.
type Options struct {
	Limits stats.WIPLimits
	// Now closes the final interval of items that are still open. Zero means time.Now.
	Now time.Time
	// Location defines calendar days for the daily sampler. Nil means UTC.
	Location *time.Location
}

// Result holds every output of a run.
type Result struct {
	Timelines []stats.Timeline
	Intervals []stats.StageInterval

	Stages       []stats.StageStats
	PerItem      []stats.ItemStageStats
	LongestStage *stats.StageStats
	MaxTaskAge   *stats.StageStats

	Signal    stats.OccupancySignal
	Spans     []stats.ViolationSpan
	Summaries []stats.ViolationSummary

	Daily   stats.DailyOccupancy
	Monthly []stats.MonthlyViolation
}

func (o Options) normalize() (Options, error) {
	if len(o.Limits) == 0 {
		return o, ErrNoLimits
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o, nil
}

// Run builds every timeline and derives the duration and violation outputs from them.
func Run(ctx context.Context, histories []stats.ItemHistory, opts Options) (*Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	timelines, err := stats.BuildTimelines(ctx, histories, opts.Now)
	if err != nil {
		return nil, fmt.Errorf("building timelines: %w", err)
	}

	res := analyze(stats.Flatten(timelines), opts)
	res.Timelines = timelines
	return res, nil
}

// FromIntervals runs the analysis over intervals that were extracted earlier.
// Intervals without a status or with a non-positive length are dropped.
func FromIntervals(intervals []stats.StageInterval, opts Options) (*Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	valid := make([]stats.StageInterval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Status == "" || !iv.End.After(iv.Start) {
			continue
		}
		valid = append(valid, iv)
	}
	return analyze(valid, opts), nil
}

func analyze(intervals []stats.StageInterval, opts Options) *Result {
	res := &Result{Intervals: intervals}

	res.Stages = stats.AggregateStages(intervals)
	res.PerItem = stats.AggregateByItem(intervals)
	if s, ok := stats.LongestStage(res.Stages); ok {
		res.LongestStage = &s
	}
	if s, ok := stats.MaxTaskAge(res.Stages); ok {
		res.MaxTaskAge = &s
	}

	res.Signal = stats.BuildOccupancy(intervals, opts.Limits)
	res.Spans = stats.DetectViolations(res.Signal, opts.Limits)
	res.Summaries = stats.SummarizeViolations(res.Spans, res.Signal, opts.Limits)

	res.Daily = stats.BuildDailyOccupancy(intervals, opts.Limits, opts.Location)
	res.Monthly = stats.MonthlyViolations(res.Daily, opts.Limits)

	return res
}

// Timeline returns the intervals of one item, if present.
func (r *Result) Timeline(key string) ([]stats.StageInterval, bool) {
	for _, tl := range r.Timelines {
		if tl.ItemKey == key {
			return tl.Intervals, true
		}
	}
	// Interval-only runs have no timelines; fall back to filtering.
	var out []stats.StageInterval
	for _, iv := range r.Intervals {
		if iv.ItemKey == key {
			out = append(out, iv)
		}
	}
	return out, len(out) > 0
}
