package stats

import (
	"cmp"
	"slices"
)

// StageStats accumulates the time spent in one status.
type StageStats struct {
	Status     string  `json:"status"`
	TotalHours float64 `json:"total_hours"`
	Count      int     `json:"count"`
	MaxHours   float64 `json:"max_hours"`
}

// AverageHours is TotalHours / Count, or 0 for an empty accumulator.
func (s StageStats) AverageHours() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalHours / float64(s.Count)
}

// StageAggregator folds intervals into per-status StageStats.
// Each analysis run owns its aggregator; nothing is shared between runs.
type StageAggregator struct {
	byStatus map[string]*StageStats
}

// NewStageAggregator returns an empty aggregator.
func NewStageAggregator() *StageAggregator {
	return &StageAggregator{byStatus: make(map[string]*StageStats)}
}

// Add folds a single interval in.
func (a *StageAggregator) Add(iv StageInterval) {
	s, ok := a.byStatus[iv.Status]
	if !ok {
		s = &StageStats{Status: iv.Status}
		a.byStatus[iv.Status] = s
	}
	hours := iv.Hours()
	s.TotalHours += hours
	s.Count++
	s.MaxHours = max(s.MaxHours, hours)
}

// AddAll folds a batch of intervals in.
func (a *StageAggregator) AddAll(intervals []StageInterval) {
	for _, iv := range intervals {
		a.Add(iv)
	}
}

// Stats returns a snapshot of the accumulated stats sorted by status name.
func (a *StageAggregator) Stats() []StageStats {
	out := make([]StageStats, 0, len(a.byStatus))
	for _, s := range a.byStatus {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(x, y StageStats) int {
		return cmp.Compare(x.Status, y.Status)
	})
	return out
}

// AggregateStages computes dataset-wide stage stats.
func AggregateStages(intervals []StageInterval) []StageStats {
	agg := NewStageAggregator()
	agg.AddAll(intervals)
	return agg.Stats()
}

// ItemStageStats holds the stage stats of a single item.
type ItemStageStats struct {
	ItemKey string       `json:"issueKey"`
	Stages  []StageStats `json:"stages"`
}

// AggregateByItem computes stage stats per item, keeping the order in which items first
// appear in intervals.
func AggregateByItem(intervals []StageInterval) []ItemStageStats {
	var order []string
	perItem := make(map[string]*StageAggregator)

	for _, iv := range intervals {
		agg, ok := perItem[iv.ItemKey]
		if !ok {
			agg = NewStageAggregator()
			perItem[iv.ItemKey] = agg
			order = append(order, iv.ItemKey)
		}
		agg.Add(iv)
	}

	out := make([]ItemStageStats, 0, len(order))
	for _, key := range order {
		out = append(out, ItemStageStats{ItemKey: key, Stages: perItem[key].Stats()})
	}
	return out
}

// LongestStage returns the status with the highest average duration.
// On ties the first status in the given order wins.
func LongestStage(stats []StageStats) (StageStats, bool) {
	return extreme(stats, StageStats.AverageHours)
}

// MaxTaskAge returns the status holding the single longest interval.
// On ties the first status in the given order wins.
func MaxTaskAge(stats []StageStats) (StageStats, bool) {
	return extreme(stats, func(s StageStats) float64 { return s.MaxHours })
}

func extreme(stats []StageStats, key func(StageStats) float64) (StageStats, bool) {
	if len(stats) == 0 {
		return StageStats{}, false
	}
	best := stats[0]
	for _, s := range stats[1:] {
		if key(s) > key(best) {
			best = s
		}
	}
	return best, true
}
