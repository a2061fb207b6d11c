package stats

import (
	"cmp"
	"slices"
	"time"
)

// DailyOccupancy counts, per calendar day (YYYY-MM-DD) and status, how many items were in
// that status at any point during the day.
type DailyOccupancy map[string]map[string]int

// BuildDailyOccupancy spreads every monitored interval over each calendar day it touches,
// from the day of Start through the day of End inclusive, using loc to draw day boundaries.
func BuildDailyOccupancy(intervals []StageInterval, limits WIPLimits, loc *time.Location) DailyOccupancy {
	if loc == nil {
		loc = time.UTC
	}

	daily := make(DailyOccupancy)
	for _, iv := range intervals {
		if !limits.Monitors(iv.Status) {
			continue
		}
		last := SnapToStart(iv.End.In(loc), "day")
		for d := SnapToStart(iv.Start.In(loc), "day"); !d.After(last); d = d.AddDate(0, 0, 1) {
			key := DayKey(d)
			if daily[key] == nil {
				daily[key] = make(map[string]int)
			}
			daily[key][iv.Status]++
		}
	}
	return daily
}

// MonthlyViolation counts the days of a month on which a status was over its limit.
type MonthlyViolation struct {
	Month         string `json:"month"`
	Status        string `json:"status"`
	ViolatingDays int    `json:"violating_days"`
}

// MonthlyViolations attributes every over-limit (day, status) pair to its month.
// Only pairs with at least one violating day are returned, ordered by month then status.
func MonthlyViolations(daily DailyOccupancy, limits WIPLimits) []MonthlyViolation {
	type key struct{ month, status string }
	counts := make(map[key]int)

	for day, statuses := range daily {
		month := day[:7]
		for status, count := range statuses {
			limit, ok := limits.Limit(status)
			if !ok || count <= limit {
				continue
			}
			counts[key{month, status}]++
		}
	}

	out := make([]MonthlyViolation, 0, len(counts))
	for k, n := range counts {
		out = append(out, MonthlyViolation{Month: k.month, Status: k.status, ViolatingDays: n})
	}
	slices.SortFunc(out, func(a, b MonthlyViolation) int {
		if c := cmp.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		return cmp.Compare(a.Status, b.Status)
	})
	return out
}
