package stats

import (
	"fmt"
	"testing"
)

func TestDetectViolations_SevenItemsOverLimitSix(t *testing.T) {
	limits := WIPLimits{"In Progress": 6}

	var intervals []StageInterval
	for i := 0; i < 7; i++ {
		intervals = append(intervals, span(fmt.Sprintf("P-%d", i), "In Progress", 10, 48))
	}

	spans := DetectViolations(BuildOccupancy(intervals, limits), limits)

	if len(spans) != 1 {
		t.Fatalf("expected exactly one violation span, got %d: %+v", len(spans), spans)
	}
	sp := spans[0]
	if sp.Status != "In Progress" || !sp.Start.Equal(at(10)) || !sp.End.Equal(at(58)) || sp.OpenEnded {
		t.Errorf("unexpected span %+v", sp)
	}
	if sp.Days() != 2 {
		t.Errorf("expected span of 2 days, got %v", sp.Days())
	}
}

func TestDetectViolations_AtLimitIsNotAViolation(t *testing.T) {
	limits := WIPLimits{"In Progress": 2}
	intervals := []StageInterval{
		span("A", "In Progress", 0, 5),
		span("B", "In Progress", 1, 5),
	}

	if spans := DetectViolations(BuildOccupancy(intervals, limits), limits); len(spans) != 0 {
		t.Errorf("expected no violations at the limit, got %+v", spans)
	}
}

func TestDetectViolations_HandOverKeepsSpanWhole(t *testing.T) {
	limits := WIPLimits{"In Progress": 1}
	intervals := []StageInterval{
		span("A", "In Progress", 0, 2),
		span("B", "In Progress", 1, 2),
		span("C", "In Progress", 2, 3), // enters as A leaves
	}

	spans := DetectViolations(BuildOccupancy(intervals, limits), limits)

	if len(spans) != 1 {
		t.Fatalf("expected a single maximal span, got %+v", spans)
	}
	if !spans[0].Start.Equal(at(1)) || !spans[0].End.Equal(at(3)) {
		t.Errorf("span = [%v, %v], want [%v, %v]", spans[0].Start, spans[0].End, at(1), at(3))
	}
}

func TestDetectViolations_OrderedAndNonOverlapping(t *testing.T) {
	limits := WIPLimits{"In Progress": 1, "Testing/Review": 1}
	intervals := []StageInterval{
		span("A", "In Progress", 0, 2),
		span("B", "In Progress", 1, 2),
		span("C", "In Progress", 10, 5),
		span("D", "In Progress", 12, 1),
		span("E", "Testing/Review", 4, 4),
		span("F", "Testing/Review", 5, 1),
	}

	spans := DetectViolations(BuildOccupancy(intervals, limits), limits)

	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %+v", spans)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Status != spans[i-1].Status {
			continue
		}
		if spans[i].Start.Before(spans[i-1].End) {
			t.Errorf("spans %d and %d overlap or are out of order", i-1, i)
		}
	}
	for _, sp := range spans {
		if sp.End.Before(sp.Start) {
			t.Errorf("negative span %+v", sp)
		}
	}
	if spans[2].Status != "Testing/Review" || !spans[2].Start.Equal(at(5)) || !spans[2].End.Equal(at(6)) {
		t.Errorf("unexpected Testing/Review span %+v", spans[2])
	}
}

func TestDetectViolations_OpenEndedSpan(t *testing.T) {
	limits := WIPLimits{"In Progress": 1}
	signal := OccupancySignal{
		"In Progress": {
			{Time: at(0), Status: "In Progress", ItemKey: "A", Kind: Enter},
			{Time: at(1), Status: "In Progress", ItemKey: "B", Kind: Enter},
			{Time: at(3), Status: "In Progress", ItemKey: "C", Kind: Enter},
		},
	}

	spans := DetectViolations(signal, limits)

	if len(spans) != 1 {
		t.Fatalf("expected one span, got %+v", spans)
	}
	if !spans[0].OpenEnded || !spans[0].Start.Equal(at(1)) || !spans[0].End.Equal(at(3)) {
		t.Errorf("expected open-ended span [1h, 3h], got %+v", spans[0])
	}
}

func TestSummarizeViolations(t *testing.T) {
	limits := WIPLimits{"In Progress": 1, "Testing/Review": 2}
	intervals := []StageInterval{
		span("A", "In Progress", 0, 30),
		span("B", "In Progress", 0, 12),
		span("C", "In Progress", 20, 48),
	}
	signal := BuildOccupancy(intervals, limits)
	spans := DetectViolations(signal, limits)

	summaries := SummarizeViolations(spans, signal, limits)

	if len(summaries) != 2 {
		t.Fatalf("expected a row per monitored status, got %+v", summaries)
	}

	ip := summaries[0]
	if ip.Status != "In Progress" || ip.Limit != 1 || ip.Violations != 2 || ip.Peak != 2 {
		t.Errorf("unexpected In Progress summary %+v", ip)
	}
	if ip.LongestDays != 0.5 {
		t.Errorf("expected longest violation of 0.5 days, got %v", ip.LongestDays)
	}

	tr := summaries[1]
	if tr.Status != "Testing/Review" || tr.Violations != 0 || tr.LongestDays != 0 || tr.Peak != 0 {
		t.Errorf("expected an empty Testing/Review row, got %+v", tr)
	}
}

func TestDetectViolations_BuiltSignalsAlwaysClose(t *testing.T) {
	limits := WIPLimits{"In Progress": 1}
	var intervals []StageInterval
	for i := 0; i < 20; i++ {
		start := float64(i % 7)
		intervals = append(intervals, span(fmt.Sprintf("K-%d", i), "In Progress", start, float64(1+i%5)))
	}

	for _, sp := range DetectViolations(BuildOccupancy(intervals, limits), limits) {
		if sp.OpenEnded {
			t.Errorf("span %+v is open-ended although every interval has an end", sp)
		}
	}
}
