package stats

import (
	"context"
	"fmt"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(h float64) time.Time {
	return t0.Add(time.Duration(h * float64(time.Hour)))
}

func ptr(t time.Time) *time.Time { return &t }

func TestBuildTimeline_ResolvedItem(t *testing.T) {
	h := ItemHistory{
		Key:           "A",
		InitialStatus: "To Do",
		Created:       t0,
		Resolved:      ptr(at(5)),
		Changes:       []StatusChange{{OccurredAt: at(1), ToStatus: "In Progress"}},
	}

	got := BuildTimeline(h, at(100))

	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %+v", len(got), got)
	}
	want := []struct {
		status string
		start  time.Time
		end    time.Time
		hours  float64
	}{
		{"To Do", t0, at(1), 1},
		{"In Progress", at(1), at(5), 4},
	}
	for i, w := range want {
		iv := got[i]
		if iv.ItemKey != "A" || iv.Status != w.status || !iv.Start.Equal(w.start) || !iv.End.Equal(w.end) {
			t.Errorf("interval %d = %+v, want %s [%v, %v]", i, iv, w.status, w.start, w.end)
		}
		if iv.Hours() != w.hours {
			t.Errorf("interval %d hours = %v, want %v", i, iv.Hours(), w.hours)
		}
	}
}

func TestBuildTimeline_OpenItemRunsUntilNow(t *testing.T) {
	h := ItemHistory{
		Key:           "B",
		InitialStatus: "To Do",
		Created:       t0,
		Changes:       []StatusChange{{OccurredAt: at(2), ToStatus: "In Progress"}},
	}

	got := BuildTimeline(h, at(10))
	last := got[len(got)-1]
	if last.Status != "In Progress" || !last.End.Equal(at(10)) {
		t.Errorf("expected open interval to end at now, got %+v", last)
	}
}

func TestBuildTimeline_SortsChangesAndKeepsSameInstantOrder(t *testing.T) {
	h := ItemHistory{
		Key:           "C",
		InitialStatus: "To Do",
		Created:       t0,
		Resolved:      ptr(at(3)),
		Changes: []StatusChange{
			{OccurredAt: at(3), ToStatus: "Done"},
			{OccurredAt: at(1), ToStatus: "In Progress"},
			{OccurredAt: at(1), ToStatus: "Review"},
		},
	}

	got := BuildTimeline(h, at(100))

	// "In Progress" lasts zero time and "Done" starts at the resolution instant.
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %+v", len(got), got)
	}
	if got[0].Status != "To Do" || got[1].Status != "Review" {
		t.Errorf("unexpected statuses: %s, %s", got[0].Status, got[1].Status)
	}
	if !got[1].Start.Equal(at(1)) || !got[1].End.Equal(at(3)) {
		t.Errorf("Review interval = [%v, %v], want [%v, %v]", got[1].Start, got[1].End, at(1), at(3))
	}
}

func TestBuildTimeline_DropsNonPositiveSpans(t *testing.T) {
	tests := []struct {
		name    string
		history ItemHistory
		want    []string
	}{
		{
			name: "terminal before last transition",
			history: ItemHistory{
				Key: "D", InitialStatus: "To Do", Created: t0, Resolved: ptr(at(2)),
				Changes: []StatusChange{{OccurredAt: at(3), ToStatus: "Done"}},
			},
			want: []string{"To Do"},
		},
		{
			name: "terminal before creation",
			history: ItemHistory{
				Key: "E", InitialStatus: "To Do", Created: t0, Resolved: ptr(at(-1)),
			},
			want: nil,
		},
		{
			name: "change at creation instant",
			history: ItemHistory{
				Key: "F", InitialStatus: "Open", Created: t0, Resolved: ptr(at(4)),
				Changes: []StatusChange{{OccurredAt: t0, ToStatus: "In Progress"}},
			},
			want: []string{"In Progress"},
		},
		{
			name: "unknown initial status",
			history: ItemHistory{
				Key: "G", Created: t0, Resolved: ptr(at(4)),
				Changes: []StatusChange{{OccurredAt: at(1), ToStatus: "In Progress"}},
			},
			want: []string{"In Progress"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTimeline(tt.history, at(100))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d intervals (%+v), want %v", len(got), got, tt.want)
			}
			for i, iv := range got {
				if iv.Status != tt.want[i] {
					t.Errorf("interval %d status = %q, want %q", i, iv.Status, tt.want[i])
				}
				if iv.End.Before(iv.Start) || iv.End.Equal(iv.Start) {
					t.Errorf("interval %d is not strictly positive: %+v", i, iv)
				}
			}
		})
	}
}

func TestBuildTimeline_CoversLifetimeWithoutGaps(t *testing.T) {
	statuses := []string{"To Do", "In Progress", "Testing/Review", "In Progress", "Done"}

	for n := 0; n < 20; n++ {
		h := ItemHistory{Key: fmt.Sprintf("P-%d", n), InitialStatus: "Open", Created: t0}
		offset := 0.0
		for i := 0; i <= n%len(statuses); i++ {
			offset += float64(1 + (n*7+i*3)%11)
			h.Changes = append(h.Changes, StatusChange{OccurredAt: at(offset), ToStatus: statuses[i]})
		}
		terminal := at(offset + float64(1+n%5))
		if n%2 == 0 {
			h.Resolved = ptr(terminal)
		}

		got := BuildTimeline(h, terminal)

		if len(got) == 0 {
			t.Fatalf("%s: no intervals", h.Key)
		}
		if !got[0].Start.Equal(h.Created) {
			t.Errorf("%s: first interval starts at %v, want creation %v", h.Key, got[0].Start, h.Created)
		}
		if !got[len(got)-1].End.Equal(terminal) {
			t.Errorf("%s: last interval ends at %v, want terminal %v", h.Key, got[len(got)-1].End, terminal)
		}
		for i := 1; i < len(got); i++ {
			if !got[i].Start.Equal(got[i-1].End) {
				t.Errorf("%s: gap or overlap between interval %d and %d", h.Key, i-1, i)
			}
		}
	}
}

func TestBuildTimelines_PreservesItemOrder(t *testing.T) {
	var histories []ItemHistory
	for i := 0; i < 50; i++ {
		histories = append(histories, ItemHistory{
			Key:           fmt.Sprintf("PROJ-%d", i),
			InitialStatus: "To Do",
			Created:       t0,
			Resolved:      ptr(at(float64(i + 1))),
		})
	}

	timelines, err := BuildTimelines(context.Background(), histories, at(100))
	if err != nil {
		t.Fatalf("BuildTimelines failed: %v", err)
	}
	if len(timelines) != len(histories) {
		t.Fatalf("expected %d timelines, got %d", len(histories), len(timelines))
	}
	for i, tl := range timelines {
		if tl.ItemKey != histories[i].Key {
			t.Errorf("timeline %d belongs to %s, want %s", i, tl.ItemKey, histories[i].Key)
		}
		if len(tl.Intervals) != 1 || tl.Intervals[0].Hours() != float64(i+1) {
			t.Errorf("timeline %d: unexpected intervals %+v", i, tl.Intervals)
		}
	}

	if n := len(Flatten(timelines)); n != 50 {
		t.Errorf("Flatten returned %d intervals, want 50", n)
	}
}

func TestBuildTimelines_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	histories := []ItemHistory{
		{Key: "A", InitialStatus: "To Do", Created: t0},
		{Key: "B", InitialStatus: "To Do", Created: t0},
	}
	if _, err := BuildTimelines(ctx, histories, at(1)); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
