package eventlog

import (
	"testing"
	"time"

	"jira-wip/internal/jira"
)

func statusItem(from, to string) jira.ItemDTO {
	return jira.ItemDTO{Field: "status", FromString: from, ToString: to}
}

func TestTransformIssue_InitialStatusFromFirstTransition(t *testing.T) {
	dto := jira.IssueDTO{
		Key: "TEST-1",
		Fields: jira.FieldsDTO{
			IssueType:      jira.IssueTypeDTO{Name: "Story"},
			Status:         jira.Status{Name: "Done"},
			Resolution:     &jira.ResolutionDTO{Name: "Fixed"},
			ResolutionDate: "2024-03-20T14:30:00.000+0000",
			Created:        "2024-03-20T10:00:00.000+0000",
		},
		Changelog: &jira.ChangelogDTO{
			Histories: []jira.HistoryDTO{
				// Out of order on purpose.
				{Created: "2024-03-20T14:30:00.000+0000", Items: []jira.ItemDTO{
					statusItem("In Progress", "Done"),
					{Field: "resolution", ToString: "Fixed"},
				}},
				{Created: "2024-03-20T11:00:00.000+0000", Items: []jira.ItemDTO{
					{Field: "assignee", ToString: "someone"},
					statusItem("To Do", "In Progress"),
				}},
			},
		},
	}

	events := TransformIssue(dto)

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}
	if events[0].EventType != Created || events[0].ToStatus != "To Do" {
		t.Errorf("Created event should carry the inferred initial status, got %+v", events[0])
	}
	if events[1].ToStatus != "In Progress" || events[2].ToStatus != "Done" {
		t.Errorf("transitions out of order: %+v", events[1:3])
	}
	if events[3].EventType != Resolved || events[3].Resolution != "Fixed" {
		t.Errorf("expected a Resolved event, got %+v", events[3])
	}
	for i := 1; i < len(events); i++ {
		if events[i].SequenceID <= events[i-1].SequenceID {
			t.Errorf("sequence IDs must increase, got %d after %d", events[i].SequenceID, events[i-1].SequenceID)
		}
	}
}

func TestTransformIssue_NoChangelogUsesCurrentStatus(t *testing.T) {
	dto := jira.IssueDTO{
		Key: "TEST-2",
		Fields: jira.FieldsDTO{
			Status:  jira.Status{Name: "Backlog"},
			Created: "2024-03-20T10:00:00.000+0000",
		},
	}

	events := TransformIssue(dto)

	if len(events) != 1 || events[0].ToStatus != "Backlog" {
		t.Errorf("expected a single Created event in Backlog, got %+v", events)
	}
}

func TestTransformIssue_UnparsableCreated(t *testing.T) {
	if events := TransformIssue(jira.IssueDTO{Key: "BAD-1"}); events != nil {
		t.Errorf("expected no events, got %+v", events)
	}
}

func TestBuildHistories_RoundTripsIntoTimeline(t *testing.T) {
	dto := jira.IssueDTO{
		Key: "TEST-3",
		Fields: jira.FieldsDTO{
			Status:         jira.Status{Name: "Done"},
			Created:        "2024-03-01T09:00:00.000+0000",
			ResolutionDate: "2024-03-01T14:00:00.000+0000",
		},
		Changelog: &jira.ChangelogDTO{Histories: []jira.HistoryDTO{
			{Created: "2024-03-01T10:00:00.000+0000", Items: []jira.ItemDTO{statusItem("To Do", "In Progress")}},
			{Created: "2024-03-01T14:00:00.000+0000", Items: []jira.ItemDTO{statusItem("In Progress", "Done")}},
		}},
	}

	histories := BuildHistories(TransformIssue(dto))
	if len(histories) != 1 {
		t.Fatalf("expected one history, got %d", len(histories))
	}
	h := histories[0]
	if h.InitialStatus != "To Do" || len(h.Changes) != 2 || h.Resolved == nil {
		t.Fatalf("unexpected history %+v", h)
	}

	iv := statsTimeline(h)
	if len(iv) != 2 {
		t.Fatalf("expected 2 intervals, got %+v", iv)
	}
	if iv[0].Status != "To Do" || iv[0].Hours() != 1 || iv[1].Status != "In Progress" || iv[1].Hours() != 4 {
		t.Errorf("unexpected intervals %+v", iv)
	}
}

func TestBuildHistories_FirstSeenOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMicro()
	events := []IssueEvent{
		{IssueKey: "B-1", EventType: Created, Timestamp: base, ToStatus: "To Do"},
		{IssueKey: "A-1", EventType: Created, Timestamp: base + 1, ToStatus: "To Do"},
		{IssueKey: "B-1", EventType: Transitioned, Timestamp: base + 2, ToStatus: "Done"},
	}

	histories := BuildHistories(events)
	if len(histories) != 2 || histories[0].Key != "B-1" || histories[1].Key != "A-1" {
		t.Errorf("unexpected order %+v", histories)
	}
}
