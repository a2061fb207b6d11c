package eventlog

import (
	"jira-wip/internal/stats"
)

// BuildHistories projects the event log onto per-item status histories, in the
// order the items first appear in the log.
func BuildHistories(events []IssueEvent) []stats.ItemHistory {
	var order []string
	byKey := make(map[string]*stats.ItemHistory)

	for _, e := range events {
		h, ok := byKey[e.IssueKey]
		if !ok {
			h = &stats.ItemHistory{Key: e.IssueKey, IssueType: e.IssueType}
			byKey[e.IssueKey] = h
			order = append(order, e.IssueKey)
		}

		switch e.EventType {
		case Created:
			h.Created = e.Time()
			h.InitialStatus = e.ToStatus
		case Transitioned:
			h.Changes = append(h.Changes, stats.StatusChange{OccurredAt: e.Time(), ToStatus: e.ToStatus})
		case Resolved:
			resolved := e.Time()
			h.Resolved = &resolved
		}
	}

	histories := make([]stats.ItemHistory, 0, len(order))
	for _, key := range order {
		h := byKey[key]
		// Logs without a Created event (e.g. truncated imports) start at the first transition.
		if h.Created.IsZero() && len(h.Changes) > 0 {
			h.Created = h.Changes[0].OccurredAt
		}
		histories = append(histories, *h)
	}
	return histories
}
