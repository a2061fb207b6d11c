package eventlog

import (
	"slices"

	"jira-wip/internal/jira"

	"github.com/rs/zerolog/log"
)

// TransformIssue converts a Jira Issue DTO and its changelog into a slice of IssueEvents.
func TransformIssue(dto jira.IssueDTO) []IssueEvent {
	issueKey := dto.Key
	issueType := dto.Fields.IssueType.Name

	created, err := jira.ParseTime(dto.Fields.Created)
	if err != nil {
		log.Warn().Err(err).Str("issue", issueKey).Msg("Skipping issue with unparsable creation date")
		return nil
	}

	type change struct {
		ts   int64
		item jira.ItemDTO
	}
	var changes []change

	if dto.Changelog != nil {
		for _, history := range dto.Changelog.Histories {
			ts, err := jira.ParseTime(history.Created)
			if err != nil {
				log.Debug().Str("issue", issueKey).Str("created", history.Created).Msg("Skipping history with unparsable date")
				continue
			}
			for _, item := range history.Items {
				if item.IsStatusChange() {
					changes = append(changes, change{ts: ts.UnixMicro(), item: item})
				}
			}
		}
	}

	// Jira usually returns histories oldest-first, but not always. Items inside one
	// history keep their relative order.
	slices.SortStableFunc(changes, func(a, b change) int {
		switch {
		case a.ts < b.ts:
			return -1
		case a.ts > b.ts:
			return 1
		}
		return 0
	})

	// The item was born in the status its first transition left; without
	// transitions it never moved from its current one.
	initialStatus := dto.Fields.Status.Name
	if len(changes) > 0 && changes[0].item.FromString != "" {
		initialStatus = changes[0].item.FromString
	}

	seq := 0
	events := []IssueEvent{{
		IssueKey:   issueKey,
		IssueType:  issueType,
		EventType:  Created,
		Timestamp:  created.UnixMicro(),
		SequenceID: seq,
		ToStatus:   initialStatus,
	}}

	for _, c := range changes {
		seq++
		events = append(events, IssueEvent{
			IssueKey:   issueKey,
			IssueType:  issueType,
			EventType:  Transitioned,
			Timestamp:  c.ts,
			SequenceID: seq,
			FromStatus: c.item.FromString,
			ToStatus:   c.item.ToString,
		})
	}

	if dto.Fields.ResolutionDate != "" {
		if resTime, err := jira.ParseTime(dto.Fields.ResolutionDate); err == nil {
			seq++
			resolution := ""
			if dto.Fields.Resolution != nil {
				resolution = dto.Fields.Resolution.Name
			}
			events = append(events, IssueEvent{
				IssueKey:   issueKey,
				IssueType:  issueType,
				EventType:  Resolved,
				Timestamp:  resTime.UnixMicro(),
				SequenceID: seq,
				Resolution: resolution,
			})
		}
	}

	return events
}

// TransformIssues flattens a batch of DTOs into events.
func TransformIssues(dtos []jira.IssueDTO) []IssueEvent {
	var events []IssueEvent
	for _, dto := range dtos {
		events = append(events, TransformIssue(dto)...)
	}
	return events
}
