package jira

import (
	"strings"
	"time"
)

// SearchResponse is the top-level container for Jira search results.
type SearchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	Key       string        `json:"key"`
	Fields    FieldsDTO     `json:"fields"`
	Changelog *ChangelogDTO `json:"changelog,omitempty"`
}

// FieldsDTO contains the specific fields we care about.
type FieldsDTO struct {
	IssueType      IssueTypeDTO  `json:"issuetype"`
	Status         Status        `json:"status"`
	Resolution     *ResolutionDTO `json:"resolution"`
	ResolutionDate string        `json:"resolutiondate"`
	Created        string        `json:"created"`
	Updated        string        `json:"updated"`
}

// IssueTypeDTO is the issue type of an issue.
type IssueTypeDTO struct {
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

// ChangelogDTO contains historical transitions.
type ChangelogDTO struct {
	Histories []HistoryDTO `json:"histories"`
}

// HistoryDTO is a single entry in the changelog.
type HistoryDTO struct {
	Created string    `json:"created"`
	Items   []ItemDTO `json:"items"`
}

// ItemDTO is a single field change within a history entry.
type ItemDTO struct {
	Field      string `json:"field"`
	ToString   string `json:"toString"`
	FromString string `json:"fromString"`
	To         string `json:"to"`   // ID
	From       string `json:"from"` // ID
}

// IsStatusChange reports whether the item records a workflow transition.
func (i ItemDTO) IsStatusChange() bool {
	return strings.EqualFold(i.Field, "status")
}

// ResolutionDTO represents a resolution metadata object.
type ResolutionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is an embedded status object.
type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParseTime is a helper for the strict Jira time format.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000-0700", s)
}
