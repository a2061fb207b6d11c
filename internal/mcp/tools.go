package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Jira key formats, accepted in any case and upper-cased before use.
const (
	projectKeyPattern = `^[A-Za-z][A-Za-z0-9_]+$`
	issueKeyPattern   = `^[A-Za-z][A-Za-z0-9_]*-[0-9]+$`
)

// ScopeParams selects the issues a tool analyzes.
type ScopeParams struct {
	ProjectKey string `json:"project_key,omitempty" jsonschema:"Jira project key (e.g. PROJ). Defaults to the configured project."`
	JQL        string `json:"jql,omitempty" jsonschema:"Optional JQL overriding the project scope. Results for custom JQL are never cached."`
	Refresh    bool   `json:"refresh,omitempty" jsonschema:"Re-fetch the history from Jira instead of using the local cache."`
}

// TimelineParams selects a single work item.
type TimelineParams struct {
	IssueKey   string `json:"issue_key" jsonschema:"The issue key (e.g. PROJ-123)."`
	ProjectKey string `json:"project_key,omitempty" jsonschema:"Jira project key. Defaults to the prefix of issue_key."`
	Refresh    bool   `json:"refresh,omitempty" jsonschema:"Re-fetch the history from Jira instead of using the local cache."`
}

func (s *Server) registerTools(server *sdk.Server) {
	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_stage_durations",
		Description: "Time spent per workflow status, dataset-wide and per item. " +
			"Reports total, count, max and average hours per status, the stage with the highest average (longest stage) " +
			"and the stage holding the longest single stay (max task age).",
		InputSchema: scopeSchema(),
	}, s.handleStageDurations)

	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_wip_violations",
		Description: "Continuous WIP-limit violation detection for the monitored statuses. " +
			"Returns every maximal period during which the number of items in a status exceeded its limit, " +
			"with per-status violation counts, the longest violation in days and the peak occupancy.",
		InputSchema: scopeSchema(),
	}, s.handleWIPViolations)

	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_monthly_wip_violations",
		Description: "Daily-sampled WIP-limit violations grouped by calendar month. " +
			"A day counts as violating when more items touched the status that day than its limit allows.",
		InputSchema: scopeSchema(),
	}, s.handleMonthlyWIPViolations)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_item_timeline",
		Description: "The reconstructed stage timeline (status, start, end, hours) of a single work item.",
		InputSchema: timelineSchema(),
	}, s.handleItemTimeline)
}

func scopeSchema() *jsonschema.Schema {
	return inferSchema[ScopeParams](map[string]string{"project_key": projectKeyPattern})
}

func timelineSchema() *jsonschema.Schema {
	return inferSchema[TimelineParams](map[string]string{
		"issue_key":   issueKeyPattern,
		"project_key": projectKeyPattern,
	})
}

// inferSchema derives the input schema of T and enforces the given property patterns.
func inferSchema[T any](patterns map[string]string) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	for name, pattern := range patterns {
		if prop, ok := schema.Properties[name]; ok {
			prop.Pattern = pattern
		}
	}
	return schema
}
