package mcp

import (
	"context"
	"fmt"
	"strings"

	"jira-wip/internal/stats"
	"jira-wip/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// StageDurations is the payload of analyze_stage_durations.
type StageDurations struct {
	Stages       []stats.StageStats     `json:"stages"`
	PerItem      []stats.ItemStageStats `json:"perItem"`
	LongestStage *stats.StageStats      `json:"longestStage,omitempty"`
	MaxTaskAge   *stats.StageStats      `json:"maxTaskAge,omitempty"`
}

// WIPViolations is the payload of analyze_wip_violations.
type WIPViolations struct {
	Limits    stats.WIPLimits          `json:"limits"`
	Summaries []stats.ViolationSummary `json:"summaries"`
	Spans     []stats.ViolationSpan    `json:"spans"`
}

// MonthlyWIPViolations is the payload of analyze_monthly_wip_violations.
type MonthlyWIPViolations struct {
	Limits  stats.WIPLimits          `json:"limits"`
	Monthly []stats.MonthlyViolation `json:"monthly"`
}

func (s *Server) handleStageDurations(ctx context.Context, _ *sdk.CallToolRequest, p ScopeParams) (*sdk.CallToolResult, any, error) {
	sourceID, res, err := s.run(ctx, p)
	if err != nil {
		return nil, nil, err
	}

	resp := Response{
		Source: sourceID,
		Items:  len(res.Timelines),
		Data: StageDurations{
			Stages:       res.Stages,
			PerItem:      res.PerItem,
			LongestStage: res.LongestStage,
			MaxTaskAge:   res.MaxTaskAge,
		},
	}
	if len(res.Stages) == 0 {
		resp.Warnings = append(resp.Warnings, "no stage intervals found for this scope")
	}
	return s.textResult(resp, visuals.GenerateStageDurationChart(res.Stages)), nil, nil
}

func (s *Server) handleWIPViolations(ctx context.Context, _ *sdk.CallToolRequest, p ScopeParams) (*sdk.CallToolResult, any, error) {
	sourceID, res, err := s.run(ctx, p)
	if err != nil {
		return nil, nil, err
	}

	resp := Response{
		Source: sourceID,
		Items:  len(res.Timelines),
		Data: WIPViolations{
			Limits:    s.opts.Limits,
			Summaries: res.Summaries,
			Spans:     res.Spans,
		},
	}
	for _, sp := range res.Spans {
		if sp.OpenEnded {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s is still over its limit at the end of the data", sp.Status))
		}
	}
	return s.textResult(resp, ""), nil, nil
}

func (s *Server) handleMonthlyWIPViolations(ctx context.Context, _ *sdk.CallToolRequest, p ScopeParams) (*sdk.CallToolResult, any, error) {
	sourceID, res, err := s.run(ctx, p)
	if err != nil {
		return nil, nil, err
	}

	resp := Response{
		Source: sourceID,
		Items:  len(res.Timelines),
		Data: MonthlyWIPViolations{
			Limits:  s.opts.Limits,
			Monthly: res.Monthly,
		},
	}
	return s.textResult(resp, visuals.GenerateMonthlyViolationChart(res.Monthly, s.opts.Limits.Statuses())), nil, nil
}

func (s *Server) handleItemTimeline(ctx context.Context, _ *sdk.CallToolRequest, p TimelineParams) (*sdk.CallToolResult, any, error) {
	issueKey := strings.ToUpper(strings.TrimSpace(p.IssueKey))
	if issueKey == "" {
		return nil, nil, fmt.Errorf("issue_key is required")
	}

	projectKey := p.ProjectKey
	if projectKey == "" {
		if idx := strings.Index(issueKey, "-"); idx > 0 {
			projectKey = issueKey[:idx]
		}
	}

	sourceID, res, err := s.run(ctx, ScopeParams{ProjectKey: projectKey, Refresh: p.Refresh})
	if err != nil {
		return nil, nil, err
	}

	intervals, ok := res.Timeline(issueKey)
	if !ok {
		return nil, nil, fmt.Errorf("issue %s not found in %s", issueKey, sourceID)
	}

	resp := Response{
		Source: sourceID,
		Items:  1,
		Data: map[string]any{
			"issueKey":  issueKey,
			"intervals": intervals,
			"stages":    stats.AggregateStages(intervals),
			"events":    s.provider.GetEventsForIssue(sourceID, issueKey),
		},
	}
	return s.textResult(resp, ""), nil, nil
}
