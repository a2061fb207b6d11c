package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"jira-wip/internal/analysis"
	"jira-wip/internal/jira"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// adhocSource is the cache partition used for tool calls with custom JQL.
const adhocSource = "adhoc"

// Response is the envelope returned by every tool.
type Response struct {
	Source   string   `json:"source"`
	Items    int      `json:"items"`
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

func stripOrderBy(jql string) string {
	jqlLower := strings.ToLower(jql)
	if idx := strings.Index(jqlLower, " order by"); idx != -1 {
		return jql[:idx]
	}
	return jql
}

var projectKeyRe = regexp.MustCompile(projectKeyPattern)

// defaultSource is the cache partition of the configured scope, shared with the CLI.
func (s *Server) defaultSource() string {
	switch {
	case s.opts.DefaultSource != "":
		return s.opts.DefaultSource
	case s.opts.DefaultProject != "":
		return s.opts.DefaultProject
	}
	return "default"
}

// resolveScope maps tool parameters onto a cache partition and a search query.
// Omitting project_key, or naming the configured project, selects the configured scope,
// including its JQL when one is set.
func (s *Server) resolveScope(p ScopeParams) (sourceID string, jql string, refresh bool, err error) {
	if p.JQL != "" {
		return adhocSource, stripOrderBy(p.JQL), true, nil
	}

	projectKey := strings.ToUpper(strings.TrimSpace(p.ProjectKey))
	if projectKey != "" && !projectKeyRe.MatchString(projectKey) {
		return "", "", false, fmt.Errorf("invalid project_key %q", p.ProjectKey)
	}

	if projectKey == "" || strings.EqualFold(projectKey, s.opts.DefaultProject) {
		if s.opts.DefaultJQL != "" {
			return s.defaultSource(), stripOrderBy(s.opts.DefaultJQL), p.Refresh, nil
		}
		if s.opts.DefaultProject == "" {
			return "", "", false, fmt.Errorf("project_key is required (no default project configured)")
		}
		return s.defaultSource(), jira.ProjectJQL(s.opts.DefaultProject), p.Refresh, nil
	}
	return projectKey, jira.ProjectJQL(projectKey), p.Refresh, nil
}

// run hydrates the requested scope and analyzes it.
func (s *Server) run(ctx context.Context, p ScopeParams) (string, *analysis.Result, error) {
	sourceID, jql, refresh, err := s.resolveScope(p)
	if err != nil {
		return "", nil, err
	}

	if err := s.provider.Hydrate(ctx, sourceID, jql, refresh); err != nil {
		return "", nil, err
	}

	res, err := analysis.Run(ctx, s.provider.Histories(sourceID), analysis.Options{
		Limits:   s.opts.Limits,
		Now:      s.now(),
		Location: s.opts.Location,
	})
	if err != nil {
		return "", nil, err
	}
	return sourceID, res, nil
}

func (s *Server) formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

// textResult renders the response as JSON, followed by an optional Mermaid chart.
func (s *Server) textResult(resp Response, chart string) *sdk.CallToolResult {
	content := []sdk.Content{&sdk.TextContent{Text: s.formatResult(resp)}}
	if s.opts.EnableMermaidCharts && chart != "" {
		content = append(content, &sdk.TextContent{Text: chart})
	}
	return &sdk.CallToolResult{Content: content}
}
