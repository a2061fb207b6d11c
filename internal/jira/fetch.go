package jira

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ProgressFunc is called after every page with the number of issues received so far.
type ProgressFunc func(fetched, total int)

// FetchAll pages through a JQL search until Jira reports no more issues.
func FetchAll(ctx context.Context, client Client, jql string, pageSize int, progress ProgressFunc) ([]IssueDTO, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []IssueDTO
	startAt := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := client.SearchIssuesWithHistory(ctx, jql, startAt, pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetching issues at offset %d: %w", startAt, err)
		}

		all = append(all, resp.Issues...)
		if progress != nil {
			progress(len(all), resp.Total)
		}
		log.Debug().Int("fetched", len(all)).Int("total", resp.Total).Msg("Fetched page of issues")

		startAt += len(resp.Issues)
		if len(resp.Issues) == 0 || startAt >= resp.Total {
			break
		}
	}

	log.Info().Int("count", len(all)).Str("jql", jql).Msg("Fetched issues from Jira")
	return all, nil
}
