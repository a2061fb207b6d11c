package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthorized is returned for 401/403 responses.
	ErrUnauthorized = errors.New("Jira authentication failed (401/403)")
	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("Jira rate limit exceeded (429)")
)

// cloudClient talks to Jira on every call. Caching belongs to the event log, which
// decides when a scope must be re-fetched.
type cloudClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time
	throttleMu  sync.Mutex
}

// NewCloudClient returns a client for the Jira Cloud REST v3 search API.
func NewCloudClient(cfg Config) Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &cloudClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (c *cloudClient) throttle(ctx context.Context) error {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *cloudClient) authenticateRequest(req *http.Request) {
	if c.cfg.Email != "" {
		req.SetBasicAuth(c.cfg.Email, c.cfg.Token)
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
}

func (c *cloudClient) SearchIssuesWithHistory(ctx context.Context, jql string, startAt int, maxResults int) (*SearchResponse, error) {
	if maxResults <= 0 {
		maxResults = c.cfg.PageSize
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("fields", "issuetype,status,resolution,resolutiondate,created,updated")
	params.Set("expand", "changelog")

	searchURL := fmt.Sprintf("%s/rest/api/3/search?%s", c.cfg.BaseURL, params.Encode())
	log.Debug().Str("url", searchURL).Str("jql", jql).Int("startAt", startAt).Msg("Jira search details")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Jira request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: check JIRA_EMAIL and JIRA_API_TOKEN", ErrUnauthorized)
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				return nil, fmt.Errorf("%w: retry after %s seconds", ErrRateLimited, retryAfter)
			}
			return nil, ErrRateLimited
		case http.StatusBadRequest:
			return nil, fmt.Errorf("Jira rejected the query (400): %q", jql)
		default:
			return nil, fmt.Errorf("Jira API returned status %d. Please check Jira availability.", resp.StatusCode)
		}
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Jira response: %w", err)
	}

	return &result, nil
}
