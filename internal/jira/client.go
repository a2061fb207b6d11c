package jira

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Client is the interface for interacting with Jira.
type Client interface {
	// SearchIssuesWithHistory runs a JQL search with the changelog expanded.
	SearchIssuesWithHistory(ctx context.Context, jql string, startAt int, maxResults int) (*SearchResponse, error)
}

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string `validate:"required,url"`

	// Jira Cloud basic auth (account e-mail + API token). When Email is empty the
	// token is sent as a bearer Personal Access Token instead.
	Email string `validate:"omitempty,email"`
	Token string `validate:"required"`

	// Performance Settings
	RequestDelay time.Duration `validate:"gte=0"`
	PageSize     int           `validate:"gte=1,lte=100"`
}

// DefaultPageSize is the largest page the Jira search API hands out.
const DefaultPageSize = 100

// Validate reports missing or malformed connection settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid Jira configuration: %w", err)
	}
	return nil
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewCloudClient(cfg)
}

// ProjectJQL is the default search scope used when no explicit JQL is configured.
func ProjectJQL(projectKey string) string {
	return fmt.Sprintf("project=%s", projectKey)
}
