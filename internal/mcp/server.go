package mcp

import (
	"context"
	"time"

	"jira-wip/internal/eventlog"
	"jira-wip/internal/stats"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Options configures the analysis the server performs.
type Options struct {
	Limits   stats.WIPLimits
	Location *time.Location

	// DefaultProject is used when a tool call names no project.
	DefaultProject string
	// DefaultJQL overrides the project scope of DefaultProject.
	DefaultJQL string
	// DefaultSource names the cache partition of the default scope. Empty means
	// DefaultProject, or "default" without one.
	DefaultSource string

	EnableMermaidCharts bool
	Version             string
}

// Server holds the state for the MCP server.
type Server struct {
	provider *eventlog.LogProvider
	opts     Options
	now      func() time.Time
}

// NewServer creates a new MCP server backed by the given event log provider.
func NewServer(provider *eventlog.LogProvider, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{provider: provider, opts: opts, now: time.Now}
}

// Build returns the SDK server with every tool registered.
func (s *Server) Build() *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: "jira-wip", Version: s.opts.Version}, nil)
	s.registerTools(server)
	return server
}

// Serve runs the server over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", s.opts.Version).Strs("monitored", s.opts.Limits.Statuses()).Msg("Starting MCP server on stdio")
	return s.Build().Run(ctx, &sdk.StdioTransport{})
}
