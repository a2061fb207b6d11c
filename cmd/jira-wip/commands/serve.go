package commands

import (
	"jira-wip/internal/mcp"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := newProvider()
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		server := mcp.NewServer(provider, mcp.Options{
			Limits:              cfg.WIPLimits(),
			Location:            loc,
			DefaultProject:      cfg.ProjectKey,
			DefaultJQL:          cfg.JQL,
			DefaultSource:       activeSource(),
			EnableMermaidCharts: cfg.EnableMermaidCharts,
			Version:             Version,
		})
		return server.Serve(cmd.Context())
	},
}
