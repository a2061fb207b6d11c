package commands

import (
	"fmt"

	"jira-wip/internal/eventlog"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local event log cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show what the cache holds for the active source",
	RunE: func(cmd *cobra.Command, args []string) error {
		source := activeSource()
		store := eventlog.NewEventStore()
		if err := store.Load(cfg.CacheDir, source); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if store.Count(source) == 0 {
			_, err := fmt.Fprintf(out, "no cached events for %s in %s\n", source, cfg.CacheDir)
			return err
		}

		written, _ := eventlog.CacheModTime(cfg.CacheDir, source)
		items := len(eventlog.BuildHistories(store.Events(source)))
		_, err := fmt.Fprintf(out, "source:      %s\nitems:       %d\nevents:      %d\nlatest:      %s\nwritten:     %s\nstale after: %s\n",
			source, items, store.Count(source),
			store.GetLatestTimestamp(source).UTC().Format("2006-01-02 15:04"),
			written.UTC().Format("2006-01-02 15:04"),
			cfg.CacheMaxAge)
		return err
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached event log of the active source",
	RunE: func(cmd *cobra.Command, args []string) error {
		source := activeSource()
		if err := eventlog.DeleteCache(cfg.CacheDir, source); err != nil {
			return err
		}
		log.Info().Str("source", source).Msg("Cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
}
