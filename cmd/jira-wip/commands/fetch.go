package commands

import (
	"fmt"
	"io"
	"time"

	"jira-wip/internal/report"
	"jira-wip/internal/stats"

	"github.com/spf13/cobra"
)

var (
	fetchOutput string
	fetchFormat string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch issue histories from Jira and export stage intervals",
	Long: `Fetches every issue matching the configured scope with its changelog, stores the event
log in the cache and writes one row per stage interval (CSV or Parquet).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchFormat != "csv" && fetchFormat != "parquet" {
			return fmt.Errorf("unsupported format %q (csv or parquet)", fetchFormat)
		}
		if fetchFormat == "parquet" && (fetchOutput == "" || fetchOutput == "-") {
			return fmt.Errorf("parquet output needs --output")
		}

		provider, err := hydrate(cmd.Context(), !offline)
		if err != nil {
			return err
		}

		timelines, err := stats.BuildTimelines(cmd.Context(), provider.Histories(activeSource()), time.Now())
		if err != nil {
			return err
		}
		intervals := stats.Flatten(timelines)

		return report.WriteWithFile(fetchOutput, func(w io.Writer) error {
			if fetchFormat == "parquet" {
				return report.WriteIntervalsParquet(w, intervals)
			}
			return report.WriteIntervalsCSV(w, intervals)
		}, fmt.Sprintf("%d intervals written", len(intervals)))
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "jira-intervals.csv", "output file (- for stdout)")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "csv", "output format: csv or parquet")
}
