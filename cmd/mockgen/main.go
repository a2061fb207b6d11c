package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"jira-wip/cmd/mockgen/engine"

	"github.com/spf13/cobra"
)

func main() {
	var (
		scenario string
		outDir   string
		sourceID string
		count    int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "mockgen",
		Short: "Generate a synthetic Jira event log for offline analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Generating scenario '%s' (Count: %d) to %s...\n", scenario, count, outDir)

			events, err := engine.Generate(engine.GeneratorConfig{
				Scenario: scenario,
				Count:    count,
				Seed:     seed,
				Now:      time.Now(),
			})
			if err != nil {
				return err
			}
			if err := engine.Save(outDir, sourceID, events); err != nil {
				return fmt.Errorf("failed to save mock data: %w", err)
			}

			fmt.Printf("Done. Run: jira-wip violations --offline --source %s\n", sourceID)
			return nil
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "overloaded", "scenario to generate: "+strings.Join(engine.Scenarios(), ", "))
	cmd.Flags().StringVar(&outDir, "out", "./cache", "cache directory to write the event log to")
	cmd.Flags().StringVar(&sourceID, "source", "MOCK", "source ID (cache file name)")
	cmd.Flags().IntVar(&count, "count", 200, "number of issues to generate")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "random seed")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
