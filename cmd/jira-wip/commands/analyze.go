package commands

import (
	"fmt"
	"io"
	"os"

	"jira-wip/internal/report"

	"github.com/spf13/cobra"
)

var (
	inputFile    string
	outputFile   string
	outputFormat string
	perItem      bool
	showSpans    bool
)

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "analyze a previously exported interval CSV instead of the event log")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write CSV to this file (default stdout)")
	cmd.Flags().StringVar(&outputFormat, "format", "table", "output format: table or csv")
}

func checkFormat() error {
	if outputFormat != "table" && outputFormat != "csv" {
		return fmt.Errorf("unsupported format %q (table or csv)", outputFormat)
	}
	return nil
}

func printer() *report.Printer {
	return report.NewPrinter(os.Stdout, true)
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Time spent per workflow status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		res, err := runAnalysis(cmd.Context(), inputFile)
		if err != nil {
			return err
		}

		if outputFormat == "csv" {
			return report.WriteWithFile(outputFile, func(w io.Writer) error {
				if perItem {
					return report.WriteItemStagesCSV(w, res.PerItem)
				}
				return report.WriteStagesCSV(w, res.Stages)
			}, "Stage statistics written")
		}
		if perItem {
			return printer().ItemStages(res.PerItem)
		}
		return printer().Stages(res.Stages, res.LongestStage, res.MaxTaskAge)
	},
}

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Continuous WIP-limit violations per monitored status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		res, err := runAnalysis(cmd.Context(), inputFile)
		if err != nil {
			return err
		}

		if outputFormat == "csv" {
			return report.WriteWithFile(outputFile, func(w io.Writer) error {
				if showSpans {
					return report.WriteSpansCSV(w, res.Spans)
				}
				return report.WriteContinuousCSV(w, res.Summaries)
			}, "Violations written")
		}

		p := printer()
		if err := p.Violations(res.Summaries); err != nil {
			return err
		}
		if showSpans && len(res.Spans) > 0 {
			return p.Spans(res.Spans)
		}
		return nil
	},
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Days with WIP-limit violations, per calendar month",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		res, err := runAnalysis(cmd.Context(), inputFile)
		if err != nil {
			return err
		}

		if outputFormat == "csv" {
			return report.WriteWithFile(outputFile, func(w io.Writer) error {
				return report.WriteMonthlyCSV(w, res.Monthly)
			}, "Monthly violations written")
		}
		return printer().Monthly(res.Monthly)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{stagesCmd, violationsCmd, monthlyCmd} {
		addAnalysisFlags(cmd)
	}
	stagesCmd.Flags().BoolVar(&perItem, "per-item", false, "break statistics down per issue")
	violationsCmd.Flags().BoolVar(&showSpans, "spans", false, "list every violation span")
}
