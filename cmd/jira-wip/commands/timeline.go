package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline ISSUE-KEY",
	Short: "Show the reconstructed stage timeline of one issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToUpper(strings.TrimSpace(args[0]))

		res, err := runAnalysis(cmd.Context(), inputFile)
		if err != nil {
			return err
		}

		intervals, ok := res.Timeline(key)
		if !ok {
			return fmt.Errorf("issue %s not found", key)
		}
		return printer().Timeline(intervals)
	},
}

func init() {
	timelineCmd.Flags().StringVarP(&inputFile, "input", "i", "", "read intervals from a previously exported CSV instead of the event log")
}
