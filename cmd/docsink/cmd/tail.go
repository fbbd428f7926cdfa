package cmd

import (
	"slices"

	"github.com/spf13/cobra"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the newest events, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runTail,
}

func init() {
	tailCmd.Flags().IntP("lines", "n", 10, "number of events to show")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	lines, _ := cmd.Flags().GetInt("lines")

	appender, err := startAppender(cmd, false)
	if err != nil {
		return err
	}
	defer appender.Stop()

	events, err := appender.Store().FindLimit(lines, false)
	if err != nil {
		return err
	}
	slices.Reverse(events)
	printEvents(cmd, events)
	return nil
}
