package cmd

import (
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "List stored events in insertion order",
	Args:  cobra.NoArgs,
	RunE:  runFind,
}

func init() {
	findCmd.Flags().Int("offset", 0, "number of events to skip")
	findCmd.Flags().Int("limit", 0, "maximum number of events, 0 for all")
	findCmd.Flags().Bool("reverse", false, "newest first")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")
	reverse, _ := cmd.Flags().GetBool("reverse")

	appender, err := startAppender(cmd, false)
	if err != nil {
		return err
	}
	defer appender.Stop()

	logStore := appender.Store()
	if limit > 0 {
		events, err := logStore.FindPage(offset, limit, !reverse)
		if err != nil {
			return err
		}
		printEvents(cmd, events)
		return nil
	}

	events, err := logStore.FindOrdered(!reverse)
	if err != nil {
		return err
	}
	printEvents(cmd, events[min(max(offset, 0), len(events)):])
	return nil
}
