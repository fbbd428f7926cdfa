package cmd

import (
	"github.com/exacode/docsink/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the event count and capped size of the collection",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	appender, err := startAppender(cmd, false)
	if err != nil {
		return err
	}
	defer appender.Stop()

	logStore := appender.Store()
	count, err := logStore.Count()
	if err != nil {
		return err
	}
	size, err := logStore.CappedSize()
	if err != nil {
		return err
	}

	cmd.Printf("Collection:   %s\n", logStore.Collection())
	cmd.Printf("Events:       %d\n", count)
	if size == store.NotCapped {
		cmd.Printf("Capped size:  not capped\n")
	} else {
		cmd.Printf("Capped size:  %d\n", size)
	}
	return nil
}
