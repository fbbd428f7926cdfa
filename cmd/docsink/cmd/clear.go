package cmd

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored event, keeping the collection options",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	appender, err := startAppender(cmd, false)
	if err != nil {
		return err
	}
	defer appender.Stop()

	logStore := appender.Store()
	if err := logStore.Clear(); err != nil {
		return err
	}
	cmd.Printf("Cleared %s\n", logStore.Collection())
	return nil
}
