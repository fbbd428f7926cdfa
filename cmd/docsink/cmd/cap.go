package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var capCmd = &cobra.Command{
	Use:   "cap",
	Short: "Bound the collection to a size in bytes",
	Args:  cobra.NoArgs,
	RunE:  runCap,
}

func init() {
	capCmd.Flags().Int64("size", 0, "capped size in bytes")
	rootCmd.AddCommand(capCmd)
}

func runCap(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetInt64("size")
	if size <= 0 {
		return errors.New("--size must be positive")
	}

	appender, err := startAppender(cmd, false)
	if err != nil {
		return err
	}
	defer appender.Stop()

	logStore := appender.Store()
	if err := logStore.EnsureCapped(size); err != nil {
		return err
	}
	cmd.Printf("Capped %s at %d bytes\n", logStore.Collection(), size)
	return nil
}
