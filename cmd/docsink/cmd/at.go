package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var atCmd = &cobra.Command{
	Use:   "at",
	Short: "Show the events logged at an exact instant",
	Args:  cobra.NoArgs,
	RunE:  runAt,
}

func init() {
	atCmd.Flags().String("timestamp", "", "RFC 3339 time or Unix milliseconds")
	atCmd.Flags().Bool("reverse", false, "newest first")
	rootCmd.AddCommand(atCmd)
}

// parseTimestamp accepts Unix milliseconds or an RFC 3339 time.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing --timestamp")
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q : %w", value, err)
	}
	return ts, nil
}

func runAt(cmd *cobra.Command, args []string) error {
	value, _ := cmd.Flags().GetString("timestamp")
	reverse, _ := cmd.Flags().GetBool("reverse")
	ts, err := parseTimestamp(value)
	if err != nil {
		return err
	}

	appender, err := startAppender(cmd, false)
	if err != nil {
		return err
	}
	defer appender.Stop()

	events, err := appender.Store().FindByTimestamp(ts, !reverse)
	if err != nil {
		return err
	}
	printEvents(cmd, events)
	return nil
}
