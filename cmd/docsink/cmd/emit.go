package cmd

import (
	"strings"

	"github.com/exacode/docsink"
	"github.com/exacode/docsink/domain"
	"github.com/exacode/docsink/store"
	"github.com/spf13/cobra"
)

var emitCmd = &cobra.Command{
	Use:   "emit LEVEL MESSAGE...",
	Short: "Store one event",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEmit,
}

func init() {
	emitCmd.Flags().String("thread", "main", "thread name of the event")
	emitCmd.Flags().String("logger", "docsink", "logger name of the event")
	emitCmd.Flags().StringToString("tag", nil, "context tag, repeatable (key=value)")
	rootCmd.AddCommand(emitCmd)
}

// storeTarget appends straight to the store and keeps the first error.
type storeTarget struct {
	logStore *store.LogStore
	err      error
}

func (s *storeTarget) Append(event domain.LogEvent) {
	if err := s.logStore.Append(event); err != nil && s.err == nil {
		s.err = err
	}
}

func runEmit(cmd *cobra.Command, args []string) error {
	thread, _ := cmd.Flags().GetString("thread")
	name, _ := cmd.Flags().GetString("logger")
	tags, _ := cmd.Flags().GetStringToString("tag")

	appender, err := startAppender(cmd, true)
	if err != nil {
		return err
	}
	defer appender.Stop()

	cfg := appender.Config()
	target := &storeTarget{logStore: appender.Store()}
	logger := docsink.NewLogger(target, name).WithThread(thread)
	if cfg.IncludeCallerData {
		logger = logger.WithCallerDepth(cfg.CallerDepth)
	}
	if len(tags) > 0 {
		logger = logger.WithTags(tags)
	}
	logger.Log(domain.ParseLevel(args[0]), nil, "%s", strings.Join(args[1:], " "))
	return target.err
}
