package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/exacode/docsink/domain"
	"github.com/spf13/cobra"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func printEvents(cmd *cobra.Command, events []domain.LogEvent) {
	for _, event := range events {
		cmd.Println(formatEvent(event))
	}
}

// formatEvent renders an event on one line, followed by its error chain if any.
func formatEvent(event domain.LogEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%s] %s - %s",
		event.Timestamp.UTC().Format(timestampLayout), event.Level, event.ThreadName, event.LoggerName, event.Message)

	if len(event.ContextTags) > 0 {
		tags := make([]string, 0, len(event.ContextTags))
		for _, key := range slices.Sorted(maps.Keys(event.ContextTags)) {
			tags = append(tags, key+"="+event.ContextTags[key])
		}
		fmt.Fprintf(&b, " {%s}", strings.Join(tags, ", "))
	}

	prefix := ""
	for info := event.Error; info != nil; info = info.Cause {
		fmt.Fprintf(&b, "\n%s%s: %s", prefix, info.ClassName, info.Message)
		for _, frame := range info.Frames {
			fmt.Fprintf(&b, "\n\tat %s", formatFrame(frame))
		}
		prefix = "Caused by: "
	}
	return b.String()
}

func formatFrame(frame domain.StackFrame) string {
	location := "Unknown Source"
	switch {
	case frame.Native:
		location = "Native Method"
	case frame.FileName != "" && frame.LineNumber >= 0:
		location = fmt.Sprintf("%s:%d", frame.FileName, frame.LineNumber)
	case frame.FileName != "":
		location = frame.FileName
	}
	return fmt.Sprintf("%s.%s(%s)", frame.DeclaringClass, frame.MethodName, location)
}
