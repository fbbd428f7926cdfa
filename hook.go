package docsink

import (
	"fmt"

	"github.com/exacode/docsink/converter"
	"github.com/exacode/docsink/domain"
	"github.com/sirupsen/logrus"
)

// Entry fields the hook reads the thread and logger names from. They are not copied into
// the event tags.
const (
	ThreadKey = "thread"
	LoggerKey = "logger"
)

// Hook forwards logrus entries as log events.
// Do not add it to the status logger of the Appender it forwards to.
type Hook struct {
	target     domain.Appender
	levels     []logrus.Level
	loggerName string
}

var _ logrus.Hook = (*Hook)(nil)

// HookOption configures a Hook.
type HookOption func(*Hook)

// WithHookLevels restricts the entries forwarded to the given levels.
func WithHookLevels(levels ...logrus.Level) HookOption {
	return func(h *Hook) {
		h.levels = levels
	}
}

// WithLoggerName sets the logger name of entries without a logger field.
func WithLoggerName(name string) HookOption {
	return func(h *Hook) {
		h.loggerName = name
	}
}

// NewHook returns a hook forwarding every level to target.
func NewHook(target domain.Appender, options ...HookOption) *Hook {
	h := &Hook{
		target:     target,
		levels:     logrus.AllLevels,
		loggerName: "logrus",
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook.
func (h *Hook) Fire(entry *logrus.Entry) error {
	h.target.Append(EventFromEntry(entry, h.loggerName))
	return nil
}

// EventFromEntry converts a logrus entry. The error stored under logrus.ErrorKey becomes
// the error chain and the remaining fields become tags.
func EventFromEntry(entry *logrus.Entry, loggerName string) domain.LogEvent {
	event := domain.LogEvent{
		Timestamp:  entry.Time,
		Level:      LevelFromLogrus(entry.Level),
		LoggerName: loggerName,
		Message:    entry.Message,
	}

	for key, value := range entry.Data {
		switch key {
		case ThreadKey:
			event.ThreadName = fmt.Sprint(value)
		case LoggerKey:
			event.LoggerName = fmt.Sprint(value)
		case logrus.ErrorKey:
			if err, ok := value.(error); ok {
				event.Error = converter.NewErrorInfo(err)
				continue
			}
			fallthrough
		default:
			if event.ContextTags == nil {
				event.ContextTags = make(map[string]string)
			}
			event.ContextTags[key] = fmt.Sprint(value)
		}
	}

	if entry.HasCaller() {
		event.CallerFrames = []domain.StackFrame{converter.FrameFromRuntime(*entry.Caller)}
	}
	return event
}

// LevelFromLogrus maps a logrus level. Panic and fatal entries are stored as errors.
func LevelFromLogrus(level logrus.Level) domain.Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return domain.LevelError
	case logrus.WarnLevel:
		return domain.LevelWarn
	case logrus.InfoLevel:
		return domain.LevelInfo
	case logrus.DebugLevel:
		return domain.LevelDebug
	default:
		return domain.LevelTrace
	}
}
