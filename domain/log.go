package domain

import (
	"strings"
	"time"
)

// Level is the severity of a log event.
type Level int

// Severity levels, lowest first.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// DefaultLevel is what unknown level names decode to.
const DefaultLevel = LevelDebug

// String returns the canonical name of the level as stored in documents.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return DefaultLevel.String()
	}
}

// ParseLevel maps a level name to a Level, case-insensitively.
// Unknown names map to DefaultLevel.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return DefaultLevel
	}
}

// Appender is anything that accepts log events one at a time.
type Appender interface {
	Append(event LogEvent)
}

// LogEvent represents a single structured log event as produced by the host logger.
type LogEvent struct {
	Timestamp    time.Time         // Instant of the logging call, millisecond precision once stored.
	Level        Level             // Severity of the event.
	ThreadName   string            // Name of the thread (or goroutine label) that logged the event.
	LoggerName   string            // Originating component.
	Message      string            // Fully formatted message.
	ContextTags  map[string]string // Correlation key/values passed with the event.
	CallerFrames []StackFrame      // Call-site frames, outermost first. Only set when caller data is captured.
	Arguments    []any             // Unformatted arguments of the logging call.
	Error        *ErrorInfo        // Root of the error chain logged with the event.
}

// StackFrame is a single call-site frame.
type StackFrame struct {
	DeclaringClass string // Package qualified receiver type, or package path for plain functions.
	MethodName     string
	FileName       string // Empty when unknown.
	LineNumber     int    // Negative when unknown.
	Native         bool
}

// UnknownLine is the line number sentinel for frames without line information.
const UnknownLine = -1

// ErrorInfo is one node of an error chain.
// Frames shared with the enclosing error's trace are counted by CommonFrames and are not
// written when the chain is stored; a decoded chain always has CommonFrames == 0.
type ErrorInfo struct {
	ClassName    string
	Message      string
	Frames       []StackFrame
	CommonFrames int
	Cause        *ErrorInfo
	Suppressed   []*ErrorInfo
}

// Depth returns the number of nodes in the chain starting at e.
func (e *ErrorInfo) Depth() int {
	depth := 0
	for node := e; node != nil; node = node.Cause {
		depth++
	}
	return depth
}

// UniqueFrames returns the frames of e that are not shared with the enclosing trace.
func (e *ErrorInfo) UniqueFrames() []StackFrame {
	common := e.CommonFrames
	if common < 0 {
		common = 0
	}
	if common > len(e.Frames) {
		common = len(e.Frames)
	}
	return e.Frames[:len(e.Frames)-common]
}
