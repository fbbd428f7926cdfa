package docsink

import (
	"fmt"
	"maps"
	"runtime"
	"time"

	"github.com/exacode/docsink/converter"
	"github.com/exacode/docsink/domain"
)

// Logger builds log events and hands them to an appender.
// A Logger is immutable; WithThread, WithTags and WithCallerDepth return modified copies.
type Logger struct {
	target      domain.Appender
	name        string
	thread      string
	tags        map[string]string
	callerDepth int // zero disables caller data
	now         func() time.Time
}

// NewLogger returns a logger named name that appends to target without caller data.
func NewLogger(target domain.Appender, name string) *Logger {
	return &Logger{
		target: target,
		name:   name,
		now:    time.Now,
	}
}

// Logger returns a logger appending to a, capturing caller data as configured.
func (a *Appender) Logger(name string) *Logger {
	l := NewLogger(a, name)
	l.now = a.now
	if a.cfg.IncludeCallerData {
		l.callerDepth = a.cfg.CallerDepth
	}
	return l
}

// WithThread returns a copy of l that reports thread as the thread of its events.
func (l *Logger) WithThread(thread string) *Logger {
	clone := *l
	clone.thread = thread
	return &clone
}

// WithTags returns a copy of l carrying tags in addition to its own. Later tags win.
func (l *Logger) WithTags(tags map[string]string) *Logger {
	clone := *l
	clone.tags = make(map[string]string, len(l.tags)+len(tags))
	maps.Copy(clone.tags, l.tags)
	maps.Copy(clone.tags, tags)
	return &clone
}

// WithCallerDepth returns a copy of l capturing up to depth call-site frames per event.
func (l *Logger) WithCallerDepth(depth int) *Logger {
	clone := *l
	clone.callerDepth = max(depth, 0)
	return &clone
}

func (l *Logger) Trace(format string, args ...any) { l.log(domain.LevelTrace, nil, format, args) }
func (l *Logger) Debug(format string, args ...any) { l.log(domain.LevelDebug, nil, format, args) }
func (l *Logger) Info(format string, args ...any)  { l.log(domain.LevelInfo, nil, format, args) }
func (l *Logger) Warn(format string, args ...any)  { l.log(domain.LevelWarn, nil, format, args) }
func (l *Logger) Error(format string, args ...any) { l.log(domain.LevelError, nil, format, args) }

// Log appends an event at level. err, when not nil, is stored as the error chain of the
// event.
func (l *Logger) Log(level domain.Level, err error, format string, args ...any) {
	l.log(level, err, format, args)
}

// log must be called directly by the exported methods so that the caller frames start at
// their caller.
func (l *Logger) log(level domain.Level, err error, format string, args []any) {
	event := domain.LogEvent{
		Timestamp:   l.now(),
		Level:       level,
		ThreadName:  l.thread,
		LoggerName:  l.name,
		Message:     fmt.Sprintf(format, args...),
		ContextTags: l.tags,
		Arguments:   args,
		Error:       converter.NewErrorInfo(err),
	}
	if l.callerDepth > 0 {
		pcs := make([]uintptr, l.callerDepth)
		n := runtime.Callers(3, pcs)
		event.CallerFrames = converter.FramesFromPCs(pcs[:n])
	}
	l.target.Append(event)
}
