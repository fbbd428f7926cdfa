package docsink

import (
	"runtime"

	"github.com/exacode/docsink/converter"
	"github.com/exacode/docsink/domain"
)

const maxStackDepth = 64

// stackError records the call stack at which an error was wrapped.
type stackError struct {
	err error
	pcs []uintptr
}

// WithStack annotates err with the stack of the caller. The message is unchanged, so the
// stored error chain shows err itself with these frames. WithStack(nil) returns nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs)
	return &stackError{err: err, pcs: pcs[:n]}
}

func (e *stackError) Error() string {
	return e.err.Error()
}

func (e *stackError) Unwrap() error {
	return e.err
}

// StackFrames implements converter.StackTracer.
func (e *stackError) StackFrames() []domain.StackFrame {
	return converter.FramesFromPCs(e.pcs)
}

var _ converter.StackTracer = (*stackError)(nil)
