package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/exacode/docsink/domain"
)

// StackTracer is implemented by errors that carry the call stack at which they were created.
type StackTracer interface {
	StackFrames() []domain.StackFrame
}

// NewErrorInfo builds an error chain from a live error by following Unwrap.
// Errors that only add a stack trace to the error they wrap are folded into that error.
// For errors joined with errors.Join the first error becomes the cause and the rest are
// recorded as suppressed.
func NewErrorInfo(err error) *domain.ErrorInfo {
	return newErrorInfo(err, nil, 1)
}

func newErrorInfo(err error, parentFrames []domain.StackFrame, depth int) *domain.ErrorInfo {
	if err == nil {
		return nil
	}

	var frames []domain.StackFrame
	for {
		tracer, ok := err.(StackTracer)
		if !ok {
			break
		}
		frames = tracer.StackFrames()
		inner := errors.Unwrap(err)
		if inner == nil || inner.Error() != err.Error() {
			break
		}
		err = inner
	}

	info := &domain.ErrorInfo{
		ClassName:  fmt.Sprintf("%T", err),
		Message:    err.Error(),
		Frames:     frames,
		Suppressed: []*domain.ErrorInfo{},
	}
	if parentFrames != nil {
		info.CommonFrames = CommonFrames(parentFrames, frames)
	}
	if depth >= DefaultMaxDepth {
		return info
	}

	switch wrapped := err.(type) {
	case interface{ Unwrap() error }:
		info.Cause = newErrorInfo(wrapped.Unwrap(), frames, depth+1)
	case interface{ Unwrap() []error }:
		errs := wrapped.Unwrap()
		if len(errs) > 0 {
			info.Cause = newErrorInfo(errs[0], frames, depth+1)
		}
		for _, suppressed := range errs[min(1, len(errs)):] {
			info.Suppressed = append(info.Suppressed, newErrorInfo(suppressed, frames, depth+1))
		}
	}
	return info
}

// FramesFromPCs resolves program counters, as returned by runtime.Callers, to frames.
func FramesFromPCs(pcs []uintptr) []domain.StackFrame {
	if len(pcs) == 0 {
		return nil
	}
	frames := make([]domain.StackFrame, 0, len(pcs))
	iter := runtime.CallersFrames(pcs)
	for {
		frame, more := iter.Next()
		frames = append(frames, FrameFromRuntime(frame))
		if !more {
			break
		}
	}
	return frames
}

// FrameFromRuntime converts a runtime frame. The receiver type, or the package path for
// plain functions, becomes the declaring class.
func FrameFromRuntime(frame runtime.Frame) domain.StackFrame {
	class, method := SplitFunction(frame.Function)
	sf := domain.StackFrame{
		DeclaringClass: class,
		MethodName:     method,
		LineNumber:     frame.Line,
	}
	if frame.File != "" {
		sf.FileName = filepath.Base(frame.File)
	}
	if frame.Line <= 0 {
		sf.LineNumber = domain.UnknownLine
	}
	return sf
}

// SplitFunction splits a fully qualified Go function name into its declaring class and
// method, e.g. "github.com/x/y.(*T).M" becomes ("github.com/x/y.T", "M") and
// "github.com/x/y.F.func1" becomes ("github.com/x/y", "F.func1").
func SplitFunction(function string) (class, method string) {
	slash := strings.LastIndex(function, "/")
	dot := strings.Index(function[slash+1:], ".")
	if dot < 0 {
		return "", function
	}
	dot += slash + 1
	pkg, symbol := function[:dot], function[dot+1:]

	sep := strings.Index(symbol, ".")
	if sep < 0 || (isClosure(symbol[sep+1:]) && !strings.HasPrefix(symbol, "(")) {
		return pkg, symbol
	}
	receiver := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(symbol[:sep], "("), "*"), ")")
	return pkg + "." + receiver, symbol[sep+1:]
}

func isClosure(name string) bool {
	rest, ok := strings.CutPrefix(name, "func")
	if !ok || rest == "" {
		return false
	}
	first := rest[0]
	return first >= '0' && first <= '9'
}
