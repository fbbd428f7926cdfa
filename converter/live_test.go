package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"testing"

	"github.com/exacode/docsink/domain"
)

// traced attaches a fixed stack to the error it wraps.
type traced struct {
	err    error
	frames []domain.StackFrame
}

func (e *traced) Error() string                    { return e.err.Error() }
func (e *traced) Unwrap() error                    { return e.err }
func (e *traced) StackFrames() []domain.StackFrame { return e.frames }

func TestNewErrorInfo(t *testing.T) {
	t.Run("should return nil for a nil error", func(t *testing.T) {
		if got := NewErrorInfo(nil); got != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", got)
		}
	})

	t.Run("should follow wrapped errors", func(t *testing.T) {
		root := &fs.PathError{Op: "open", Path: "foo.db", Err: fs.ErrNotExist}
		err := fmt.Errorf("persistence unavailable: %w", fmt.Errorf("cannot open database: %w", root))

		info := NewErrorInfo(err)
		if info.Depth() != 4 {
			t.Fatalf("\nwanted:\n4\ngot:\n%d", info.Depth())
		}
		if info.ClassName != "*fmt.wrapError" {
			t.Fatalf("\nwanted:\n*fmt.wrapError\ngot:\n%s", info.ClassName)
		}
		if info.Cause.Cause.ClassName != "*fs.PathError" || info.Cause.Cause.Message != root.Error() {
			t.Fatalf("\nwanted:\n*fs.PathError %q\ngot:\n%s %q", root.Error(), info.Cause.Cause.ClassName, info.Cause.Cause.Message)
		}
	})

	t.Run("should fold stack wrappers and count common frames", func(t *testing.T) {
		tail := []domain.StackFrame{frame("main", 1), frame("goexit", 2)}
		root := &traced{err: errors.New("foo.db"), frames: append([]domain.StackFrame{frame("openFile", 3)}, tail...)}
		outer := &traced{
			err:    fmt.Errorf("cannot open database: %w", root),
			frames: append([]domain.StackFrame{frame("openDatabase", 4)}, tail...),
		}

		info := NewErrorInfo(outer)
		if info.Depth() != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", info.Depth())
		}
		if info.ClassName != "*fmt.wrapError" || len(info.Frames) != 3 {
			t.Fatalf("\nwanted:\n*fmt.wrapError with 3 frames\ngot:\n%s with %d", info.ClassName, len(info.Frames))
		}
		if info.Cause.ClassName != "*errors.errorString" || info.Cause.CommonFrames != 2 {
			t.Fatalf("\nwanted:\n*errors.errorString sharing 2 frames\ngot:\n%s sharing %d", info.Cause.ClassName, info.Cause.CommonFrames)
		}
		if got := info.Cause.UniqueFrames(); len(got) != 1 || got[0].MethodName != "openFile" {
			t.Fatalf("\nwanted:\n[openFile]\ngot:\n%v", got)
		}
	})

	t.Run("should record joined errors as suppressed", func(t *testing.T) {
		first, second, third := errors.New("first"), errors.New("second"), errors.New("third")

		info := NewErrorInfo(errors.Join(first, second, third))
		if info.Cause == nil || info.Cause.Message != "first" {
			t.Fatalf("\nwanted:\nfirst as cause\ngot:\n%v", info.Cause)
		}
		if len(info.Suppressed) != 2 || info.Suppressed[0].Message != "second" || info.Suppressed[1].Message != "third" {
			t.Fatalf("\nwanted:\n[second third]\ngot:\n%v", info.Suppressed)
		}
	})

	t.Run("should stop at the depth limit", func(t *testing.T) {
		err := errors.New("root")
		for i := 0; i < DefaultMaxDepth*2; i++ {
			err = fmt.Errorf("level %d: %w", i, err)
		}

		info := NewErrorInfo(err)
		if info.Depth() != DefaultMaxDepth {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", DefaultMaxDepth, info.Depth())
		}
		if _, err := NewErrorCodec().Encode(info); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
	})
}

type splitter struct{}

//go:noinline
func (*splitter) pointer() []uintptr {
	pcs := make([]uintptr, 1)
	runtime.Callers(1, pcs)
	return pcs
}

func TestSplitFunction(t *testing.T) {
	tests := []struct {
		function, class, method string
	}{
		{"main.main", "main", "main"},
		{"github.com/exacode/docsink.(*Appender).Append", "github.com/exacode/docsink.Appender", "Append"},
		{"github.com/exacode/docsink/store.LogStore.Count", "github.com/exacode/docsink/store.LogStore", "Count"},
		{"github.com/exacode/docsink/store.New.func1", "github.com/exacode/docsink/store", "New.func1"},
		{"github.com/exacode/docsink.(*Appender).Start.func2", "github.com/exacode/docsink.Appender", "Start.func2"},
		{"runtime.goexit", "runtime", "goexit"},
		{"weird", "", "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			class, method := SplitFunction(tt.function)
			if class != tt.class || method != tt.method {
				t.Fatalf("\nwanted:\n%s %s\ngot:\n%s %s", tt.class, tt.method, class, method)
			}
		})
	}
}

func TestFramesFromPCs(t *testing.T) {
	t.Run("should resolve the calling method", func(t *testing.T) {
		frames := FramesFromPCs((&splitter{}).pointer())
		if len(frames) != 1 {
			t.Fatalf("\nwanted:\n1 frame\ngot:\n%d", len(frames))
		}
		want := domain.StackFrame{
			DeclaringClass: "github.com/exacode/docsink/converter.splitter",
			MethodName:     "pointer",
			FileName:       "live_test.go",
			LineNumber:     frames[0].LineNumber,
		}
		if frames[0] != want || want.LineNumber <= 0 {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, frames[0])
		}
	})

	t.Run("should return nil without program counters", func(t *testing.T) {
		if got := FramesFromPCs(nil); got != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", got)
		}
	})

	t.Run("should mark unknown lines", func(t *testing.T) {
		got := FrameFromRuntime(runtime.Frame{Function: "main.main"})
		if got.LineNumber != domain.UnknownLine || got.FileName != "" {
			t.Fatalf("\nwanted:\nunknown line and file\ngot:\n%+v", got)
		}
	})
}
