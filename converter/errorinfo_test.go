package converter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

func frame(method string, line int) domain.StackFrame {
	return domain.StackFrame{DeclaringClass: "github.com/exacode/docsink/converter", MethodName: method, FileName: "errorinfo_test.go", LineNumber: line}
}

// threeLevelChain mirrors a file error wrapped by a database error wrapped by a
// persistence error, each sharing the tail of its enclosing trace.
func threeLevelChain() *domain.ErrorInfo {
	tail := []domain.StackFrame{frame("TestMain", 10), frame("tRunner", 20), frame("goexit", 30)}

	outerFrames := append([]domain.StackFrame{frame("persist", 40)}, tail...)
	middleFrames := append([]domain.StackFrame{frame("openDatabase", 50), frame("persist", 41)}, tail...)
	rootFrames := append([]domain.StackFrame{frame("innerOpenFile", 60), frame("openFile", 61), frame("openDatabase", 51)}, tail...)

	root := &domain.ErrorInfo{ClassName: "*fs.PathError", Message: "foo.db", Frames: rootFrames}
	middle := &domain.ErrorInfo{ClassName: "*db.Error", Message: "cannot open database: foo.db", Frames: middleFrames, Cause: root}
	outer := &domain.ErrorInfo{ClassName: "*fmt.wrapError", Message: "persistence unavailable", Frames: outerFrames, Cause: middle}

	middle.CommonFrames = CommonFrames(outerFrames, middleFrames)
	root.CommonFrames = CommonFrames(middleFrames, rootFrames)
	return outer
}

func TestErrorCodec(t *testing.T) {
	codec := NewErrorCodec()

	t.Run("should round trip a three level chain without common frames", func(t *testing.T) {
		chain := threeLevelChain()

		doc, err := codec.Encode(chain)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		nested := 0
		for d := doc; d != nil; nested++ {
			v, ok := d.Get(ErrorCauseField)
			if !ok {
				break
			}
			d, _ = v.AsMap()
		}
		if nested+1 != 3 {
			t.Fatalf("\nwanted:\n3 nested documents\ngot:\n%d", nested+1)
		}

		got, err := codec.Decode(doc)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Depth() != 3 {
			t.Fatalf("\nwanted:\n3\ngot:\n%d", got.Depth())
		}

		wantLens := []int{4, 2, 3}
		for i, want, have := 0, chain, got; want != nil; i, want, have = i+1, want.Cause, have.Cause {
			if have.ClassName != want.ClassName || have.Message != want.Message {
				t.Fatalf("\nwanted:\n%s %q\ngot:\n%s %q", want.ClassName, want.Message, have.ClassName, have.Message)
			}
			if len(have.Frames) != wantLens[i] {
				t.Fatalf("\nwanted:\n%d frames at level %d\ngot:\n%d", wantLens[i], i, len(have.Frames))
			}
			if have.CommonFrames != 0 {
				t.Fatalf("\nwanted:\n0 common frames\ngot:\n%d", have.CommonFrames)
			}
			if have.Suppressed == nil || len(have.Suppressed) != 0 {
				t.Fatalf("\nwanted:\nempty suppressed\ngot:\n%v", have.Suppressed)
			}
		}
		if got.Cause.Cause.Cause != nil {
			t.Fatalf("\nwanted:\nterminal root cause\ngot:\n%v", got.Cause.Cause.Cause)
		}
	})

	t.Run("should write a missing message as null and read it back empty", func(t *testing.T) {
		doc, err := codec.Encode(&domain.ErrorInfo{ClassName: "*errors.errorString"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		msg, _ := doc.Get(ErrorMessageField)
		if !msg.IsNull() {
			t.Fatalf("\nwanted:\nnull\ngot:\n%v", msg.Any())
		}

		got, err := codec.Decode(doc)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Message != "" || len(got.Frames) != 0 {
			t.Fatalf("\nwanted:\nempty message and no frames\ngot:\n%+v", got)
		}
	})

	t.Run("should clamp common frames to the trace length", func(t *testing.T) {
		info := &domain.ErrorInfo{ClassName: "x", Frames: []domain.StackFrame{frame("a", 1)}, CommonFrames: 5}
		doc, err := codec.Encode(info)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		trace, _ := doc.Get(ErrorStackTraceField)
		if list, _ := trace.AsList(); len(list) != 0 {
			t.Fatalf("\nwanted:\n0 frames\ngot:\n%d", len(list))
		}
	})

	t.Run("should refuse chains deeper than the limit", func(t *testing.T) {
		limited := ErrorCodec{MaxDepth: 2}
		_, err := limited.Encode(threeLevelChain())
		if !errors.Is(err, domain.ErrChainTooDeep) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrChainTooDeep, err)
		}

		doc, _ := codec.Encode(threeLevelChain())
		_, err = limited.Decode(doc)
		var fault *domain.DecodeFault
		if !errors.As(err, &fault) || fault.Field != "cause.cause" {
			t.Fatalf("\nwanted:\nfault on cause.cause\ngot:\n%v", err)
		}
	})

	t.Run("should fail on a cause without class", func(t *testing.T) {
		doc, _ := codec.Encode(threeLevelChain())
		cause, _ := doc.Get(ErrorCauseField)
		causeDoc, _ := cause.AsMap()
		causeDoc.Delete(ErrorClassField)

		_, err := codec.Decode(doc)
		if !errors.Is(err, domain.ErrDecodeFault) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrDecodeFault, err)
		}
	})

	t.Run("should fail when the stack trace is not a list", func(t *testing.T) {
		doc := document.NewMap().Set(ErrorClassField, document.String("x")).Set(ErrorStackTraceField, document.Int(1))
		_, err := codec.Decode(doc)
		if !errors.Is(err, domain.ErrDecodeFault) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrDecodeFault, err)
		}
	})
}

func TestCommonFrames(t *testing.T) {
	a, b, c, d := frame("a", 1), frame("b", 2), frame("c", 3), frame("d", 4)

	tests := []struct {
		name         string
		outer, inner []domain.StackFrame
		want         int
	}{
		{"no frames", nil, nil, 0},
		{"disjoint", []domain.StackFrame{a, b}, []domain.StackFrame{c, d}, 0},
		{"shared tail", []domain.StackFrame{a, c, d}, []domain.StackFrame{b, c, d}, 2},
		{"inner shorter", []domain.StackFrame{a, b, c, d}, []domain.StackFrame{d}, 1},
		{"identical", []domain.StackFrame{a, b}, []domain.StackFrame{a, b}, 2},
		{"shared head only", []domain.StackFrame{a, b}, []domain.StackFrame{a, c}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommonFrames(tt.outer, tt.inner)
			if got != tt.want {
				t.Fatalf("\nwanted:\n%d\ngot:\n%d", tt.want, got)
			}
		})
	}
}

func ExampleCommonFrames() {
	shared := []domain.StackFrame{{MethodName: "main"}}
	outer := append([]domain.StackFrame{{MethodName: "handle"}}, shared...)
	inner := append([]domain.StackFrame{{MethodName: "read"}, {MethodName: "open"}}, shared...)
	fmt.Println(CommonFrames(outer, inner))
	// Output: 1
}
