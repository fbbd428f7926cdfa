package converter

import (
	"fmt"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

// Error field names.
const (
	ErrorClassField      = "class"
	ErrorMessageField    = "message"
	ErrorStackTraceField = "stackTrace"
	ErrorCauseField      = "cause"
)

// DefaultMaxDepth bounds the length of error chains the ErrorCodec accepts.
const DefaultMaxDepth = 64

// ErrorCodec converts error chains to and from nested documents.
type ErrorCodec struct {
	frames FrameCodec
	// MaxDepth is the longest chain accepted; zero means DefaultMaxDepth.
	MaxDepth int
}

// NewErrorCodec returns an ErrorCodec with the default depth limit.
func NewErrorCodec() ErrorCodec {
	return ErrorCodec{MaxDepth: DefaultMaxDepth}
}

func (c ErrorCodec) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// Encode converts the chain rooted at info. Only the frames not shared with the
// enclosing trace are written.
func (c ErrorCodec) Encode(info *domain.ErrorInfo) (*document.Map, error) {
	return c.encode(info, 1)
}

func (c ErrorCodec) encode(info *domain.ErrorInfo, depth int) (*document.Map, error) {
	if depth > c.maxDepth() {
		return nil, fmt.Errorf("%w: more than %d causes", domain.ErrChainTooDeep, c.maxDepth())
	}

	message := document.Null()
	if info.Message != "" {
		message = document.String(info.Message)
	}
	doc := document.NewMap().
		Set(ErrorClassField, document.String(info.ClassName)).
		Set(ErrorMessageField, message).
		Set(ErrorStackTraceField, document.ListOf(c.frames.EncodeList(info.UniqueFrames())...))

	if info.Cause != nil {
		cause, err := c.encode(info.Cause, depth+1)
		if err != nil {
			return nil, err
		}
		doc.Set(ErrorCauseField, document.MapOf(cause))
	}
	return doc, nil
}

// Decode rebuilds an error chain. Decoded nodes never have common frames or
// suppressed errors.
func (c ErrorCodec) Decode(doc *document.Map) (*domain.ErrorInfo, error) {
	return c.decode(doc, "", 1)
}

func (c ErrorCodec) decode(doc *document.Map, path string, depth int) (*domain.ErrorInfo, error) {
	if depth > c.maxDepth() {
		return nil, &domain.DecodeFault{Field: path, Reason: fmt.Sprintf("nests more than %d causes", c.maxDepth())}
	}

	f := fieldsOf(doc, path)
	info := &domain.ErrorInfo{Suppressed: []*domain.ErrorInfo{}}
	var err error

	if info.ClassName, err = f.requiredString(ErrorClassField); err != nil {
		return nil, err
	}
	if info.Message, err = f.nullableString(ErrorMessageField); err != nil {
		return nil, err
	}

	trace, ok, err := f.optionalList(ErrorStackTraceField)
	if err != nil {
		return nil, err
	}
	if ok {
		if info.Frames, err = c.frames.decodeList(trace, f.name(ErrorStackTraceField)); err != nil {
			return nil, err
		}
	}

	cause, ok, err := f.optionalMap(ErrorCauseField)
	if err != nil {
		return nil, err
	}
	if ok {
		if info.Cause, err = c.decode(cause, f.name(ErrorCauseField), depth+1); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// CommonFrames returns how many trailing frames inner shares with outer, comparing from
// the last frame backwards. The result never exceeds the length of the shorter trace.
func CommonFrames(outer, inner []domain.StackFrame) int {
	common := 0
	for i, j := len(outer)-1, len(inner)-1; i >= 0 && j >= 0; i, j = i-1, j-1 {
		if outer[i] != inner[j] {
			break
		}
		common++
	}
	return common
}
