package converter

import (
	"fmt"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

// Stack frame field names.
const (
	FrameClassField  = "class"
	FrameMethodField = "method"
	FrameFileField   = "file"
	FrameLineField   = "lineNumber"
	FrameNativeField = "native"
)

// FrameCodec converts stack frames to and from documents.
type FrameCodec struct{}

// Encode converts a frame to a document. All five fields are always written; an unknown
// file name is written as null.
func (FrameCodec) Encode(frame domain.StackFrame) *document.Map {
	file := document.Null()
	if frame.FileName != "" {
		file = document.String(frame.FileName)
	}
	return document.NewMap().
		Set(FrameFileField, file).
		Set(FrameClassField, document.String(frame.DeclaringClass)).
		Set(FrameMethodField, document.String(frame.MethodName)).
		Set(FrameLineField, document.Int(int64(frame.LineNumber))).
		Set(FrameNativeField, document.Bool(frame.Native))
}

// EncodeList converts frames element-wise, preserving order.
func (c FrameCodec) EncodeList(frames []domain.StackFrame) document.List {
	list := make(document.List, len(frames))
	for i, frame := range frames {
		list[i] = document.MapOf(c.Encode(frame))
	}
	return list
}

// Decode converts a document to a frame. The native flag is optional.
func (c FrameCodec) Decode(doc *document.Map) (domain.StackFrame, error) {
	return c.decode(doc, "")
}

func (FrameCodec) decode(doc *document.Map, path string) (domain.StackFrame, error) {
	f := fieldsOf(doc, path)
	var frame domain.StackFrame
	var err error

	if frame.DeclaringClass, err = f.requiredString(FrameClassField); err != nil {
		return frame, err
	}
	if frame.MethodName, err = f.requiredString(FrameMethodField); err != nil {
		return frame, err
	}
	if _, err = f.required(FrameFileField); err != nil {
		return frame, err
	}
	if frame.FileName, err = f.nullableString(FrameFileField); err != nil {
		return frame, err
	}
	line, err := f.requiredInt(FrameLineField)
	if err != nil {
		return frame, err
	}
	frame.LineNumber = int(line)
	if frame.Native, err = f.optionalBool(FrameNativeField); err != nil {
		return frame, err
	}
	return frame, nil
}

// DecodeList converts a list of frame documents, one to one and in order.
func (c FrameCodec) DecodeList(list document.List) ([]domain.StackFrame, error) {
	return c.decodeList(list, "")
}

func (c FrameCodec) decodeList(list document.List, path string) ([]domain.StackFrame, error) {
	frames := make([]domain.StackFrame, len(list))
	for i, item := range list {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		doc, ok := item.AsMap()
		if !ok {
			return nil, &domain.DecodeFault{Field: itemPath, Reason: "is not a document, got " + item.Kind().String()}
		}
		frame, err := c.decode(doc, itemPath)
		if err != nil {
			return nil, err
		}
		frames[i] = frame
	}
	return frames, nil
}
