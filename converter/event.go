package converter

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

// Log event field names.
const (
	TimeStampField  = "timeStamp"
	LevelField      = "level"
	ThreadField     = "thread"
	LoggerField     = "logger"
	MessageField    = "message"
	MDCField        = "mdc"
	CallerDataField = "callerData"
	ArgumentsField  = "arguments"
	ThrowableField  = "throwable"
)

// EventCodec converts log events to and from documents.
type EventCodec struct {
	includeCallerData bool
	frames            FrameCodec
	throwables        ErrorCodec
}

// NewEventCodec returns an EventCodec. When includeCallerData is false caller frames are
// never written, even if the event carries them.
func NewEventCodec(includeCallerData bool) *EventCodec {
	return &EventCodec{
		includeCallerData: includeCallerData,
		throwables:        NewErrorCodec(),
	}
}

// IncludeCallerData reports whether the codec writes caller frames.
func (c *EventCodec) IncludeCallerData() bool {
	return c.includeCallerData
}

// Encode converts an event to a document.
func (c *EventCodec) Encode(event domain.LogEvent) (*document.Map, error) {
	doc := document.NewMap().
		Set(TimeStampField, document.Date(event.Timestamp)).
		Set(LevelField, document.String(event.Level.String())).
		Set(ThreadField, document.String(event.ThreadName)).
		Set(LoggerField, document.String(event.LoggerName)).
		Set(MessageField, document.String(event.Message))

	if len(event.ContextTags) > 0 {
		mdc := document.NewMap()
		for _, key := range slices.Sorted(maps.Keys(event.ContextTags)) {
			mdc.Set(key, document.String(event.ContextTags[key]))
		}
		doc.Set(MDCField, document.MapOf(mdc))
	}

	if c.includeCallerData {
		doc.Set(CallerDataField, document.ListOf(c.frames.EncodeList(event.CallerFrames)...))
	}

	if len(event.Arguments) > 0 {
		doc.Set(ArgumentsField, document.ListOf(encodeArguments(event.Arguments)...))
	}

	if event.Error != nil {
		throwable, err := c.throwables.Encode(event.Error)
		if err != nil {
			return nil, fmt.Errorf("encoding throwable : %w", err)
		}
		doc.Set(ThrowableField, document.MapOf(throwable))
	}
	return doc, nil
}

func encodeArguments(args []any) document.List {
	list := make(document.List, len(args))
	for i, arg := range args {
		v, err := document.FromAny(arg)
		if errors.Is(err, document.ErrUnsupportedType) {
			v = document.String(fmt.Sprintf("%v", arg))
		}
		list[i] = v
	}
	return list
}

// Decode converts a document to an event. Missing or ill-typed required fields fail with
// a domain.DecodeFault; absent optional fields decode to their zero value.
func (c *EventCodec) Decode(doc *document.Map) (domain.LogEvent, error) {
	f := fieldsOf(doc, "")
	var event domain.LogEvent
	var err error

	ts, err := f.required(TimeStampField)
	if err != nil {
		return event, err
	}
	when, ok := ts.AsDate()
	if !ok {
		return event, f.fault(TimeStampField, "is not a date, got "+ts.Kind().String())
	}
	event.Timestamp = when

	level, err := f.requiredString(LevelField)
	if err != nil {
		return event, err
	}
	event.Level = domain.ParseLevel(level)

	if event.ThreadName, err = f.requiredString(ThreadField); err != nil {
		return event, err
	}
	if event.LoggerName, err = f.requiredString(LoggerField); err != nil {
		return event, err
	}
	if event.Message, err = f.requiredString(MessageField); err != nil {
		return event, err
	}

	if event.ContextTags, err = decodeTags(f); err != nil {
		return event, err
	}

	callerData, ok, err := f.optionalList(CallerDataField)
	if err != nil {
		return event, err
	}
	if ok && len(callerData) > 0 {
		if event.CallerFrames, err = c.frames.decodeList(callerData, CallerDataField); err != nil {
			return event, err
		}
	}

	args, ok, err := f.optionalList(ArgumentsField)
	if err != nil {
		return event, err
	}
	if ok && len(args) > 0 {
		event.Arguments = make([]any, len(args))
		for i, arg := range args {
			event.Arguments[i] = arg.Any()
		}
	}

	throwable, ok, err := f.optionalMap(ThrowableField)
	if err != nil {
		return event, err
	}
	if ok {
		if event.Error, err = c.throwables.decode(throwable, ThrowableField, 1); err != nil {
			return event, err
		}
	}
	return event, nil
}

func decodeTags(f fields) (map[string]string, error) {
	mdc, ok, err := f.optionalMap(MDCField)
	if err != nil || !ok || mdc.Len() == 0 {
		return nil, err
	}
	tags := make(map[string]string, mdc.Len())
	mdc.Range(func(key string, v document.Value) bool {
		if s, ok := v.AsString(); ok {
			tags[key] = s
		} else if !v.IsNull() {
			tags[key] = fmt.Sprint(v.Any())
		}
		return true
	})
	return tags, nil
}
