package recording

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/exacode/docsink/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Defaults applied by New.
const (
	DefaultMaxEvents = 1000
	DefaultExpiry    = 60 * time.Second
	DefaultThreshold = domain.LevelError
)

// Appender records events below its threshold per thread. When an event at or above the
// threshold arrives, the recorded events of that thread that have not expired are sent to
// every target, oldest first, followed by the triggering event, and the thread's history is
// cleared.
type Appender struct {
	maxEvents         int
	expiry            time.Duration
	threshold         domain.Level
	includeCallerData bool
	now               func() time.Time
	targets           []domain.Appender
	flushes           prometheus.Counter

	mu        sync.Mutex
	histories map[string]*history
}

var _ domain.Appender = (*Appender)(nil)

// New returns a recording appender with the defaults overridden by options.
func New(options ...func(*Appender) error) (*Appender, error) {
	appender := &Appender{
		maxEvents: DefaultMaxEvents,
		expiry:    DefaultExpiry,
		threshold: DefaultThreshold,
		now:       time.Now,
		histories: make(map[string]*history),
	}
	if err := appender.WithOptions(options...); err != nil {
		return nil, err
	}
	return appender, nil
}

// WithOptions applies configuration functions to the appender.
func (a *Appender) WithOptions(options ...func(*Appender) error) error {
	for _, option := range options {
		if err := option(a); err != nil {
			return fmt.Errorf("applying option on recording appender : %w", err)
		}
	}
	return nil
}

// WithMaxEvents limits how many events are kept per thread.
func WithMaxEvents(n int) func(*Appender) error {
	return func(a *Appender) error {
		if n <= 0 {
			return fmt.Errorf("max events must be positive, got %d", n)
		}
		a.maxEvents = n
		return nil
	}
}

// WithExpiry sets how old a recorded event may be and still be flushed.
func WithExpiry(expiry time.Duration) func(*Appender) error {
	return func(a *Appender) error {
		if expiry <= 0 {
			return fmt.Errorf("expiry must be positive, got %s", expiry)
		}
		a.expiry = expiry
		return nil
	}
}

// WithThreshold sets the lowest level that triggers a flush.
func WithThreshold(level domain.Level) func(*Appender) error {
	return func(a *Appender) error {
		a.threshold = level
		return nil
	}
}

// WithCallerData keeps the caller frames of recorded and flushed events.
// Without it every forwarded event has nil CallerFrames.
func WithCallerData(include bool) func(*Appender) error {
	return func(a *Appender) error {
		a.includeCallerData = include
		return nil
	}
}

// WithTarget adds an appender that receives flushed events.
func WithTarget(target domain.Appender) func(*Appender) error {
	return func(a *Appender) error {
		if target == nil {
			return errors.New("target appender is nil")
		}
		a.targets = append(a.targets, target)
		return nil
	}
}

// WithClock replaces the clock used to expire recorded events.
func WithClock(now func() time.Time) func(*Appender) error {
	return func(a *Appender) error {
		a.now = now
		return nil
	}
}

// WithFlushCounter counts the flushes performed by the appender.
func WithFlushCounter(counter prometheus.Counter) func(*Appender) error {
	return func(a *Appender) error {
		a.flushes = counter
		return nil
	}
}

// Append records or flushes event depending on its level.
func (a *Appender) Append(event domain.LogEvent) {
	if !a.includeCallerData {
		event.CallerFrames = nil
	}

	if event.Level < a.threshold {
		a.record(event)
		return
	}

	for _, recorded := range a.drain(event.ThreadName) {
		a.forward(recorded)
	}
	a.forward(event)
	if a.flushes != nil {
		a.flushes.Inc()
	}
}

// Recorded returns how many events are currently held for thread.
func (a *Appender) Recorded(thread string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.histories[thread]; ok {
		return h.len()
	}
	return 0
}

func (a *Appender) record(event domain.LogEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.histories[event.ThreadName]
	if !ok {
		h = newHistory(a.maxEvents)
		a.histories[event.ThreadName] = h
	}
	h.push(event)
}

// drain removes the history of thread and returns its events that are not older than the expiry.
func (a *Appender) drain(thread string) []domain.LogEvent {
	a.mu.Lock()
	h, ok := a.histories[thread]
	delete(a.histories, thread)
	a.mu.Unlock()

	if !ok {
		return nil
	}
	cutoff := a.now().Add(-a.expiry)
	events := make([]domain.LogEvent, 0, h.len())
	for _, event := range h.events() {
		if !event.Timestamp.Before(cutoff) {
			events = append(events, event)
		}
	}
	return events
}

func (a *Appender) forward(event domain.LogEvent) {
	for _, target := range a.targets {
		target.Append(event)
	}
}

// history is a bounded ring of events that overwrites the oldest entry when full.
type history struct {
	buf   []domain.LogEvent
	limit int
	start int
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) push(event domain.LogEvent) {
	if len(h.buf) < h.limit {
		h.buf = append(h.buf, event)
		return
	}
	h.buf[h.start] = event
	h.start = (h.start + 1) % h.limit
}

func (h *history) len() int {
	return len(h.buf)
}

// events returns the recorded events, oldest first.
func (h *history) events() []domain.LogEvent {
	out := make([]domain.LogEvent, len(h.buf))
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
