package docsink

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// WithOptions applies a series of configuration functions to the appender.
// Options can only be applied before Start.
func (a *Appender) WithOptions(options ...func(*Appender) error) error {
	if a.IsStarted() {
		return errors.New("applying option on started appender")
	}
	for _, option := range options {
		if err := option(a); err != nil {
			return fmt.Errorf("applying option on appender : %w", err)
		}
	}
	return nil
}

// WithConfig replaces the configuration after validating it.
func WithConfig(cfg Config) func(*Appender) error {
	return func(a *Appender) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}
}

// WithDialer replaces the embedded driver.
func WithDialer(dial Dialer) func(*Appender) error {
	return func(a *Appender) error {
		if dial == nil {
			return errors.New("nil dialer")
		}
		a.dial = dial
		return nil
	}
}

// WithLogger sets the logger status messages and store errors are written to.
func WithLogger(logger *logrus.Logger) func(*Appender) error {
	return func(a *Appender) error {
		if logger == nil {
			return errors.New("nil status logger")
		}
		a.log = logger
		return nil
	}
}

// WithMetrics counts appended, dropped and failed events on metrics.
func WithMetrics(metrics *Metrics) func(*Appender) error {
	return func(a *Appender) error {
		a.metrics = metrics
		return nil
	}
}

// WithClock sets the time source used to timestamp events built by the appender's loggers.
func WithClock(now func() time.Time) func(*Appender) error {
	return func(a *Appender) error {
		if now == nil {
			return errors.New("nil clock")
		}
		a.now = now
		return nil
	}
}
