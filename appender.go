package docsink

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/exacode/docsink/converter"
	"github.com/exacode/docsink/db"
	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
	"github.com/exacode/docsink/recording"
	"github.com/exacode/docsink/store"
	"github.com/sirupsen/logrus"
)

// Dialer opens the database described by a configuration.
type Dialer func(Config) (domain.Database, error)

// DialEmbedded opens the embedded SQLite database described by cfg.
func DialEmbedded(cfg Config) (domain.Database, error) {
	opts, err := cfg.DatabaseOptions()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(opts)
	if err != nil {
		return nil, err
	}
	return database, nil
}

// Appender stores log events in a document collection.
// Append never fails: events received before Start or after Stop are dropped and store
// errors are reported on the status logger.
type Appender struct {
	cfg     Config
	dial    Dialer
	log     *logrus.Logger
	metrics *Metrics
	now     func() time.Time

	started  atomic.Bool
	logStore atomic.Pointer[store.LogStore]

	mu       sync.Mutex // serialises Start and Stop
	database domain.Database
}

var _ domain.Appender = (*Appender)(nil)

func defaultStatusLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// New returns an appender using DefaultConfig and the embedded driver unless options
// override them. The appender does nothing until Start is called.
func New(options ...func(*Appender) error) (*Appender, error) {
	appender := &Appender{
		cfg:  DefaultConfig(),
		dial: DialEmbedded,
		log:  defaultStatusLogger(),
		now:  time.Now,
	}
	if err := appender.WithOptions(options...); err != nil {
		return nil, err
	}
	return appender, nil
}

// Config returns the configuration of the appender.
func (a *Appender) Config() Config {
	return a.cfg
}

// Start connects to the database, verifies the connection, authenticates when credentials
// are configured and makes sure the collection is capped as configured. On failure the
// appender stays inactive and a *domain.ConnectionError is returned.
// Starting a started appender does nothing.
func (a *Appender) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started.Load() {
		return nil
	}

	database, logStore, err := a.connect()
	if err != nil {
		a.log.WithError(err).WithField("address", a.cfg.Address()).Error("log appender not started")
		return &domain.ConnectionError{Address: a.cfg.Address(), Err: err}
	}

	a.database = database
	a.logStore.Store(logStore)
	a.started.Store(true)
	a.log.WithFields(logrus.Fields{
		"address":    a.cfg.Address(),
		"collection": a.cfg.CollectionName,
		"capped":     a.cfg.Capped,
	}).Info("log appender started")
	return nil
}

func (a *Appender) connect() (domain.Database, *store.LogStore, error) {
	database, err := a.dial(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing : %w", err)
	}
	fail := func(err error) (domain.Database, *store.LogStore, error) {
		database.Close()
		return nil, nil, err
	}

	if _, err := database.RunCommand(document.NewMap().Set(domain.CmdDBStats, document.Int(1))); err != nil {
		return fail(fmt.Errorf("pinging %s : %w", database.Name(), err))
	}

	if a.cfg.Username != "" && a.cfg.Password != "" {
		auth := document.NewMap().
			Set(domain.CmdAuthenticate, document.Int(1)).
			Set("user", document.String(a.cfg.Username)).
			Set("pwd", document.String(a.cfg.Password))
		if _, err := database.RunCommand(auth); err != nil {
			return fail(fmt.Errorf("authenticating %s : %w", a.cfg.Username, err))
		}
	}

	codec := converter.NewEventCodec(a.cfg.IncludeCallerData)
	logStore := store.New(database.Collection(a.cfg.CollectionName), database, codec)
	if a.cfg.Capped {
		if err := logStore.EnsureCapped(a.cfg.CappedSize); err != nil {
			return fail(fmt.Errorf("capping %s : %w", a.cfg.CollectionName, err))
		}
	}
	return database, logStore, nil
}

// Stop closes the database. Events appended afterwards are dropped.
func (a *Appender) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started.Load() {
		return nil
	}
	a.started.Store(false)

	err := a.database.Close()
	a.database = nil
	if err != nil {
		return fmt.Errorf("closing %s : %w", a.cfg.Address(), err)
	}
	a.log.WithField("address", a.cfg.Address()).Info("log appender stopped")
	return nil
}

// IsStarted reports whether events are currently being stored.
func (a *Appender) IsStarted() bool {
	return a.started.Load()
}

// Store returns the store events are written to, or nil before the first successful Start.
func (a *Appender) Store() *store.LogStore {
	return a.logStore.Load()
}

// Append stores event.
func (a *Appender) Append(event domain.LogEvent) {
	logStore := a.logStore.Load()
	if !a.started.Load() || logStore == nil {
		a.metrics.dropped()
		return
	}
	if err := logStore.Append(event); err != nil {
		a.metrics.appendError()
		a.log.WithError(err).WithFields(logrus.Fields{
			"collection": logStore.Collection(),
			"logger":     event.LoggerName,
		}).Error("storing log event")
		return
	}
	a.metrics.appended()
}

// Recorder returns a recording appender that flushes into a. Caller data follows the
// configuration and flushes are counted on the appender metrics, options may override both.
func (a *Appender) Recorder(options ...func(*recording.Appender) error) (*recording.Appender, error) {
	defaults := []func(*recording.Appender) error{
		recording.WithTarget(a),
		recording.WithCallerData(a.cfg.IncludeCallerData),
		recording.WithClock(a.now),
	}
	if counter := a.metrics.recordingFlushes(); counter != nil {
		defaults = append(defaults, recording.WithFlushCounter(counter))
	}
	return recording.New(append(defaults, options...)...)
}
