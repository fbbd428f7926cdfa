package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/exacode/docsink/db/migrations"
	"github.com/exacode/docsink/domain"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql migrations/*.go
var embedMigrations embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// WriteConcern controls how durable an insert is before it returns.
type WriteConcern struct {
	W        int           // 0 disables syncing entirely.
	WTimeout time.Duration // Bounds each insert; zero means no bound.
	FSync    bool
	Journal  bool
}

// synchronous returns the SQLite synchronous mode matching the write concern.
func (wc WriteConcern) synchronous() string {
	switch {
	case wc.W == 0:
		return "OFF"
	case wc.FSync || wc.Journal:
		return "FULL"
	default:
		return "NORMAL"
	}
}

// Options configures Open.
type Options struct {
	Name           string        // Database name reported by Name; defaults to the file name.
	Path           string        // SQLite file path, or MemoryPath.
	PoolSize       int           // Maximum open connections; zero means one.
	MaxWait        time.Duration // Busy timeout while waiting for a locked database.
	ConnectTimeout time.Duration // Bounds the initial ping.
	SocketTimeout  time.Duration // Bounds every statement; zero means no bound.
	WriteConcern   WriteConcern
	Compression    Compression
}

// PathFor returns the database file for name inside dir.
func PathFor(dir, name string) string {
	if dir == MemoryPath {
		return MemoryPath
	}
	return filepath.Join(dir, name+".db")
}

func (o Options) dsn() string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.MaxWait.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "synchronous("+o.WriteConcern.synchronous()+")")
	if o.Path != MemoryPath {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Set("_txlock", "immediate")
	return o.Path + "?" + params.Encode()
}

// Database is an embedded document database stored in a single SQLite file.
// It implements domain.Database.
type Database struct {
	dbConn *sqlx.DB
	name   string
	opts   Options
	codec  *bodyCodec
}

var _ domain.Database = (*Database)(nil)

// Open connects to the SQLite file named by opts.Path, applies all pending migrations and
// verifies the connection within opts.ConnectTimeout.
func Open(opts Options) (*Database, error) {
	if opts.Path == "" {
		return nil, errors.New("opening database : empty path")
	}
	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(opts.Path), filepath.Ext(opts.Path))
	}

	codec, err := newBodyCodec(opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("opening database : %w", err)
	}

	dbConn, err := sqlx.Open("sqlite", opts.dsn())
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	poolSize := max(opts.PoolSize, 1)
	if opts.Path == MemoryPath {
		// every connection to :memory: is a separate database
		poolSize = 1
	}
	dbConn.SetMaxOpenConns(poolSize)
	dbConn.SetMaxIdleConns(poolSize)

	ctx, cancel := withTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("pinging db : %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("setting dialect for migrations : %w", err)
	}

	if err := goose.Up(dbConn.DB, "migrations"); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("applying migration : %w", err)
	}

	return &Database{
		dbConn: dbConn,
		name:   opts.Name,
		opts:   opts,
		codec:  codec,
	}, nil
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.name
}

// Collection returns a handle to the named collection. Nothing is written until the first
// insert or command that needs the collection.
func (d *Database) Collection(name string) domain.Collection {
	return &Collection{db: d, name: name}
}

// Close terminates the database connection.
func (d *Database) Close() error {
	d.codec.close()
	if err := d.dbConn.Close(); err != nil {
		return fmt.Errorf("closing db : %w", err)
	}
	return nil
}

// statementContext bounds a single statement by the socket timeout.
func (d *Database) statementContext() (context.Context, context.CancelFunc) {
	return withTimeout(context.Background(), d.opts.SocketTimeout)
}

// writeContext bounds an insert by the tighter of the socket and write timeouts.
func (d *Database) writeContext() (context.Context, context.CancelFunc) {
	timeout := d.opts.SocketTimeout
	if wt := d.opts.WriteConcern.WTimeout; wt > 0 && (timeout <= 0 || wt < timeout) {
		timeout = wt
	}
	return withTimeout(context.Background(), timeout)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// storageError wraps a driver failure so that both domain.ErrStorage and the cause match.
func storageError(action string, err error) error {
	return fmt.Errorf("%s : %w : %w", action, domain.ErrStorage, err)
}
