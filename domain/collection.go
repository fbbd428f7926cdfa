package domain

import "github.com/exacode/docsink/document"

// SortOrder selects the order in which a query returns documents.
type SortOrder int

const (
	SortDefault SortOrder = iota // Whatever order the driver finds cheapest.
	SortNatural                  // Insertion order, oldest first.
	SortReverse                  // Insertion order, newest first.
)

// Query describes a find operation on a collection.
type Query struct {
	Filter *document.Map // Top-level field equality; nil matches every document.
	Sort   SortOrder
	Skip   int
	Limit  int // Zero or negative means no limit.
}

// Cursor iterates over the documents returned by a query.
type Cursor interface {
	// Next advances to the next document, returning false when exhausted or on error.
	Next() bool
	// Document returns the current document.
	Document() *document.Map
	// Err returns the error that stopped iteration, if any.
	Err() error
	// Close releases the resources held by the cursor.
	Close() error
}

// Collection is a single document collection as exposed by a driver.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// Insert stores one document. The insert is atomic.
	Insert(doc *document.Map) error
	// Find runs a query against the collection.
	Find(query Query) (Cursor, error)
	// Count returns the number of documents in the collection.
	Count() (int64, error)
	// IsCapped reports whether the collection is size-bounded.
	IsCapped() (bool, error)
	// Drop removes the collection together with its documents and options.
	Drop() error
	// DeleteAll removes every document, keeping the collection.
	DeleteAll() error
}

// Database is a handle to one database of a driver.
type Database interface {
	// Name returns the database name.
	Name() string
	// Collection returns a handle to the named collection. The collection is created lazily.
	Collection(name string) Collection
	// RunCommand executes an administrative command document.
	RunCommand(cmd *document.Map) (*document.Map, error)
	// CollectionMetadata returns the metadata document of the named collection,
	// or ErrNotFound when the collection does not exist.
	CollectionMetadata(name string) (*document.Map, error)
	// Close releases the connection pool.
	Close() error
}

// Administrative commands understood by Database.RunCommand. The first key of a command
// document names the command:
//
//	{convertToCapped: name, size: N}
//	{create: name, capped: bool, size: N}
//	{drop: name}
//	{dbStats: 1}
//	{createUser: name, pwd: p}
//	{authenticate: 1, user: name, pwd: p}
const (
	CmdConvertToCapped = "convertToCapped"
	CmdCreate          = "create"
	CmdDrop            = "drop"
	CmdDBStats         = "dbStats"
	CmdCreateUser      = "createUser"
	CmdAuthenticate    = "authenticate"
)
