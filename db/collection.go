package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// IDField is the document identifier added on insert when absent.
const IDField = "_id"

var _ domain.Collection = (*Collection)(nil)

// dbCollection represents a row of the collections table.
type dbCollection struct {
	Name   string `db:"name"`   // Collection name.
	Capped bool   `db:"capped"` // Whether the collection is size-bounded.
	Size   int64  `db:"size"`   // Maximum stored bytes when capped.
}

// dbDocument represents a stored document.
type dbDocument struct {
	Seq      int64  `db:"seq"`      // Insertion order.
	DocID    string `db:"doc_id"`   // Text form of the _id field.
	Encoding string `db:"encoding"` // Compression the body was written with.
	Body     []byte `db:"body"`     // Extended JSON, possibly compressed.
	Size     int64  `db:"size"`     // Uncompressed body length, counted against the capped size.
}

// Collection is a named set of documents inside a Database.
type Collection struct {
	db   *Database
	name string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Insert stores doc, adding a UUIDv7 _id when the document has none. The caller's map is
// not modified. For capped collections the oldest documents are evicted in the same
// transaction until the collection fits its size again.
func (c *Collection) Insert(doc *document.Map) error {
	stored, docID, err := withID(doc)
	if err != nil {
		return err
	}

	body := document.Marshal(stored)
	encoded, encoding, err := c.db.codec.encode(body)
	if err != nil {
		return fmt.Errorf("encoding document %s : %w", docID, err)
	}

	ctx, cancel := c.db.writeContext()
	defer cancel()

	tx, err := c.db.dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("starting insert", err)
	}
	defer tx.Rollback()

	meta, err := ensureCollection(ctx, tx, c.name)
	if err != nil {
		return err
	}
	if meta.Capped && int64(len(body)) > meta.Size {
		return fmt.Errorf("inserting document %s into %s : %w (%d > %d bytes)", docID, c.name, domain.ErrDocumentTooLarge, len(body), meta.Size)
	}

	row := &dbDocument{DocID: docID, Encoding: string(encoding), Body: encoded, Size: int64(len(body))}
	query := `INSERT INTO documents (collection, doc_id, encoding, body, size) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, c.name, row.DocID, row.Encoding, row.Body, row.Size); err != nil {
		return storageError(fmt.Sprintf("inserting document %s", docID), err)
	}

	if meta.Capped {
		if _, err := trimToSize(ctx, tx, c.name, meta.Size); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing insert", err)
	}
	return nil
}

// withID returns doc with an _id as its first field, and the text form of that id.
func withID(doc *document.Map) (*document.Map, string, error) {
	if id, ok := doc.Get(IDField); ok {
		if s, ok := id.AsString(); ok {
			return doc, s, nil
		}
		return doc, fmt.Sprint(id.Any()), nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("generating document id : %w", err)
	}
	stored := document.NewMap().Set(IDField, document.String(id.String()))
	doc.Range(func(key string, v document.Value) bool {
		stored.Set(key, v)
		return true
	})
	return stored, id.String(), nil
}

// Find runs query against the collection. Natural and default order are both insertion
// order; reverse is newest first. The filter is matched field by field on decoded documents.
func (c *Collection) Find(query domain.Query) (domain.Cursor, error) {
	order := "ASC"
	if query.Sort == domain.SortReverse {
		order = "DESC"
	}

	stmt := `SELECT seq, doc_id, encoding, body, size FROM documents WHERE collection = ? ORDER BY seq ` + order
	args := []any{c.name}
	cur := &cursor{codec: c.db.codec, filter: query.Filter, skip: query.Skip, limit: query.Limit}

	if query.Filter.Len() == 0 && (query.Skip > 0 || query.Limit > 0) {
		limit := -1
		if query.Limit > 0 {
			limit = query.Limit
		}
		stmt += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(query.Skip, 0))
		cur.skip, cur.limit = 0, 0
	}

	ctx, cancel := c.db.statementContext()
	rows, err := c.db.dbConn.QueryxContext(ctx, stmt, args...)
	if err != nil {
		cancel()
		return nil, storageError(fmt.Sprintf("finding documents in %s", c.name), err)
	}
	cur.rows = rows
	cur.cancel = cancel
	return cur, nil
}

// Count returns the number of documents in the collection.
func (c *Collection) Count() (int64, error) {
	ctx, cancel := c.db.statementContext()
	defer cancel()

	var count int64
	if err := c.db.dbConn.GetContext(ctx, &count, `SELECT COUNT(*) FROM documents WHERE collection = ?`, c.name); err != nil {
		return 0, storageError(fmt.Sprintf("counting documents in %s", c.name), err)
	}
	return count, nil
}

// IsCapped reports whether the collection is capped. A collection that does not exist is not capped.
func (c *Collection) IsCapped() (bool, error) {
	meta, err := c.db.collection(c.name)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return meta.Capped, nil
}

// Drop removes the collection, its documents and its options.
func (c *Collection) Drop() error {
	return c.db.dropCollection(c.name)
}

// DeleteAll removes every document and keeps the collection options.
func (c *Collection) DeleteAll() error {
	ctx, cancel := c.db.statementContext()
	defer cancel()

	if _, err := c.db.dbConn.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, c.name); err != nil {
		return storageError(fmt.Sprintf("deleting documents in %s", c.name), err)
	}
	return nil
}

// ensureCollection creates the collection as uncapped when it does not exist yet and returns its options.
func ensureCollection(ctx context.Context, tx *sqlx.Tx, name string) (*dbCollection, error) {
	if _, err := tx.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return nil, storageError(fmt.Sprintf("creating collection %s", name), err)
	}
	var meta dbCollection
	if err := tx.GetContext(ctx, &meta, `SELECT name, capped, size FROM collections WHERE name = ?`, name); err != nil {
		return nil, storageError(fmt.Sprintf("reading collection %s", name), err)
	}
	return &meta, nil
}

// trimToSize deletes the oldest documents of the collection until the stored bytes are at
// most maxBytes. It returns the number of deleted documents.
func trimToSize(ctx context.Context, tx *sqlx.Tx, name string, maxBytes int64) (int, error) {
	var total int64
	if err := tx.GetContext(ctx, &total, `SELECT COALESCE(SUM(size), 0) FROM documents WHERE collection = ?`, name); err != nil {
		return 0, storageError(fmt.Sprintf("sizing collection %s", name), err)
	}
	if total <= maxBytes {
		return 0, nil
	}

	rows, err := tx.QueryxContext(ctx, `SELECT seq, size FROM documents WHERE collection = ? ORDER BY seq ASC`, name)
	if err != nil {
		return 0, storageError(fmt.Sprintf("scanning collection %s", name), err)
	}

	deleted := 0
	var lastSeq int64
	for total > maxBytes && rows.Next() {
		var seq, size int64
		if err := rows.Scan(&seq, &size); err != nil {
			rows.Close()
			return 0, storageError("scanning row", err)
		}
		total -= size
		lastSeq = seq
		deleted++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, storageError("iterating rows", err)
	}
	rows.Close()

	if deleted == 0 {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND seq <= ?`, name, lastSeq); err != nil {
		return 0, storageError(fmt.Sprintf("trimming collection %s", name), err)
	}
	return deleted, nil
}

// cursor streams documents from a query, applying the filter and paging that could not be
// pushed into SQL.
type cursor struct {
	rows    *sqlx.Rows
	cancel  context.CancelFunc
	codec   *bodyCodec
	filter  *document.Map
	skip    int
	limit   int
	emitted int
	current *document.Map
	err     error
}

func (c *cursor) Next() bool {
	if c.err != nil || (c.limit > 0 && c.emitted >= c.limit) {
		return false
	}
	for c.rows.Next() {
		var row dbDocument
		if err := c.rows.StructScan(&row); err != nil {
			c.err = storageError("scanning document", err)
			return false
		}
		doc, err := c.decode(&row)
		if err != nil {
			c.err = err
			return false
		}
		if !matches(doc, c.filter) {
			continue
		}
		if c.skip > 0 {
			c.skip--
			continue
		}
		c.current = doc
		c.emitted++
		return true
	}
	if err := c.rows.Err(); err != nil {
		c.err = storageError("iterating documents", err)
	}
	return false
}

func (c *cursor) decode(row *dbDocument) (*document.Map, error) {
	body, err := c.codec.decode(row.Body, Compression(row.Encoding))
	if err != nil {
		return nil, storageError(fmt.Sprintf("decompressing document %s", row.DocID), err)
	}
	doc, err := document.Unmarshal(body)
	if err != nil {
		return nil, storageError(fmt.Sprintf("parsing document %s", row.DocID), err)
	}
	return doc, nil
}

func (c *cursor) Document() *document.Map {
	return c.current
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close() error {
	defer c.cancel()
	if err := c.rows.Close(); err != nil {
		return storageError("closing cursor", err)
	}
	return nil
}

// matches reports whether every field of filter is present in doc with an equal value.
func matches(doc, filter *document.Map) bool {
	ok := true
	filter.Range(func(key string, want document.Value) bool {
		got, found := doc.Get(key)
		ok = found && got.Equal(want)
		return ok
	})
	return ok
}

// collection reads the options of a collection, or domain.ErrNotFound.
func (d *Database) collection(name string) (*dbCollection, error) {
	ctx, cancel := d.statementContext()
	defer cancel()

	var meta dbCollection
	err := d.dbConn.GetContext(ctx, &meta, `SELECT name, capped, size FROM collections WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s : %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("reading collection %s", name), err)
	}
	return &meta, nil
}
