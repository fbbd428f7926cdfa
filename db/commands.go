package db

import (
	"fmt"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

// okReply is the reply of commands that return nothing else.
func okReply() *document.Map {
	return document.NewMap().Set("ok", document.Double(1))
}

// RunCommand executes one of the domain administrative commands.
func (d *Database) RunCommand(cmd *document.Map) (*document.Map, error) {
	keys := cmd.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("running command : %w: empty command", domain.ErrUnknownCommand)
	}

	switch name := keys[0]; name {
	case domain.CmdConvertToCapped:
		coll, err := stringArg(cmd, domain.CmdConvertToCapped)
		if err != nil {
			return nil, err
		}
		size, err := intArg(cmd, "size")
		if err != nil {
			return nil, err
		}
		if err := d.convertToCapped(coll, size); err != nil {
			return nil, err
		}
		return okReply(), nil

	case domain.CmdCreate:
		coll, err := stringArg(cmd, domain.CmdCreate)
		if err != nil {
			return nil, err
		}
		capped, _ := cmd.Get("capped")
		isCapped, _ := capped.AsBool()
		var size int64
		if isCapped {
			if size, err = intArg(cmd, "size"); err != nil {
				return nil, err
			}
		}
		if err := d.createCollection(coll, isCapped, size); err != nil {
			return nil, err
		}
		return okReply(), nil

	case domain.CmdDrop:
		coll, err := stringArg(cmd, domain.CmdDrop)
		if err != nil {
			return nil, err
		}
		if err := d.dropCollection(coll); err != nil {
			return nil, err
		}
		return okReply().Set("ns", document.String(d.name+"."+coll)), nil

	case domain.CmdDBStats:
		return d.stats()

	case domain.CmdCreateUser:
		user, err := stringArg(cmd, domain.CmdCreateUser)
		if err != nil {
			return nil, err
		}
		pwd, err := stringArg(cmd, "pwd")
		if err != nil {
			return nil, err
		}
		if err := d.CreateUser(user, pwd); err != nil {
			return nil, err
		}
		return okReply(), nil

	case domain.CmdAuthenticate:
		user, err := stringArg(cmd, "user")
		if err != nil {
			return nil, err
		}
		pwd, err := stringArg(cmd, "pwd")
		if err != nil {
			return nil, err
		}
		if err := d.Authenticate(user, pwd); err != nil {
			return nil, err
		}
		return okReply(), nil

	default:
		return nil, fmt.Errorf("running command %q : %w", name, domain.ErrUnknownCommand)
	}
}

func stringArg(cmd *document.Map, key string) (string, error) {
	v, _ := cmd.Get(key)
	s, ok := v.AsString()
	if !ok || s == "" {
		return "", fmt.Errorf("command argument %q : expected a non-empty string, got %s", key, v.Kind())
	}
	return s, nil
}

func intArg(cmd *document.Map, key string) (int64, error) {
	v, _ := cmd.Get(key)
	i, ok := v.AsInt()
	if !ok || i <= 0 {
		return 0, fmt.Errorf("command argument %q : expected a positive integer, got %v", key, v.Any())
	}
	return i, nil
}

// CollectionMetadata returns {name, options: {capped, size}} for an existing collection.
// Uncapped collections carry only the capped flag in their options.
func (d *Database) CollectionMetadata(name string) (*document.Map, error) {
	meta, err := d.collection(name)
	if err != nil {
		return nil, err
	}
	options := document.NewMap().Set("capped", document.Bool(meta.Capped))
	if meta.Capped {
		options.Set("size", document.Int(meta.Size))
	}
	return document.NewMap().
		Set("name", document.String(meta.Name)).
		Set("options", document.MapOf(options)), nil
}

// convertToCapped makes the collection capped at size bytes, creating it when missing, and
// evicts the oldest documents right away if they no longer fit.
func (d *Database) convertToCapped(name string, size int64) error {
	ctx, cancel := d.writeContext()
	defer cancel()

	tx, err := d.dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("starting convertToCapped", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO collections (name, capped, size) VALUES (?, 1, ?)
	          ON CONFLICT (name) DO UPDATE SET capped = 1, size = excluded.size`
	if _, err := tx.ExecContext(ctx, query, name, size); err != nil {
		return storageError(fmt.Sprintf("capping collection %s", name), err)
	}
	if _, err := trimToSize(ctx, tx, name, size); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("committing convertToCapped", err)
	}
	return nil
}

func (d *Database) createCollection(name string, capped bool, size int64) error {
	ctx, cancel := d.statementContext()
	defer cancel()

	res, err := d.dbConn.ExecContext(ctx, `INSERT INTO collections (name, capped, size) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`, name, capped, size)
	if err != nil {
		return storageError(fmt.Sprintf("creating collection %s", name), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("creating collection %s : %w: collection already exists", name, domain.ErrStorage)
	}
	return nil
}

// dropCollection removes a collection and its documents. Dropping a missing collection is not an error.
func (d *Database) dropCollection(name string) error {
	ctx, cancel := d.statementContext()
	defer cancel()

	tx, err := d.dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("starting drop", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, name); err != nil {
		return storageError(fmt.Sprintf("deleting documents in %s", name), err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return storageError(fmt.Sprintf("dropping collection %s", name), err)
	}
	if err := tx.Commit(); err != nil {
		return storageError("committing drop", err)
	}
	return nil
}

// dbStats is the row returned by the statistics query.
type dbStats struct {
	Collections int64 `db:"collections"`
	Objects     int64 `db:"objects"`
	DataSize    int64 `db:"data_size"`
	StorageSize int64 `db:"storage_size"`
}

func (d *Database) stats() (*document.Map, error) {
	ctx, cancel := d.statementContext()
	defer cancel()

	var stats dbStats
	query := `SELECT
		(SELECT COUNT(*) FROM collections) AS collections,
		COUNT(*) AS objects,
		COALESCE(SUM(size), 0) AS data_size,
		COALESCE(SUM(LENGTH(body)), 0) AS storage_size
	FROM documents`
	if err := d.dbConn.GetContext(ctx, &stats, query); err != nil {
		return nil, storageError("reading db stats", err)
	}

	return document.NewMap().
		Set("db", document.String(d.name)).
		Set("collections", document.Int(stats.Collections)).
		Set("objects", document.Int(stats.Objects)).
		Set("dataSize", document.Int(stats.DataSize)).
		Set("storageSize", document.Int(stats.StorageSize)).
		Set("ok", document.Double(1)), nil
}
