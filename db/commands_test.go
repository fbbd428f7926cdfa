package db

import (
	"errors"
	"testing"

	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

func TestDatabase_RunCommand(t *testing.T) {
	t.Run("should convert to capped and expose the options as metadata", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		reply, err := database.RunCommand(document.NewMap().
			Set(domain.CmdConvertToCapped, document.String("logs")).
			Set("size", document.Int(1048576)))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if ok, _ := reply.Get("ok"); !ok.Equal(document.Int(1)) {
			t.Fatalf("\nwanted:\nok 1\ngot:\n%s", document.Marshal(reply))
		}

		meta, err := database.CollectionMetadata("logs")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := `{"name":"logs","options":{"capped":true,"size":1048576}}`
		if got := string(document.Marshal(meta)); got != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}
	})

	t.Run("should change the size of an already capped collection", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		for _, size := range []int64{4096, 8192} {
			if err := database.convertToCapped("logs", size); err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
		}
		meta, _ := database.CollectionMetadata("logs")
		options, _ := meta.Get("options")
		optionsDoc, _ := options.AsMap()
		size, _ := optionsDoc.Get("size")
		if !size.Equal(document.Int(8192)) {
			t.Fatalf("\nwanted:\n8192\ngot:\n%v", size.Any())
		}
	})

	t.Run("should create collections once", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		create := document.NewMap().Set(domain.CmdCreate, document.String("plain"))
		if _, err := database.RunCommand(create); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := database.RunCommand(create); !errors.Is(err, domain.ErrStorage) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrStorage, err)
		}

		meta, err := database.CollectionMetadata("plain")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := `{"name":"plain","options":{"capped":false}}`
		if got := string(document.Marshal(meta)); got != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}

		_, err = database.RunCommand(document.NewMap().
			Set(domain.CmdCreate, document.String("ring")).
			Set("capped", document.Bool(true)).
			Set("size", document.Int(2048)))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		capped, err := database.Collection("ring").IsCapped()
		if err != nil || !capped {
			t.Fatalf("\nwanted:\ncapped\ngot:\n%v (%v)", capped, err)
		}
	})

	t.Run("should drop a collection", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		insertDocuments(t, database.Collection("logs"), 2)
		reply, err := database.RunCommand(document.NewMap().Set(domain.CmdDrop, document.String("logs")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if ns, _ := reply.Get("ns"); !ns.Equal(document.String(database.Name() + ".logs")) {
			t.Fatalf("\nwanted:\nnamespace\ngot:\n%s", document.Marshal(reply))
		}
		if _, err := database.CollectionMetadata("logs"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}
	})

	t.Run("should report database statistics", func(t *testing.T) {
		database, teardown := setupTestDB(t, func(o *Options) { o.Compression = CompressionZstd })
		defer teardown()

		insertDocuments(t, database.Collection("logs"), 3)
		insertDocuments(t, database.Collection("audit"), 1)

		stats, err := database.RunCommand(document.NewMap().Set(domain.CmdDBStats, document.Int(1)))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		for field, want := range map[string]int64{"collections": 2, "objects": 4} {
			v, _ := stats.Get(field)
			if !v.Equal(document.Int(want)) {
				t.Fatalf("\nwanted:\n%s %d\ngot:\n%s", field, want, document.Marshal(stats))
			}
		}
		dataSize, _ := stats.Get("dataSize")
		if n, _ := dataSize.AsInt(); n <= 0 {
			t.Fatalf("\nwanted:\npositive dataSize\ngot:\n%s", document.Marshal(stats))
		}
	})

	t.Run("should create and authenticate users", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		_, err := database.RunCommand(document.NewMap().
			Set(domain.CmdCreateUser, document.String("sink")).
			Set("pwd", document.String("s3cret")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		auth := func(pwd string) error {
			_, err := database.RunCommand(document.NewMap().
				Set(domain.CmdAuthenticate, document.Int(1)).
				Set("user", document.String("sink")).
				Set("pwd", document.String(pwd)))
			return err
		}
		if err := auth("s3cret"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := auth("wrong"); !errors.Is(err, domain.ErrAuthFailed) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrAuthFailed, err)
		}
	})

	t.Run("should reject unknown and malformed commands", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		if _, err := database.RunCommand(document.NewMap().Set("compact", document.String("logs"))); !errors.Is(err, domain.ErrUnknownCommand) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrUnknownCommand, err)
		}
		if _, err := database.RunCommand(document.NewMap()); !errors.Is(err, domain.ErrUnknownCommand) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrUnknownCommand, err)
		}
		if _, err := database.RunCommand(document.NewMap().Set(domain.CmdConvertToCapped, document.String("logs"))); err == nil {
			t.Fatalf("\nwanted:\nerror for missing size\ngot:\nnil")
		}
		if _, err := database.RunCommand(document.NewMap().Set(domain.CmdDrop, document.Int(3))); err == nil {
			t.Fatalf("\nwanted:\nerror for non-string name\ngot:\nnil")
		}
	})
}

func TestDatabase_CollectionMetadata(t *testing.T) {
	t.Run("should return not found for unknown collections", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		_, err := database.CollectionMetadata("missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}
	})

	t.Run("should exist after the first insert", func(t *testing.T) {
		database, teardown := setupTestDB(t)
		defer teardown()

		insertDocuments(t, database.Collection("logs"), 1)
		if _, err := database.CollectionMetadata("logs"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
	})
}
