// Package db provides an embedded document database for docsink on top of SQLite.
// It stores documents of named collections as extended JSON rows and emulates the
// behaviour of a document server that the log store relies on.
//
// This package is responsible for:
// - Opening and configuring the SQLite connection pool (`db.go`), including the
//   synchronous mode derived from the write concern.
// - Managing the schema with embedded goose migrations (`migrations/`).
// - Implementing `domain.Collection` with insertion-ordered finds and capped collections
//   that evict their oldest documents by size (`collection.go`).
// - Implementing `domain.Database`: administrative commands and collection metadata
//   (`commands.go`) and bcrypt-hashed users (`users.go`).
// - Compressing stored bodies with zstd or brotli (`compress.go`).
package db
