// Package store implements the log store: appending log events to a document collection
// and reading them back in insertion order.
package store
