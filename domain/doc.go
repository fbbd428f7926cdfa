// Package domain defines the core data structures of docsink and the contracts it depends on.
// It contains the log event model (LogEvent, Level, StackFrame, ErrorInfo), the capability
// interfaces of the document database driver (Database, Collection, Cursor), and the error
// kinds shared by the codecs, the log store and the appenders.
//
// This package stays independent of any storage technology. The embedded SQLite driver in
// the db package and any networked driver supplied through a custom dialer both implement
// the interfaces declared here.
package domain
