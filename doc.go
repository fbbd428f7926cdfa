// Package docsink stores structured log events in a document collection.
//
// An Appender opens the collection described by a Config, keeps it capped when configured,
// and stores every event it is given. Events come from a Logger returned by
// Appender.Logger, from a logrus Hook, or from a recording appender (see the recording
// package) that holds low-severity events back until something goes wrong.
//
// Stored events are read back through the store package, or with the docsink command.
package docsink
