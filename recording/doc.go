// Package recording provides an appender that keeps the recent low-severity events of each
// thread in memory and forwards them only when a more severe event is logged on the same
// thread.
package recording
