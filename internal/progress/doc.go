// Package progress reports job status transitions and download progress to
// the terminal. The Reporter implements the notifier interfaces of
// pkg/processing, so status changes and transfer throughput show up as the
// client works without the library knowing about terminals.
package progress
