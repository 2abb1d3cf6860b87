// Package log provides structured event logging for the device stack.
//
// Events are typed records rather than text: transfers (read/write with
// offsets and byte counts), state changes (device, session, connection),
// raw transport frames, and errors. Components accept an optional Logger
// and emit events at their own layer; applications choose the sink:
//
//   - FileLogger writes CBOR-encoded events to a file for later analysis.
//   - SlogAdapter mirrors events to a log/slog logger for development.
//   - MultiLogger fans out to several sinks at once.
//   - Reader iterates a log file with optional filtering.
//
// Logging is never required for correctness; every emission site treats the
// logger as optional and NoopLogger is a valid sink.
package log
