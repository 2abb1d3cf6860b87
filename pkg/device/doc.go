// Package device implements the exclusive-access byte-stream device core.
//
// A Device is a fixed-capacity in-memory buffer with open/close/read/write
// semantics and a non-blocking single-holder exclusivity gate. At most one
// session may hold the device open at a time; a second Open attempt fails
// immediately with ErrAlreadyOpen instead of blocking.
//
// Offsets are owned by the caller: every Read and Write receives the cursor
// and returns the advanced value for the next call. The device never stores
// a cursor across calls, so content survives open/close cycles unchanged
// until a write restarts the message at offset 0.
//
// Once a session holds the device open, read and write calls are assumed to
// be serialized by that single holder. The device performs no internal
// locking around buffer access beyond the exclusivity gate.
package device
