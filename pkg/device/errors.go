package device

import "errors"

// Device errors.
var (
	// ErrAlreadyOpen indicates the device is held by another session.
	// The caller should retry later or report busy upstream.
	ErrAlreadyOpen = errors.New("device already open")

	// ErrInvalidOffset indicates a read or write offset that is negative
	// or lies beyond the current content.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrTooLarge indicates a write that would exceed the device capacity.
	// No bytes are copied and the buffer is unchanged.
	ErrTooLarge = errors.New("write exceeds device capacity")

	// ErrCopyFault indicates the boundary copy failed. On reads the offset
	// is not advanced; on writes the content length is reset to zero
	// because the buffer may hold a partial message.
	ErrCopyFault = errors.New("boundary copy fault")
)
