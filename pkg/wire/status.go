package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusBusy indicates the device is held by another session;
	// try again later.
	StatusBusy Status = 1

	// StatusInvalidOffset indicates a negative offset or one beyond the
	// current content.
	StatusInvalidOffset Status = 2

	// StatusTooLarge indicates a write that would exceed the device
	// capacity. No bytes were accepted.
	StatusTooLarge Status = 3

	// StatusCopyFault indicates the boundary copy failed.
	StatusCopyFault Status = 4

	// StatusNotOpen indicates a read/write/close from a session that does
	// not hold the device open.
	StatusNotOpen Status = 5

	// StatusInvalidParameter indicates a malformed request.
	StatusInvalidParameter Status = 6

	// StatusUnsupported indicates an unknown operation.
	StatusUnsupported Status = 7
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusBusy:
		return "BUSY"
	case StatusInvalidOffset:
		return "INVALID_OFFSET"
	case StatusTooLarge:
		return "TOO_LARGE"
	case StatusCopyFault:
		return "COPY_FAULT"
	case StatusNotOpen:
		return "NOT_OPEN"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}
