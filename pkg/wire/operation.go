package wire

// Operation represents a device session operation.
type Operation uint8

const (
	// OpOpen acquires exclusive ownership of the device.
	OpOpen Operation = 1

	// OpRead reads bytes at a caller-supplied offset.
	OpRead Operation = 2

	// OpWrite writes bytes at a caller-supplied offset.
	OpWrite Operation = 3

	// OpClose releases exclusive ownership of the device.
	OpClose Operation = 4

	// OpStat reports device diagnostics; allowed without holding the
	// device open.
	OpStat Operation = 5
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpOpen:
		return "Open"
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	case OpClose:
		return "Close"
	case OpStat:
		return "Stat"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the operation is a valid session operation.
func (o Operation) IsValid() bool {
	return o >= OpOpen && o <= OpStat
}
