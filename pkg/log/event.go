package log

import "time"

// Event represents a log event captured at any layer of the device stack.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the gateway session (UUID).
	// Empty for events emitted by the device core itself.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Device is the device name the event relates to.
	Device string `cbor:"3,keyasint,omitempty"`

	// Tag is the device instance tag.
	Tag int `cbor:"4,keyasint,omitempty"`

	// Direction indicates data flow relative to the device.
	Direction Direction `cbor:"5,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"6,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"7,keyasint"`

	// RemoteAddr is the peer address (IP:port) for gateway sessions.
	RemoteAddr string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Transfer    *TransferEvent    `cbor:"10,keyasint,omitempty"` // Device layer
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // Lifecycle
	Frame       *FrameEvent       `cbor:"12,keyasint,omitempty"` // Transport layer
	ControlMsg  *ControlMsgEvent  `cbor:"13,keyasint,omitempty"` // Ping/pong/close
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow relative to the device.
type Direction uint8

const (
	// DirectionIn indicates data flowing into the device (writes,
	// incoming frames).
	DirectionIn Direction = 0
	// DirectionOut indicates data flowing out of the device (reads,
	// outgoing frames).
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer of the stack captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the message encoding layer (decoded CBOR).
	LayerWire Layer = 1
	// LayerDevice is the device core.
	LayerDevice Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryTransfer indicates a device read or write.
	CategoryTransfer Category = 0
	// CategoryState indicates a lifecycle state change.
	CategoryState Category = 1
	// CategoryControl indicates a control message (ping/pong/close).
	CategoryControl Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
	// CategoryMessage indicates a wire-layer request or response.
	CategoryMessage Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransfer:
		return "TRANSFER"
	case CategoryState:
		return "STATE"
	case CategoryControl:
		return "CONTROL"
	case CategoryError:
		return "ERROR"
	case CategoryMessage:
		return "MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// TransferOp distinguishes read and write transfers.
type TransferOp uint8

const (
	// TransferRead is a device read.
	TransferRead TransferOp = 0
	// TransferWrite is a device write.
	TransferWrite TransferOp = 1
)

// String returns the transfer operation name.
func (o TransferOp) String() string {
	switch o {
	case TransferRead:
		return "READ"
	case TransferWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// TransferEvent captures a device read or write.
type TransferEvent struct {
	// Op is the transfer operation.
	Op TransferOp `cbor:"1,keyasint"`

	// Offset is the caller-supplied cursor the transfer started at.
	Offset int64 `cbor:"2,keyasint"`

	// Requested is the byte count the caller asked for.
	Requested int `cbor:"3,keyasint"`

	// Transferred is the byte count actually moved.
	Transferred int `cbor:"4,keyasint"`

	// NewOffset is the advanced cursor returned to the caller.
	NewOffset int64 `cbor:"5,keyasint"`
}

// StateChangeEvent captures device, session, and connection lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`

	// OpenCount is the device holder count after the change, for device
	// entity events.
	OpenCount uint64 `cbor:"5,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityDevice indicates a device open/close transition.
	StateEntityDevice StateEntity = 0
	// StateEntitySession indicates a gateway session state change.
	StateEntitySession StateEntity = 1
	// StateEntityConnection indicates a transport connection state change.
	StateEntityConnection StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDevice:
		return "DEVICE"
	case StateEntitySession:
		return "SESSION"
	case StateEntityConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// ControlMsgEvent captures transport-level control messages.
type ControlMsgEvent struct {
	// Type of control message.
	Type ControlMsgType `cbor:"1,keyasint"`
}

// ControlMsgType indicates the type of control message.
type ControlMsgType uint8

const (
	// ControlMsgPing indicates a ping message.
	ControlMsgPing ControlMsgType = 0
	// ControlMsgPong indicates a pong message.
	ControlMsgPong ControlMsgType = 1
	// ControlMsgClose indicates a close message.
	ControlMsgClose ControlMsgType = 2
)

// String returns the control message type name.
func (c ControlMsgType) String() string {
	switch c {
	case ControlMsgPing:
		return "PING"
	case ControlMsgPong:
		return "PONG"
	case ControlMsgClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the wire status code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
