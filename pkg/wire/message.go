package wire

import (
	"fmt"
)

// CBOR map keys for message encoding.
// All session messages use integer keys for efficiency.
const (
	// Common message keys
	KeyMessageID  = 1
	KeyOpOrStatus = 2 // Operation (request) or Status (response)
	KeyOffset     = 3
	KeyMaxLength  = 4 // Request only
	KeyData       = 5

	// Control message keys (Type replaces MessageID in key 1)
	KeySequence = 3
)

// MinMessageID is the smallest valid data message ID. IDs 1..15 are
// reserved so a control frame (type 1-3 in key 1, nothing in key 2) can
// never be mistaken for a request or response.
const MinMessageID uint32 = 16

// Request represents a session request from caller to gateway.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32, >= 16
//	  2: operation,   // uint8: 1=Open, 2=Read, 3=Write, 4=Close, 5=Stat
//	  3: offset,      // int64: caller-owned cursor (read/write)
//	  4: maxLength,   // uint32: requested byte count (read)
//	  5: data         // bytes: payload (write)
//	}
type Request struct {
	MessageID uint32    `cbor:"1,keyasint"`
	Operation Operation `cbor:"2,keyasint"`
	Offset    int64     `cbor:"3,keyasint,omitempty"`
	MaxLength uint32    `cbor:"4,keyasint,omitempty"`
	Data      []byte    `cbor:"5,keyasint,omitempty"`
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.MessageID < MinMessageID {
		return fmt.Errorf("messageId %d is reserved for control messages", r.MessageID)
	}
	if !r.Operation.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Operation)
	}
	return nil
}

// Response represents a session response from gateway to caller.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32: matches request
//	  2: status,      // uint8: 0=success, or error code
//	  3: newOffset,   // int64: advanced cursor for the next call
//	  5: data,        // bytes: read result
//	  6: count,       // uint32: bytes accepted (write)
//	  7: message,     // string: human-readable error detail
//	  8: stat         // map: device diagnostics (stat)
//	}
type Response struct {
	MessageID uint32       `cbor:"1,keyasint"`
	Status    Status       `cbor:"2,keyasint"`
	NewOffset int64        `cbor:"3,keyasint,omitempty"`
	Data      []byte       `cbor:"5,keyasint,omitempty"`
	Count     uint32       `cbor:"6,keyasint,omitempty"`
	Message   string       `cbor:"7,keyasint,omitempty"`
	Stat      *StatPayload `cbor:"8,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// StatPayload carries device diagnostics in a Stat response.
//
// CBOR encoding:
//
//	{
//	  1: name,       // string: device name
//	  2: tag,        // int: instance tag
//	  3: path,       // string: registry node path (if registered)
//	  4: capacity,   // int64: buffer capacity in bytes
//	  5: length,     // int64: valid bytes currently stored
//	  6: openCount,  // uint64: current holder count (0 or 1)
//	  7: open        // bool: whether a session holds the device
//	}
type StatPayload struct {
	Name      string `cbor:"1,keyasint"`
	Tag       int    `cbor:"2,keyasint,omitempty"`
	Path      string `cbor:"3,keyasint,omitempty"`
	Capacity  int64  `cbor:"4,keyasint"`
	Length    int64  `cbor:"5,keyasint"`
	OpenCount uint64 `cbor:"6,keyasint"`
	Open      bool   `cbor:"7,keyasint"`
}

// ControlMessage represents a transport-level control message.
// These are separate from the request/response model.
type ControlMessage struct {
	Type     ControlMessageType `cbor:"1,keyasint"`
	Sequence uint32             `cbor:"3,keyasint,omitempty"`
}

// ControlMessageType represents the type of control message.
type ControlMessageType uint8

const (
	// ControlPing is sent to check connection liveness.
	ControlPing ControlMessageType = 1

	// ControlPong is the response to a ping.
	ControlPong ControlMessageType = 2

	// ControlClose initiates graceful connection close.
	ControlClose ControlMessageType = 3
)

// String returns the control message type name.
func (t ControlMessageType) String() string {
	switch t {
	case ControlPing:
		return "ping"
	case ControlPong:
		return "pong"
	case ControlClose:
		return "close"
	default:
		return "unknown"
	}
}
