// Package wire defines the CBOR message format for the device session
// protocol.
//
// A session gateway exposes the device over a framed byte stream. Each
// frame carries one CBOR map with integer keys: a Request from the caller,
// a Response from the gateway, or a ControlMessage (ping/pong/close) from
// either side. Message IDs below MinMessageID are reserved so control
// frames can never be confused with data frames.
//
// The five operations mirror the device's file operations: Open, Read,
// Write, Close, plus a Stat diagnostic that does not require holding the
// device.
package wire
