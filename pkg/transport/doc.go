// Package transport provides the framed byte-stream transport for device
// sessions.
//
// The transport layer handles:
//   - TCP connections, optionally wrapped in TLS 1.3
//   - Length-prefixed message framing (4-byte big-endian prefix)
//   - Keep-alive ping/pong for connection liveness
//   - Connection state management
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│     TLS 1.3 (optional)         │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// When TLS is enabled, TLS 1.3 is required with no fallback, and the
// negotiated ALPN protocol must match the device protocol identifier.
package transport
