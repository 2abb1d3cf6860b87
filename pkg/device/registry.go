package device

// Registry receives device lifecycle notifications. The concrete registry
// (device-node naming, discovery advertising) lives outside the core; the
// device only reports transitions. Implementations must not call back into
// the device from a notification.
type Registry interface {
	// OnOpened is called after a successful Open with the current number
	// of holders (1 under the single-holder invariant).
	OnOpened(openCount uint64)

	// OnClosed is called after Close with the current number of holders
	// (0 under the single-holder invariant).
	OnClosed(openCount uint64)
}

// NoopRegistry discards all notifications. Used when no registry is
// configured; safe for concurrent use and usable as a zero value.
type NoopRegistry struct{}

// OnOpened discards the notification.
func (NoopRegistry) OnOpened(uint64) {}

// OnClosed discards the notification.
func (NoopRegistry) OnClosed(uint64) {}

// Compile-time interface satisfaction check.
var _ Registry = NoopRegistry{}
