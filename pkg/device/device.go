package device

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/scobi84/chardev-go/pkg/log"
)

// DefaultCapacity is the buffer capacity used when Config.Capacity is 0.
const DefaultCapacity = 1024

// DefaultName is the device name used when Config.Name is empty.
const DefaultName = "chardev"

// Config configures a Device.
type Config struct {
	// Name is the device label used in diagnostics and node paths.
	Name string

	// Capacity is the buffer capacity in bytes (default 1024).
	Capacity int

	// Tag disambiguates multiple instances of the same device name.
	Tag int

	// Registry receives lifecycle notifications (optional).
	Registry Registry

	// Logger receives device events (optional).
	Logger log.Logger

	// Copier performs boundary copies (optional; defaults to an
	// in-process memory copy).
	Copier Copier
}

// Device is a single exclusive-access byte-stream device backed by a
// fixed-capacity in-memory buffer.
//
// The buffer and content length are protected transitively by the open
// exclusivity gate: only the current holder may call Read and Write, and it
// must serialize those calls itself.
type Device struct {
	name     string
	tag      int
	buf      []byte
	registry Registry
	logger   log.Logger
	copier   Copier

	// opened is the exclusivity gate. Open performs a compare-and-set so
	// contention is rejected immediately, never queued.
	opened atomic.Bool

	// openCount is the current number of holders (0 or 1). Kept atomic so
	// diagnostics can read it without holding the device.
	openCount atomic.Uint64

	// length is the number of valid bytes in buf. Only the holder mutates
	// it; kept atomic so Stat-style diagnostics can read it safely.
	length atomic.Int64
}

// New creates a Device from the given configuration, applying defaults for
// zero-valued fields. Content starts empty; the buffer is allocated once and
// lives for the lifetime of the device.
func New(cfg Config) *Device {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Registry == nil {
		cfg.Registry = NoopRegistry{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.Copier == nil {
		cfg.Copier = memCopier{}
	}

	return &Device{
		name:     cfg.Name,
		tag:      cfg.Tag,
		buf:      make([]byte, cfg.Capacity),
		registry: cfg.Registry,
		logger:   cfg.Logger,
		copier:   cfg.Copier,
	}
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Tag returns the instance tag.
func (d *Device) Tag() int { return d.tag }

// Capacity returns the buffer capacity in bytes.
func (d *Device) Capacity() int { return len(d.buf) }

// Length returns the number of valid bytes currently stored.
func (d *Device) Length() int64 { return d.length.Load() }

// OpenCount returns the current number of holders (0 or 1).
func (d *Device) OpenCount() uint64 { return d.openCount.Load() }

// IsOpen reports whether a session currently holds the device.
func (d *Device) IsOpen() bool { return d.opened.Load() }

// Open acquires exclusive ownership of the device.
//
// The acquisition is a non-blocking compare-and-set: if another session
// already holds the device, Open fails immediately with ErrAlreadyOpen.
// Failed attempts never change device state.
func (d *Device) Open() error {
	if !d.opened.CompareAndSwap(false, true) {
		d.logError("open", ErrAlreadyOpen.Error())
		return ErrAlreadyOpen
	}

	count := d.openCount.Add(1)
	d.logState("CLOSED", "OPEN", count)
	d.registry.OnOpened(count)
	return nil
}

// Close releases exclusive ownership of the device.
//
// Close must be called exactly once per successful Open, by the holder.
// It always succeeds and does not clear the buffer: content persists across
// open/close cycles until a write restarts at offset 0.
func (d *Device) Close() {
	count := d.openCount.Add(^uint64(0))
	d.logState("OPEN", "CLOSED", count)
	d.registry.OnClosed(count)
	d.opened.Store(false)
}

// Read copies up to maxLen bytes of content starting at offset and returns
// the bytes together with the advanced offset for the next call.
//
// A read at exactly the end of content returns an empty result and a nil
// error (end of stream). An offset beyond the content, or a negative one,
// fails with ErrInvalidOffset. If the boundary copy fails the offset is not
// advanced and ErrCopyFault is returned.
//
// Read assumes the caller holds the device open; it performs no locking of
// its own.
func (d *Device) Read(offset int64, maxLen int) ([]byte, int64, error) {
	if offset < 0 {
		d.logError("read", fmt.Sprintf("negative offset %d", offset))
		return nil, offset, ErrInvalidOffset
	}

	avail := d.length.Load() - offset
	switch {
	case avail == 0:
		// EOF
		return nil, offset, nil
	case avail < 0:
		d.logError("read", fmt.Sprintf("offset %d beyond content length %d", offset, d.length.Load()))
		return nil, offset, ErrInvalidOffset
	}

	n := int(avail)
	if maxLen < n {
		n = maxLen
	}
	if n <= 0 {
		return nil, offset, nil
	}

	out := make([]byte, n)
	if _, err := d.copier.Copy(out, d.buf[offset:offset+int64(n)]); err != nil {
		d.logError("read", err.Error())
		return nil, offset, fmt.Errorf("%w: %v", ErrCopyFault, err)
	}

	newOffset := offset + int64(n)
	d.logTransfer(log.TransferRead, offset, maxLen, n, newOffset)
	return out, newOffset, nil
}

// Write copies data into the buffer at offset and returns the number of
// bytes accepted together with the advanced offset for the next call.
//
// A write that would exceed the capacity fails with ErrTooLarge and leaves
// the buffer and length unchanged. A write starting at offset 0 restarts the
// message: the length is reset before accounting. Writes at nonzero offsets
// extend the running length by len(data) regardless of where the previous
// write ended; callers chaining writes are expected to pass the offset
// returned by the previous call.
//
// If the boundary copy fails, the content length is reset to 0 and
// ErrCopyFault is returned: the buffer may hold a partial message and is
// treated as discarded rather than left half-written.
//
// Write assumes the caller holds the device open; it performs no locking of
// its own.
func (d *Device) Write(offset int64, data []byte) (int, int64, error) {
	if offset < 0 {
		d.logError("write", fmt.Sprintf("negative offset %d", offset))
		return 0, offset, ErrInvalidOffset
	}

	end := offset + int64(len(data))
	if end > int64(len(d.buf)) {
		d.logError("write", fmt.Sprintf("%d bytes at offset %d exceed capacity %d", len(data), offset, len(d.buf)))
		return 0, offset, ErrTooLarge
	}

	if _, err := d.copier.Copy(d.buf[offset:end], data); err != nil {
		// Fail safe: the buffer may be partially written, discard it.
		d.length.Store(0)
		d.logError("write", err.Error())
		return 0, offset, fmt.Errorf("%w: %v", ErrCopyFault, err)
	}

	if offset == 0 {
		// A write at offset 0 starts a new message.
		d.length.Store(0)
	}
	d.length.Add(int64(len(data)))

	d.logTransfer(log.TransferWrite, offset, len(data), len(data), end)
	return len(data), end, nil
}

func (d *Device) logTransfer(op log.TransferOp, offset int64, requested, transferred int, newOffset int64) {
	dir := log.DirectionOut
	if op == log.TransferWrite {
		dir = log.DirectionIn
	}
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		Device:    d.name,
		Tag:       d.tag,
		Direction: dir,
		Layer:     log.LayerDevice,
		Category:  log.CategoryTransfer,
		Transfer: &log.TransferEvent{
			Op:          op,
			Offset:      offset,
			Requested:   requested,
			Transferred: transferred,
			NewOffset:   newOffset,
		},
	})
}

func (d *Device) logState(oldState, newState string, openCount uint64) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		Device:    d.name,
		Tag:       d.tag,
		Layer:     log.LayerDevice,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:    log.StateEntityDevice,
			OldState:  oldState,
			NewState:  newState,
			OpenCount: openCount,
		},
	})
}

func (d *Device) logError(op, msg string) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		Device:    d.name,
		Tag:       d.tag,
		Layer:     log.LayerDevice,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerDevice,
			Message: msg,
			Context: op,
		},
	})
}
