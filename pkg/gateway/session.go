package gateway

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/scobi84/chardev-go/pkg/device"
	"github.com/scobi84/chardev-go/pkg/log"
	"github.com/scobi84/chardev-go/pkg/wire"
)

// session is the per-connection view of the device. It tracks whether this
// connection currently holds the device open plus traffic counters; offsets
// stay with the caller.
type session struct {
	id         string
	remoteAddr string
	gateway    *Gateway

	// holds reports whether this session currently holds the device open.
	// Accessed by both the read loop and the disconnect path.
	holds atomic.Bool

	// Traffic counters, reported when the session ends.
	requests     atomic.Uint64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

// summary reports the session's traffic counters for the teardown log.
func (s *session) summary() string {
	return fmt.Sprintf("requests=%d read=%dB written=%dB",
		s.requests.Load(), s.bytesRead.Load(), s.bytesWritten.Load())
}

// handleFrame decodes and dispatches one request frame, returning the
// response to send back.
func (s *session) handleFrame(data []byte) *wire.Response {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		// Without a decodable message ID the caller cannot correlate the
		// response; echo zero and let it time out on the original.
		s.logRequestError(err)
		return &wire.Response{
			Status:  wire.StatusInvalidParameter,
			Message: err.Error(),
		}
	}

	resp := s.dispatch(req)
	s.logResponse(resp)
	return resp
}

// dispatch routes a request to the matching device operation.
func (s *session) dispatch(req *wire.Request) *wire.Response {
	s.requests.Add(1)

	switch req.Operation {
	case wire.OpOpen:
		return s.handleOpen(req)
	case wire.OpRead:
		return s.handleRead(req)
	case wire.OpWrite:
		return s.handleWrite(req)
	case wire.OpClose:
		return s.handleClose(req)
	case wire.OpStat:
		return s.handleStat(req)
	default:
		return &wire.Response{
			MessageID: req.MessageID,
			Status:    wire.StatusUnsupported,
			Message:   "unknown operation",
		}
	}
}

func (s *session) handleOpen(req *wire.Request) *wire.Response {
	if err := s.gateway.device.Open(); err != nil {
		return s.errorResponse(req, err)
	}

	s.holds.Store(true)
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
	}
}

func (s *session) handleRead(req *wire.Request) *wire.Response {
	if !s.holds.Load() {
		return s.notOpenResponse(req)
	}

	data, newOffset, err := s.gateway.device.Read(req.Offset, int(req.MaxLength))
	if err != nil {
		return s.errorResponse(req, err)
	}

	s.bytesRead.Add(uint64(len(data)))
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		NewOffset: newOffset,
		Data:      data,
		Count:     uint32(len(data)),
	}
}

func (s *session) handleWrite(req *wire.Request) *wire.Response {
	if !s.holds.Load() {
		return s.notOpenResponse(req)
	}

	n, newOffset, err := s.gateway.device.Write(req.Offset, req.Data)
	if err != nil {
		return s.errorResponse(req, err)
	}

	s.bytesWritten.Add(uint64(n))
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		NewOffset: newOffset,
		Count:     uint32(n),
	}
}

func (s *session) handleClose(req *wire.Request) *wire.Response {
	if !s.holds.Load() {
		return s.notOpenResponse(req)
	}

	s.holds.Store(false)
	s.gateway.device.Close()

	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
	}
}

// handleStat reports device diagnostics. Stat does not require holding the
// device open.
func (s *session) handleStat(req *wire.Request) *wire.Response {
	d := s.gateway.device

	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Stat: &wire.StatPayload{
			Name:      d.Name(),
			Tag:       d.Tag(),
			Path:      s.gateway.nodePath,
			Capacity:  int64(d.Capacity()),
			Length:    d.Length(),
			OpenCount: d.OpenCount(),
			Open:      d.IsOpen(),
		},
	}
}

func (s *session) notOpenResponse(req *wire.Request) *wire.Response {
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusNotOpen,
		Message:   "device not open by this session",
	}
}

// errorResponse maps a device error to a wire response. The offset echoed
// back is the caller's unadvanced cursor.
func (s *session) errorResponse(req *wire.Request, err error) *wire.Response {
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    statusFromError(err),
		NewOffset: req.Offset,
		Message:   err.Error(),
	}
}

// statusFromError maps device errors to wire status codes.
func statusFromError(err error) wire.Status {
	switch {
	case errors.Is(err, device.ErrAlreadyOpen):
		return wire.StatusBusy
	case errors.Is(err, device.ErrInvalidOffset):
		return wire.StatusInvalidOffset
	case errors.Is(err, device.ErrTooLarge):
		return wire.StatusTooLarge
	case errors.Is(err, device.ErrCopyFault):
		return wire.StatusCopyFault
	default:
		return wire.StatusInvalidParameter
	}
}

// logResponse logs an outgoing response at the wire layer.
func (s *session) logResponse(resp *wire.Response) {
	event := log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Device:     s.gateway.device.Name(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		RemoteAddr: s.remoteAddr,
	}
	if resp.Status.IsError() {
		code := int(resp.Status)
		event.Category = log.CategoryError
		event.Error = &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: resp.Message,
			Code:    &code,
		}
	}
	s.gateway.logger.Log(event)
}

// logRequestError logs a request that could not be decoded.
func (s *session) logRequestError(err error) {
	s.gateway.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Device:     s.gateway.device.Name(),
		Direction:  log.DirectionIn,
		Layer:      log.LayerWire,
		Category:   log.CategoryError,
		RemoteAddr: s.remoteAddr,
		Error: &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: err.Error(),
			Context: "decode request",
		},
	})
}
