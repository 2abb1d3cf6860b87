package gateway

import (
	"sync"
	"time"

	"github.com/scobi84/chardev-go/pkg/device"
	"github.com/scobi84/chardev-go/pkg/log"
	"github.com/scobi84/chardev-go/pkg/transport"
	"github.com/scobi84/chardev-go/pkg/wire"
)

// Config configures a Gateway.
type Config struct {
	// Device is the device exposed by this gateway.
	Device *device.Device

	// NodePath is the registry node path reported in Stat responses
	// (optional, e.g. "/dev/chardev").
	NodePath string

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// Gateway dispatches session requests to a device.
type Gateway struct {
	device   *device.Device
	nodePath string
	logger   log.Logger

	sessions   map[string]*session
	sessionsMu sync.Mutex
}

// New creates a gateway for the given device.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	return &Gateway{
		device:   cfg.Device,
		nodePath: cfg.NodePath,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// ServerConfig returns a transport server configuration wired to this
// gateway. The caller may set TLS settings on the result before creating
// the server.
func (g *Gateway) ServerConfig(address string) transport.ServerConfig {
	return transport.ServerConfig{
		Address:      address,
		Logger:       g.logger,
		OnConnect:    g.handleConnect,
		OnMessage:    g.handleMessage,
		OnDisconnect: g.handleDisconnect,
	}
}

// SessionCount returns the number of active sessions.
func (g *Gateway) SessionCount() int {
	g.sessionsMu.Lock()
	defer g.sessionsMu.Unlock()
	return len(g.sessions)
}

// handleConnect creates a session for a new connection.
func (g *Gateway) handleConnect(conn *transport.ServerConn) {
	s := &session{
		id:         conn.ConnID(),
		remoteAddr: conn.RemoteAddr().String(),
		gateway:    g,
	}

	g.sessionsMu.Lock()
	g.sessions[s.id] = s
	g.sessionsMu.Unlock()

	g.logSessionState(s, "", "ACTIVE", "connected")
}

// handleMessage dispatches a request frame to the connection's session.
func (g *Gateway) handleMessage(conn *transport.ServerConn, data []byte) {
	g.sessionsMu.Lock()
	s := g.sessions[conn.ConnID()]
	g.sessionsMu.Unlock()

	if s == nil {
		// Connection vanished between frames
		return
	}

	resp := s.handleFrame(data)

	respData, err := wire.EncodeResponse(resp)
	if err != nil {
		g.logger.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: s.id,
			Layer:     log.LayerWire,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerWire,
				Message: err.Error(),
				Context: "encode response",
			},
		})
		return
	}

	conn.Send(respData)
}

// handleDisconnect tears down the connection's session, releasing the
// device if the session still holds it.
func (g *Gateway) handleDisconnect(conn *transport.ServerConn) {
	g.sessionsMu.Lock()
	s := g.sessions[conn.ConnID()]
	delete(g.sessions, conn.ConnID())
	g.sessionsMu.Unlock()

	if s == nil {
		return
	}

	if s.holds.Load() {
		// The holder went away without closing. Release on its behalf so
		// the device does not stay busy forever.
		s.holds.Store(false)
		g.device.Close()
		g.logSessionState(s, "ACTIVE", "CLOSED", "disconnected while holding device; "+s.summary())
		return
	}

	g.logSessionState(s, "ACTIVE", "CLOSED", "disconnected; "+s.summary())
}

// logSessionState logs a session lifecycle event.
func (g *Gateway) logSessionState(s *session, oldState, newState, reason string) {
	g.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Device:     g.device.Name(),
		Tag:        g.device.Tag(),
		Layer:      log.LayerWire,
		Category:   log.CategoryState,
		RemoteAddr: s.remoteAddr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
