package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/scobi84/chardev-go/pkg/wire"
)

// ClientConfig configures a session client.
type ClientConfig struct {
	// TLSConfig contains TLS settings. Nil means plain TCP.
	TLSConfig *TLSConfig

	// MaxMessageSize is the maximum message size (default: 64KB).
	MaxMessageSize uint32

	// ConnectTimeout is the connection timeout (default: 30s).
	ConnectTimeout time.Duration

	// KeepAlive configuration.
	KeepAlive KeepAliveConfig
}

// Client connects to a device gateway.
type Client struct {
	config  ClientConfig
	tlsConf *tls.Config
}

// NewClient creates a new session client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.KeepAlive.PingInterval == 0 {
		config.KeepAlive = DefaultKeepAliveConfig()
	}

	var tlsConf *tls.Config
	if config.TLSConfig != nil {
		var err error
		tlsConf, err = NewClientTLSConfig(config.TLSConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	return &Client{
		config:  config,
		tlsConf: tlsConf,
	}, nil
}

// Connect establishes a connection to the specified address.
func (c *Client) Connect(ctx context.Context, address string) (*ClientConn, error) {
	// Apply timeout from config if context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	stream := conn

	if c.tlsConf != nil {
		tlsConn := tls.Client(conn, c.tlsConf)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}

		state := tlsConn.ConnectionState()
		if err := VerifyConnection(state); err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("connection verification failed: %w", err)
		}

		stream = tlsConn
	}

	clientConn := &ClientConn{
		conn:    stream,
		framer:  NewFramerWithMaxSize(stream, c.config.MaxMessageSize),
		client:  c,
		closeCh: make(chan struct{}),
	}

	return clientConn, nil
}

// ClientConn represents a connection from client to gateway.
type ClientConn struct {
	conn    net.Conn
	framer  *Framer
	client  *Client
	closeCh chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
	readMu    sync.Mutex

	keepAlive *KeepAlive
}

// LocalAddr returns the local network address.
func (c *ClientConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *ClientConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send sends a message to the gateway.
func (c *ClientConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	return c.framer.WriteFrame(data)
}

// Receive receives a message from the gateway with timeout.
//
// When keep-alive monitoring is active, pong frames are consumed here and
// routed to the monitor instead of being returned.
func (c *ClientConn) Receive(timeout time.Duration) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}

	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			return nil, err
		}

		if c.keepAlive != nil {
			if isControl, err := wire.IsControlMessage(data); err == nil && isControl {
				if msgType, seq, err := DecodeControlMessage(data); err == nil && msgType == wire.ControlPong {
					c.keepAlive.PongReceived(seq)
					continue
				}
			}
		}

		return data, nil
	}
}

// StartKeepAlive begins liveness monitoring on the connection. Pings are
// sent at the configured interval; onTimeout fires after too many missed
// pongs. Callers must keep draining Receive for pongs to be seen.
func (c *ClientConn) StartKeepAlive(ctx context.Context, onTimeout func()) {
	if c.keepAlive != nil {
		return
	}
	c.keepAlive = NewKeepAlive(c.client.config.KeepAlive, c.SendPing, onTimeout)
	c.keepAlive.Start(ctx)
}

// StopKeepAlive stops liveness monitoring.
func (c *ClientConn) StopKeepAlive() {
	if c.keepAlive != nil {
		c.keepAlive.Stop()
	}
}

// Close closes the connection.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.keepAlive != nil {
			c.keepAlive.Stop()
		}
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

// SendPing sends a ping control message.
func (c *ClientConn) SendPing(seq uint32) error {
	msg, err := EncodePing(seq)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// SendClose sends a close control message.
func (c *ClientConn) SendClose() error {
	msg, err := EncodeClose()
	if err != nil {
		return err
	}
	return c.Send(msg)
}
