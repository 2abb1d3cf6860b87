package transport_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scobi84/chardev-go/pkg/transport"
	"github.com/scobi84/chardev-go/pkg/wire"
)

func startTestServer(t *testing.T, config transport.ServerConfig) *transport.Server {
	t.Helper()

	config.Address = "127.0.0.1:0"

	server, err := transport.NewServer(config)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { server.Stop() })

	return server
}

func dialTestServer(t *testing.T, server *transport.Server) *transport.ClientConn {
	t.Helper()

	client, err := transport.NewClient(transport.ClientConfig{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	conn, err := client.Connect(context.Background(), server.Addr().String())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestServerEcho(t *testing.T) {
	server := startTestServer(t, transport.ServerConfig{
		OnMessage: func(conn *transport.ServerConn, msg []byte) {
			// Echo back
			if err := conn.Send(msg); err != nil {
				t.Errorf("Send failed: %v", err)
			}
		},
	})

	conn := dialTestServer(t, server)

	payload := []byte("roundtrip")
	if err := conn.Send(payload); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got, err := conn.Receive(5 * time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("echo = %q, want %q", got, payload)
	}
}

func TestServerPingPong(t *testing.T) {
	server := startTestServer(t, transport.ServerConfig{})
	conn := dialTestServer(t, server)

	if err := conn.SendPing(42); err != nil {
		t.Fatalf("SendPing failed: %v", err)
	}

	data, err := conn.Receive(5 * time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	msgType, seq, err := transport.DecodeControlMessage(data)
	if err != nil {
		t.Fatalf("DecodeControlMessage failed: %v", err)
	}
	if msgType != wire.ControlPong {
		t.Errorf("message type = %v, want pong", msgType)
	}
	if seq != 42 {
		t.Errorf("sequence = %d, want 42", seq)
	}
}

func TestServerControlClose(t *testing.T) {
	disconnected := make(chan struct{})

	server := startTestServer(t, transport.ServerConfig{
		OnDisconnect: func(conn *transport.ServerConn) {
			close(disconnected)
		},
	})
	conn := dialTestServer(t, server)

	if err := conn.SendClose(); err != nil {
		t.Fatalf("SendClose failed: %v", err)
	}

	// Server acknowledges and tears the connection down
	data, err := conn.Receive(5 * time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	msgType, _, err := transport.DecodeControlMessage(data)
	if err != nil {
		t.Fatalf("DecodeControlMessage failed: %v", err)
	}
	if msgType != wire.ControlClose {
		t.Errorf("message type = %v, want close", msgType)
	}

	select {
	case <-disconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for disconnect callback")
	}
}

func TestServerCallbacksAndConnIDs(t *testing.T) {
	var mu sync.Mutex
	connIDs := make(map[string]struct{})
	connected := make(chan struct{}, 2)

	server := startTestServer(t, transport.ServerConfig{
		OnConnect: func(conn *transport.ServerConn) {
			mu.Lock()
			connIDs[conn.ConnID()] = struct{}{}
			mu.Unlock()
			connected <- struct{}{}
		},
	})

	dialTestServer(t, server)
	dialTestServer(t, server)

	for i := 0; i < 2; i++ {
		select {
		case <-connected:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for connect callback")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(connIDs) != 2 {
		t.Errorf("got %d distinct connection IDs, want 2", len(connIDs))
	}
}

func TestServerStopClosesConnections(t *testing.T) {
	server := startTestServer(t, transport.ServerConfig{})
	conn := dialTestServer(t, server)

	if err := server.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Reads against a stopped server fail promptly
	if _, err := conn.Receive(5 * time.Second); err == nil {
		t.Error("expected error reading from closed connection")
	}
}

func TestClientKeepAliveOverServer(t *testing.T) {
	server := startTestServer(t, transport.ServerConfig{})

	client, err := transport.NewClient(transport.ClientConfig{
		KeepAlive: transport.KeepAliveConfig{
			PingInterval:   30 * time.Millisecond,
			PongTimeout:    15 * time.Millisecond,
			MaxMissedPongs: 2,
		},
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	conn, err := client.Connect(context.Background(), server.Addr().String())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	timedOut := make(chan struct{})
	conn.StartKeepAlive(context.Background(), func() {
		close(timedOut)
	})

	// Pongs are only routed to the monitor while Receive is being drained
	go func() {
		for {
			if _, err := conn.Receive(0); err != nil {
				return
			}
		}
	}()

	// Server answers pings, so no timeout while it is up
	select {
	case <-timedOut:
		t.Fatal("unexpected keep-alive timeout with live server")
	case <-time.After(150 * time.Millisecond):
	}

	server.Stop()

	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("expected keep-alive timeout after server stop")
	}
}

func TestRequestOverTransport(t *testing.T) {
	received := make(chan *wire.Request, 1)

	server := startTestServer(t, transport.ServerConfig{
		OnMessage: func(conn *transport.ServerConn, msg []byte) {
			req, err := wire.DecodeRequest(msg)
			if err != nil {
				t.Errorf("DecodeRequest failed: %v", err)
				return
			}
			received <- req

			resp, _ := wire.EncodeResponse(&wire.Response{
				MessageID: req.MessageID,
				Status:    wire.StatusSuccess,
			})
			conn.Send(resp)
		},
	})

	conn := dialTestServer(t, server)

	data, err := wire.EncodeRequest(&wire.Request{
		MessageID: 16,
		Operation: wire.OpOpen,
	})
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	if err := conn.Send(data); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case req := <-received:
		if req.Operation != wire.OpOpen {
			t.Errorf("operation = %v, want Open", req.Operation)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for request")
	}

	respData, err := conn.Receive(5 * time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	resp, err := wire.DecodeResponse(respData)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %v, want success", resp.Status)
	}
}
