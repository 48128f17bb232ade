package binledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// connectionState mirrors the observable lifecycle of the single long-lived
// backend connection. Transitions are logged by the monitor loop purely for
// observability; the monitor never triggers retries or failover.
type connectionState int32

const (
	stateConnecting connectionState = iota
	stateReady
	stateDisconnected
	stateShutdown
)

func (s connectionState) String() string {
	switch s {
	case stateConnecting:
		return "CONNECTING"
	case stateReady:
		return "READY"
	case stateDisconnected:
		return "DISCONNECTED"
	case stateShutdown:
		return "SHUTDOWN"
	}
	return "UNKNOWN"
}

// Client owns the shared connection to the binary ledger. It is opened once
// at startup and closed once at shutdown; requests are serialized over it.
type Client struct {
	addr           string
	connectTimeout time.Duration

	mu    sync.Mutex
	conn  net.Conn
	state atomic.Int32

	done chan struct{}
}

// NewClient dials the binary ledger and validates connectivity eagerly with a
// no-op ping before returning.
func NewClient(addr string, connectTimeout time.Duration) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("binary ledger address is required")
	}
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	c := &Client{
		addr:           addr,
		connectTimeout: connectTimeout,
		done:           make(chan struct{}),
	}
	c.state.Store(int32(stateConnecting))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if _, _, err := c.roundTrip(ctx, opPing, 0, nil); err != nil {
		return nil, fmt.Errorf("binary ledger connectivity check failed: %w", err)
	}

	go c.monitorState()
	return c, nil
}

// roundTrip sends one framed request and reads the framed response. The
// connection carries one request at a time.
func (c *Client) roundTrip(ctx context.Context, op uint8, count uint32, payload []byte) (responseHeader, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if connectionState(c.state.Load()) == stateShutdown {
		return responseHeader{}, nil, fmt.Errorf("client is closed")
	}

	conn, err := c.ensureConnLocked(ctx)
	if err != nil {
		return responseHeader{}, nil, err
	}

	deadline := time.Now().Add(c.connectTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return responseHeader{}, nil, c.failLocked(fmt.Errorf("failed to set deadline: %w", err))
	}

	frame := appendRequestHeader(make([]byte, 0, requestHeaderLen+len(payload)), op, count, uint32(len(payload)))
	frame = append(frame, payload...)
	if _, err := conn.Write(frame); err != nil {
		return responseHeader{}, nil, c.failLocked(fmt.Errorf("write failed: %w", err))
	}

	headerBuf := make([]byte, responseHeaderLen)
	if _, err := io.ReadFull(conn, headerBuf); err != nil {
		return responseHeader{}, nil, c.failLocked(fmt.Errorf("read header failed: %w", err))
	}
	header, err := decodeResponseHeader(headerBuf)
	if err != nil {
		return responseHeader{}, nil, c.failLocked(err)
	}

	respPayload := make([]byte, header.PayloadLen)
	if _, err := io.ReadFull(conn, respPayload); err != nil {
		return responseHeader{}, nil, c.failLocked(fmt.Errorf("read payload failed: %w", err))
	}

	c.state.Store(int32(stateReady))
	return header, respPayload, nil
}

// ensureConnLocked returns the live connection, dialing within the bounded
// connect timeout when there is none. Callers hold c.mu.
func (c *Client) ensureConnLocked(ctx context.Context) (net.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	c.state.Store(int32(stateConnecting))
	dialer := net.Dialer{Timeout: c.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		c.state.Store(int32(stateDisconnected))
		return nil, fmt.Errorf("failed to connect to binary ledger at %s: %w", c.addr, err)
	}
	c.conn = conn
	c.state.Store(int32(stateReady))
	return conn, nil
}

// failLocked drops the connection after a transport error so the next call
// redials. Callers hold c.mu.
func (c *Client) failLocked(err error) error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state.Store(int32(stateDisconnected))
	return err
}

// monitorState logs connection-state transitions until the client closes.
func (c *Client) monitorState() {
	last := connectionState(c.state.Load())
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			current := connectionState(c.state.Load())
			if current != last {
				slog.Info("Binary ledger connection state changed",
					slog.String("from", last.String()),
					slog.String("to", current.String()),
					slog.String("addr", c.addr))
				last = current
			}
		}
	}
}

// Close shuts the client down; it is not usable afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if connectionState(c.state.Load()) == stateShutdown {
		return nil
	}
	c.state.Store(int32(stateShutdown))
	close(c.done)

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
