package transport

import (
	"fmt"
	"io"
	"net"
	"time"
)

// TCP connects to a GDB server over a TCP stream with no-delay enabled,
// the usual way to reach an OpenOCD or similar RSP endpoint.
type TCP struct {
	host    string
	port    int
	timeout time.Duration
	conn    net.Conn
}

// NewTCP creates a TCP transport targeting host:port.
// The connection is not established until Connect is called.
func NewTCP(host string, port int) *TCP {
	return &TCP{host: host, port: port}
}

// NewTCPWithTimeout creates a TCP transport with a dial timeout.
// A zero timeout blocks until the operating system gives up.
func NewTCPWithTimeout(host string, port int, timeout time.Duration) *TCP {
	return &TCP{host: host, port: port, timeout: timeout}
}

// Connect dials the target and disables Nagle's algorithm. RSP exchanges
// many small frames in strict lockstep, so coalescing writes adds latency.
func (t *TCP) Connect() error {
	addr := net.JoinHostPort(t.host, fmt.Sprintf("%d", t.port))
	conn, err := net.DialTimeout("tcp", addr, t.timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(true); err != nil {
			conn.Close()
			return fmt.Errorf("set nodelay: %w", err)
		}
	}
	t.conn = conn
	return nil
}

// Close releases the connection. Safe to call multiple times.
func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Send writes all of data to the connection.
func (t *TCP) Send(data []byte) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ReceiveExact reads exactly len(buf) bytes from the connection.
func (t *TCP) ReceiveExact(buf []byte) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return nil
}
