package transport

import "errors"

// ErrNotConnected is returned when Send or ReceiveExact is called on a
// transport that is not connected. Callers get an immediate failure, never
// a blocking wait for a connection to appear.
var ErrNotConnected = errors.New("transport: not connected")

// Transport is a reliable, ordered, bidirectional byte stream to a debug
// target. Implementations include a TCP connection, a serial port, and an
// in-memory scripted stream for tests.
//
// Send writes all bytes or fails. ReceiveExact blocks until the buffer is
// completely filled or fails with an end-of-stream or connection error;
// partial reads are never exposed to callers.
type Transport interface {
	// Connect establishes the stream.
	Connect() error

	// Close releases the stream. Closing an unconnected transport is a no-op.
	Close() error

	// Send writes all of data to the stream.
	Send(data []byte) error

	// ReceiveExact reads exactly len(buf) bytes into buf.
	ReceiveExact(buf []byte) error
}
