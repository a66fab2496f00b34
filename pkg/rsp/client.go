package rsp

import (
	"strconv"

	"github.com/hempflower/openocd-agdi/pkg/log"
	"github.com/hempflower/openocd-agdi/pkg/transport"
)

// Client drives one command/response exchange at a time over a single
// transport. The transport is exclusively owned by the client; no other
// component reads or writes it directly.
//
// Client is not safe for concurrent use. Callers that share one client
// across goroutines must serialize access themselves.
type Client struct {
	transport transport.Transport
	connected bool
	logger    log.Logger
}

// Option configures optional behavior of a Client.
type Option func(*Client)

// WithLogger sets a logger for protocol-level diagnostics.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client over the given transport. The transport is not
// connected until Connect is called.
func NewClient(t transport.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		logger:    log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes the transport. Calling Connect on an already
// connected client is a no-op and reports success.
func (c *Client) Connect() error {
	if c.connected {
		return nil
	}
	if err := c.transport.Connect(); err != nil {
		return err
	}
	c.connected = true
	c.logger.Debug("connected to target")
	return nil
}

// Disconnect releases the transport. Calling Disconnect on an already
// disconnected client is a no-op.
func (c *Client) Disconnect() error {
	if !c.connected {
		return nil
	}
	if err := c.transport.Close(); err != nil {
		return err
	}
	c.connected = false
	c.logger.Debug("disconnected from target")
	return nil
}

// Connected reports whether the client currently holds a connection.
func (c *Client) Connected() bool {
	return c.connected
}

func (c *Client) recvByte() (byte, error) {
	var b [1]byte
	if err := c.transport.ReceiveExact(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// readPacket reads one inbound packet: skip to '$', accumulate the payload
// up to '#', consume the two checksum digits, then acknowledge with '+'.
//
// The peer's checksum is compared against the payload but a mismatch is
// only logged, not fatal; some non-conformant stubs send junk checksums
// and the driver this replaces tolerated them.
func (c *Client) readPacket() ([]byte, error) {
	for {
		b, err := c.recvByte()
		if err != nil {
			return nil, err
		}
		if b == packetStart {
			break
		}
	}

	var payload []byte
	for {
		b, err := c.recvByte()
		if err != nil {
			return nil, err
		}
		if b == packetEnd {
			break
		}
		payload = append(payload, b)
	}

	var csum [2]byte
	if err := c.transport.ReceiveExact(csum[:]); err != nil {
		return nil, err
	}
	if got, err := strconv.ParseUint(string(csum[:]), 16, 8); err != nil || byte(got) != Checksum(payload) {
		c.logger.Warn("response checksum mismatch",
			log.String("received", string(csum[:])),
			log.String("computed", strconv.FormatUint(uint64(Checksum(payload)), 16)),
		)
	}

	if err := c.transport.Send([]byte{ackByte}); err != nil {
		return nil, err
	}
	return payload, nil
}

// SendCommand frames prefix plus an already-escaped binary payload, sends
// it, waits for the acknowledgement, and returns the response payload of
// the next inbound packet.
//
// The next command is never sent before the previous response and
// acknowledgement have both completed; there is no pipelining.
func (c *Client) SendCommand(prefix string, binary []byte) ([]byte, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}

	frame := buildFrame(prefix, binary)
	if err := c.transport.Send(frame); err != nil {
		return nil, err
	}

	ack, err := c.recvByte()
	if err != nil {
		return nil, err
	}
	switch ack {
	case ackByte:
	case nackByte:
		c.logger.Error("command not acknowledged", log.String("command", prefix))
		return nil, ErrNegativeAck
	default:
		return nil, &UnexpectedAckError{Byte: ack}
	}

	return c.readPacket()
}
