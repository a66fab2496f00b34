package rsp

import (
	"errors"
	"fmt"
)

// Protocol errors returned by the public API. All of them are terminal for
// the operation that raised them; the protocol has no retry anywhere.
var (
	// ErrNotConnected is returned when a command is issued on a client
	// whose transport has not been connected.
	ErrNotConnected = errors.New("rsp: not connected")

	// ErrNegativeAck is returned when the peer answers a command frame
	// with '-'.
	ErrNegativeAck = errors.New("rsp: command rejected by peer (NACK)")

	// ErrMalformedMemoryMap is returned when the memory-map document or
	// one of its hexadecimal values does not parse.
	ErrMalformedMemoryMap = errors.New("rsp: malformed memory map")
)

// UnexpectedAckError reports an acknowledgement byte that is neither '+'
// nor '-', a violation of the protocol.
type UnexpectedAckError struct {
	Byte byte
}

func (e *UnexpectedAckError) Error() string {
	return fmt.Sprintf("rsp: unexpected acknowledgement byte 0x%02x", e.Byte)
}

// RemoteRejectedError reports a command whose response payload was not the
// expected "OK". The offending response is kept for diagnostics.
type RemoteRejectedError struct {
	Command  string
	Response []byte
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("rsp: %s rejected by target: %q", e.Command, e.Response)
}
