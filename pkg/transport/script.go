package transport

import (
	"errors"
	"fmt"
)

// Script is an in-memory transport fed by a pre-recorded peer script.
// Every frame passed to Send is captured in Sent, and ReceiveExact serves
// bytes from the concatenated script in order. Reading past the end of the
// script fails, which makes an unexpected extra command visible in tests.
type Script struct {
	// Sent holds every buffer passed to Send, one entry per call.
	Sent [][]byte

	recvBuf   []byte
	recvPos   int
	connected bool
}

// NewScript creates a scripted transport that will serve the given responses
// in order. The transport starts disconnected; pass connected=true to skip
// the Connect call in tests that start mid-session.
func NewScript(responses [][]byte, connected bool) *Script {
	var buf []byte
	for _, r := range responses {
		buf = append(buf, r...)
	}
	return &Script{recvBuf: buf, connected: connected}
}

// Connect marks the transport connected.
func (s *Script) Connect() error {
	s.connected = true
	return nil
}

// Close marks the transport disconnected.
func (s *Script) Close() error {
	s.connected = false
	return nil
}

// Send captures data.
func (s *Script) Send(data []byte) error {
	if !s.connected {
		return ErrNotConnected
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.Sent = append(s.Sent, cp)
	return nil
}

// ReceiveExact serves the next len(buf) scripted bytes.
func (s *Script) ReceiveExact(buf []byte) error {
	if !s.connected {
		return ErrNotConnected
	}
	if s.recvPos+len(buf) > len(s.recvBuf) {
		return fmt.Errorf("script: %w", errScriptExhausted)
	}
	copy(buf, s.recvBuf[s.recvPos:s.recvPos+len(buf)])
	s.recvPos += len(buf)
	return nil
}

var errScriptExhausted = errors.New("no more scripted data")
