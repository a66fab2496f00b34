package rsp

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/hempflower/openocd-agdi/pkg/transport"
)

// rspPacket frames payload the way a well-formed peer would.
func rspPacket(payload []byte) []byte {
	return []byte(fmt.Sprintf("$%s#%02x", payload, Checksum(payload)))
}

// ackThen prepends a positive acknowledgement to a scripted response.
func ackThen(packets ...[]byte) [][]byte {
	script := [][]byte{[]byte("+")}
	return append(script, packets...)
}

func TestSendCommandOK(t *testing.T) {
	tr := transport.NewScript(ackThen(rspPacket([]byte("OK"))), true)
	c := NewClient(tr)
	c.connected = true

	resp, err := c.SendCommand("qSupported", nil)
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if !bytes.Equal(resp, []byte("OK")) {
		t.Errorf("response = %q, want OK", resp)
	}

	// Outbound frame must carry a checksum matching its body.
	sent := tr.Sent[0]
	if sent[0] != '$' || sent[len(sent)-3] != '#' {
		t.Fatalf("malformed outbound frame %q", sent)
	}
	body := sent[1 : len(sent)-3]
	want := fmt.Sprintf("%02x", Checksum(body))
	if got := string(sent[len(sent)-2:]); got != want {
		t.Errorf("frame checksum %q, want %q", got, want)
	}

	// The inbound packet must be acknowledged.
	if len(tr.Sent) != 2 || !bytes.Equal(tr.Sent[1], []byte("+")) {
		t.Errorf("expected trailing '+' acknowledgement, sent: %q", tr.Sent)
	}
}

func TestSendCommandNegativeAck(t *testing.T) {
	tr := transport.NewScript([][]byte{[]byte("-")}, true)
	c := NewClient(tr)
	c.connected = true

	_, err := c.SendCommand("qSupported", nil)
	if !errors.Is(err, ErrNegativeAck) {
		t.Fatalf("got %v, want ErrNegativeAck", err)
	}
	// The command frame is the only thing that went out; no retry, no ack.
	if len(tr.Sent) != 1 {
		t.Errorf("sent %d frames after NACK, want 1: %q", len(tr.Sent), tr.Sent)
	}
}

func TestSendCommandUnexpectedAck(t *testing.T) {
	tr := transport.NewScript([][]byte{[]byte("?")}, true)
	c := NewClient(tr)
	c.connected = true

	_, err := c.SendCommand("qSupported", nil)
	var ua *UnexpectedAckError
	if !errors.As(err, &ua) {
		t.Fatalf("got %v, want UnexpectedAckError", err)
	}
	if ua.Byte != '?' {
		t.Errorf("offending byte 0x%02x, want '?'", ua.Byte)
	}
}

func TestSendCommandNotConnected(t *testing.T) {
	c := NewClient(transport.NewScript(nil, false))

	if _, err := c.SendCommand("qSupported", nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}
}

// TestSendCommandSkipsNoiseBeforePacket verifies the receive scan discards
// bytes preceding the packet start marker.
func TestSendCommandSkipsNoiseBeforePacket(t *testing.T) {
	script := [][]byte{[]byte("+"), []byte("xx"), rspPacket([]byte("OK"))}
	c := NewClient(transport.NewScript(script, true))
	c.connected = true

	resp, err := c.SendCommand("vFlashDone", nil)
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if !bytes.Equal(resp, []byte("OK")) {
		t.Errorf("response = %q, want OK", resp)
	}
}

// TestSendCommandToleratesBadChecksum verifies that a wrong inbound
// checksum does not fail the round-trip.
func TestSendCommandToleratesBadChecksum(t *testing.T) {
	script := ackThen([]byte("$OK#00"))
	c := NewClient(transport.NewScript(script, true))
	c.connected = true

	resp, err := c.SendCommand("vFlashDone", nil)
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if !bytes.Equal(resp, []byte("OK")) {
		t.Errorf("response = %q, want OK", resp)
	}
}

// countingTransport counts transport-level connect attempts.
type countingTransport struct {
	*transport.Script
	connects int
}

func (c *countingTransport) Connect() error {
	c.connects++
	return c.Script.Connect()
}

func TestConnectIdempotent(t *testing.T) {
	tr := &countingTransport{Script: transport.NewScript(nil, false)}
	c := NewClient(tr)

	if err := c.Connect(); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if tr.connects != 1 {
		t.Errorf("transport connect attempts = %d, want 1", tr.connects)
	}
	if !c.Connected() {
		t.Error("client should report connected")
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	c := NewClient(transport.NewScript(nil, false))

	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if c.Connected() {
		t.Error("client should report disconnected")
	}
}
