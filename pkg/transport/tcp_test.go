package transport

import (
	"errors"
	"net"
	"strconv"
	"testing"
	"time"
)

// TestTCP_ConnectExchange verifies that the TCP transport can reach a local
// server, send a frame, and read an exact-length reply.
func TestTCP_ConnectExchange(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// Server: accept, echo a fixed reply, close.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write([]byte("+$OK#9a")) //nolint:errcheck
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)

	tr := NewTCPWithTimeout(host, port, 2*time.Second)
	if err := tr.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer tr.Close()

	if err := tr.Send([]byte("ping")); err != nil {
		t.Fatalf("send: %v", err)
	}

	reply := make([]byte, 7)
	if err := tr.ReceiveExact(reply); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if got := string(reply); got != "+$OK#9a" {
		t.Errorf("got %q, want %q", got, "+$OK#9a")
	}
}

// TestTCP_NotConnected verifies that I/O on an unconnected transport fails
// immediately instead of blocking.
func TestTCP_NotConnected(t *testing.T) {
	tr := NewTCP("127.0.0.1", 3333)

	if err := tr.Send([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send: got %v, want ErrNotConnected", err)
	}
	if err := tr.ReceiveExact(make([]byte, 1)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ReceiveExact: got %v, want ErrNotConnected", err)
	}
}

// TestTCP_CloseIdempotent verifies Close can be called repeatedly.
func TestTCP_CloseIdempotent(t *testing.T) {
	tr := NewTCP("127.0.0.1", 3333)
	if err := tr.Close(); err != nil {
		t.Fatalf("close unconnected: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
