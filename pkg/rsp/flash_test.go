package rsp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hempflower/openocd-agdi/pkg/transport"
)

func okScript(n int) [][]byte {
	var script [][]byte
	for i := 0; i < n; i++ {
		script = append(script, []byte("+"), rspPacket([]byte("OK")))
	}
	return script
}

func connectedClient(t *testing.T, script [][]byte) (*Client, *transport.Script) {
	t.Helper()
	tr := transport.NewScript(script, false)
	c := NewClient(tr)
	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return c, tr
}

func TestFlashErase(t *testing.T) {
	c, tr := connectedClient(t, okScript(1))

	if err := c.FlashErase(0x08000000, 0x1000); err != nil {
		t.Fatalf("FlashErase: %v", err)
	}
	if got := string(tr.Sent[0]); !strings.Contains(got, "vFlashErase:8000000,1000") {
		t.Errorf("frame %q lacks erase command", got)
	}
}

func TestFlashEraseRejected(t *testing.T) {
	c, _ := connectedClient(t, ackThen(rspPacket([]byte("E01"))))

	err := c.FlashErase(0x08000000, 0x1000)
	var rr *RemoteRejectedError
	if !errors.As(err, &rr) {
		t.Fatalf("got %v, want RemoteRejectedError", err)
	}
	if !bytes.Equal(rr.Response, []byte("E01")) {
		t.Errorf("offending response %q, want E01", rr.Response)
	}
}

func TestFlashWriteEscapesSpecialBytes(t *testing.T) {
	c, tr := connectedClient(t, okScript(1))

	if err := c.FlashWrite(0x08000000, []byte{'$', '#', '*', '}'}, 16); err != nil {
		t.Fatalf("FlashWrite: %v", err)
	}

	sent := tr.Sent[0]
	body := sent[1 : len(sent)-3]
	escaped := body[len("vFlashWrite:8000000:"):]

	want := []byte{'}', '$' ^ 0x20, '}', '#' ^ 0x20, '}', '*' ^ 0x20, '}', '}' ^ 0x20}
	if !bytes.Equal(escaped, want) {
		t.Errorf("escaped payload % x, want % x", escaped, want)
	}
}

func TestFlashWritePadsToWordSize(t *testing.T) {
	c, tr := connectedClient(t, okScript(1))

	if err := c.FlashWrite(0x08000000, []byte{1, 2, 3}, 256); err != nil {
		t.Fatalf("FlashWrite: %v", err)
	}

	sent := tr.Sent[0]
	body := sent[1 : len(sent)-3]
	payload := body[len("vFlashWrite:8000000:"):]
	want := []byte{1, 2, 3, 0xFF}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload % x, want % x (padded to word size)", payload, want)
	}
}

func TestFlashWriteChunks(t *testing.T) {
	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i)
	}
	c, tr := connectedClient(t, okScript(3))

	if err := c.FlashWrite(0x08000000, data, 256); err != nil {
		t.Fatalf("FlashWrite: %v", err)
	}

	// 600 bytes at chunk 256: 256 + 256 + 88(+padding). Three command
	// frames, each followed by the client's '+' for the inbound packet.
	chunks := 0
	for _, f := range tr.Sent {
		if strings.HasPrefix(string(f), "$vFlashWrite:") {
			chunks++
		}
	}
	if chunks != 3 {
		t.Fatalf("wrote %d chunks, want 3", chunks)
	}
	for i, wantAddr := range []string{"8000000", "8000100", "8000200"} {
		if !strings.Contains(string(tr.Sent[i*2]), "vFlashWrite:"+wantAddr+":") {
			t.Errorf("chunk %d frame %q, want addr %s", i, tr.Sent[i*2], wantAddr)
		}
	}
}

func TestFlashWriteRejectedReportsChunkAddress(t *testing.T) {
	// First chunk succeeds, second is rejected.
	script := append(okScript(1), []byte("+"), rspPacket([]byte("E02")))
	data := make([]byte, 300)
	c, _ := connectedClient(t, script)

	err := c.FlashWrite(0x08000000, data, 256)
	var rr *RemoteRejectedError
	if !errors.As(err, &rr) {
		t.Fatalf("got %v, want RemoteRejectedError", err)
	}
	if !strings.Contains(rr.Command, "0x8000100") {
		t.Errorf("command %q should name the failing chunk address", rr.Command)
	}
}

func TestFlashDone(t *testing.T) {
	c, tr := connectedClient(t, okScript(1))

	if err := c.FlashDone(); err != nil {
		t.Fatalf("FlashDone: %v", err)
	}
	if got := string(tr.Sent[0]); !strings.HasPrefix(got, "$vFlashDone#") {
		t.Errorf("frame %q, want $vFlashDone#..", got)
	}
}

func TestReadMemory(t *testing.T) {
	c, tr := connectedClient(t, ackThen(rspPacket([]byte("00112233aabbccdd"))))

	got, err := c.ReadMemory(0x20000000, 8)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if got != "00112233aabbccdd" {
		t.Errorf("memory = %q", got)
	}
	if s := string(tr.Sent[0]); !strings.Contains(s, "m20000000,8") {
		t.Errorf("frame %q lacks read command", s)
	}
}
