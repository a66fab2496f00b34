package rsp

import (
	"errors"
	"strings"
	"testing"
)

const sampleMemoryMap = `
<memory-map>
  <memory type="ram" start="0x00000000" length="0x08000000"/>
  <memory type="flash" start="0x08000000" length="0x8000">
    <property name="blocksize">0x400</property>
  </memory>
  <memory type="ram" start="0x08008000" length="0xf7ff8000"/>
</memory-map>
`

func TestParseMemoryMap(t *testing.T) {
	regions, err := ParseMemoryMap([]byte(sampleMemoryMap))
	if err != nil {
		t.Fatalf("ParseMemoryMap: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1 (ram must be skipped)", len(regions))
	}

	r := regions[0]
	if r.Start != 0x08000000 {
		t.Errorf("Start = 0x%x, want 0x08000000", r.Start)
	}
	if r.Length != 0x8000 {
		t.Errorf("Length = 0x%x, want 0x8000", r.Length)
	}
	if r.BlockSize == nil || *r.BlockSize != 0x400 {
		t.Errorf("BlockSize = %v, want 0x400", r.BlockSize)
	}
}

func TestParseMemoryMapWithoutBlockSize(t *testing.T) {
	doc := `<memory-map><memory type="flash" start="0x0" length="0x1000"/></memory-map>`
	regions, err := ParseMemoryMap([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMemoryMap: %v", err)
	}
	if len(regions) != 1 || regions[0].BlockSize != nil {
		t.Fatalf("regions = %+v, want one region with nil BlockSize", regions)
	}
}

func TestParseMemoryMapPreservesDocumentOrder(t *testing.T) {
	doc := `<memory-map>
  <memory type="flash" start="0x08000000" length="0x8000"/>
  <memory type="flash" start="0x08100000" length="0x4000"/>
</memory-map>`
	regions, err := ParseMemoryMap([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMemoryMap: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if regions[0].Start != 0x08000000 || regions[1].Start != 0x08100000 {
		t.Errorf("region order wrong: %+v", regions)
	}
}

func TestParseMemoryMapMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad start hex", `<memory-map><memory type="flash" start="zz" length="0x1000"/></memory-map>`},
		{"bad blocksize hex", `<memory-map><memory type="flash" start="0x0" length="0x1000"><property name="blocksize">nope</property></memory></memory-map>`},
		{"truncated document", `<memory-map><memory type="flash" start="0x0" length="0x1000">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMemoryMap([]byte(tt.doc)); !errors.Is(err, ErrMalformedMemoryMap) {
				t.Errorf("got %v, want ErrMalformedMemoryMap", err)
			}
		})
	}
}

// Hex parse failures in non-flash regions are irrelevant; those elements
// never produce a region and are skipped wholesale.
func TestParseMemoryMapIgnoresNonFlashAttributes(t *testing.T) {
	doc := `<memory-map>
  <memory type="rom" start="bogus" length="also-bogus"/>
  <memory type="flash" start="0x0" length="0x1000"/>
</memory-map>`
	regions, err := ParseMemoryMap([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMemoryMap: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
}

func TestFlashRegions(t *testing.T) {
	payload := append([]byte{'l'}, []byte(sampleMemoryMap)...)
	c, tr := connectedClient(t, ackThen(rspPacket(payload)))

	regions, err := c.FlashRegions()
	if err != nil {
		t.Fatalf("FlashRegions: %v", err)
	}
	if len(regions) != 1 || regions[0].Start != 0x08000000 {
		t.Fatalf("regions = %+v", regions)
	}
	if got := string(tr.Sent[0]); !strings.Contains(got, "qXfer:memory-map:read::0,fff") {
		t.Errorf("frame %q lacks qXfer command", got)
	}
}

func TestFlashRegionsRemoteError(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"error marker", []byte("E01")},
		{"empty response", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := connectedClient(t, ackThen(rspPacket(tt.payload)))
			_, err := c.FlashRegions()
			var rr *RemoteRejectedError
			if !errors.As(err, &rr) {
				t.Fatalf("got %v, want RemoteRejectedError", err)
			}
		})
	}
}
