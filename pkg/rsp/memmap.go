package rsp

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FlashRegion describes one contiguous flash address range announced by
// the target's memory map. BlockSize is nil when the map carries no
// blocksize property for the region. Immutable once produced.
type FlashRegion struct {
	Start     uint64
	Length    uint64
	BlockSize *uint64
}

// FlashRegions retrieves the target memory map via qXfer and returns its
// flash regions in document order.
//
// The leading transfer marker ('m' = more data follows, 'l' = last chunk)
// is stripped and both are accepted identically; multi-chunk continuation
// is not implemented, 0xfff covers every map seen in practice.
func (c *Client) FlashRegions() ([]FlashRegion, error) {
	const cmd = "qXfer:memory-map:read::0,fff"
	resp, err := c.SendCommand(cmd, nil)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 || resp[0] == 'E' {
		return nil, &RemoteRejectedError{Command: cmd, Response: resp}
	}
	return ParseMemoryMap(resp[1:])
}

// ParseMemoryMap parses a memory-map XML document and returns its flash
// regions in document order. Regions of any other type are skipped. A
// malformed document or a malformed hexadecimal value fails the whole
// parse; there is no best-effort partial result.
func ParseMemoryMap(doc []byte) ([]FlashRegion, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var regions []FlashRegion
	var current *FlashRegion
	inBlockSize := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMemoryMap, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "memory":
				region, isFlash, err := parseMemoryElement(t)
				if err != nil {
					return nil, err
				}
				if isFlash {
					current = &region
				}
			case "property":
				if current != nil && attrValue(t, "name") == "blocksize" {
					inBlockSize = true
				}
			}

		case xml.CharData:
			if inBlockSize && current != nil {
				text := strings.TrimSpace(string(t))
				if text == "" {
					continue
				}
				bs, err := parseHexUint(text)
				if err != nil {
					return nil, fmt.Errorf("%w: blocksize %q", ErrMalformedMemoryMap, text)
				}
				current.BlockSize = &bs
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "property":
				inBlockSize = false
			case "memory":
				if current != nil {
					regions = append(regions, *current)
					current = nil
				}
			}
		}
	}

	return regions, nil
}

// parseMemoryElement extracts start/length from a <memory> element and
// reports whether its type is flash. Non-flash elements are not hex-checked;
// they never produce a region.
func parseMemoryElement(el xml.StartElement) (FlashRegion, bool, error) {
	if attrValue(el, "type") != "flash" {
		return FlashRegion{}, false, nil
	}

	var region FlashRegion
	var err error
	if region.Start, err = parseHexUint(attrValue(el, "start")); err != nil {
		return FlashRegion{}, false, fmt.Errorf("%w: start %q", ErrMalformedMemoryMap, attrValue(el, "start"))
	}
	if region.Length, err = parseHexUint(attrValue(el, "length")); err != nil {
		return FlashRegion{}, false, fmt.Errorf("%w: length %q", ErrMalformedMemoryMap, attrValue(el, "length"))
	}
	return region, true, nil
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// parseHexUint parses a hexadecimal number with or without a 0x prefix.
func parseHexUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}
