package rsp

import "fmt"

// Framing characters of the RSP envelope. A payload byte equal to any of
// escapedBytes must be escaped as escapeChar followed by the byte XOR 0x20.
const (
	packetStart = '$'
	packetEnd   = '#'
	escapeChar  = '}'
	escapeXOR   = 0x20

	ackByte  = '+'
	nackByte = '-'
)

func needsEscape(b byte) bool {
	return b == packetEnd || b == packetStart || b == '*' || b == escapeChar
}

// Checksum computes the RSP packet checksum: the 8-bit wrapping sum of
// every byte of the frame body.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Escape makes binary data safe to embed in a packet body by escaping the
// four protocol-significant bytes '#', '$', '*' and '}'.
func Escape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if needsEscape(b) {
			out = append(out, escapeChar, b^escapeXOR)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// Unescape reverses Escape exactly. A '}' that is not followed by another
// byte is malformed.
func Unescape(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != escapeChar {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(data) {
			return nil, fmt.Errorf("rsp: truncated escape sequence at offset %d", i-1)
		}
		out = append(out, data[i]^escapeXOR)
	}
	return out, nil
}

// buildFrame assembles $<prefix><binary>#<checksum>. The binary portion
// must already be escaped by the caller; the checksum covers the body
// exactly as transmitted.
func buildFrame(prefix string, binary []byte) []byte {
	body := make([]byte, 0, len(prefix)+len(binary))
	body = append(body, prefix...)
	body = append(body, binary...)

	frame := make([]byte, 0, len(body)+4)
	frame = append(frame, packetStart)
	frame = append(frame, body...)
	frame = append(frame, packetEnd)
	frame = append(frame, fmt.Sprintf("%02x", Checksum(body))...)
	return frame
}
