package flash

// DefaultSegmentSize is how much image data a BytesSource yields per
// segment when no size is given.
const DefaultSegmentSize = 4096

// BytesSource yields an in-memory firmware image as fixed-size segments
// laid out contiguously from a base address. It satisfies SegmentSource.
type BytesSource struct {
	addr        uint32
	data        []byte
	segmentSize int
	offset      int
}

// NewBytesSource creates a source over data starting at addr. A
// non-positive segmentSize falls back to DefaultSegmentSize.
func NewBytesSource(addr uint32, data []byte, segmentSize int) *BytesSource {
	if segmentSize <= 0 {
		segmentSize = DefaultSegmentSize
	}
	return &BytesSource{
		addr:        addr,
		data:        data,
		segmentSize: segmentSize,
	}
}

// Next returns the next segment of the image. After the image is
// exhausted it keeps returning end-of-data segments.
func (s *BytesSource) Next() (Segment, error) {
	total := uint32(len(s.data))
	if s.offset >= len(s.data) {
		return Segment{Addr: s.addr + uint32(s.offset), TotalSize: total}, nil
	}

	end := s.offset + s.segmentSize
	if end > len(s.data) {
		end = len(s.data)
	}
	seg := Segment{
		Addr:      s.addr + uint32(s.offset),
		Data:      s.data[s.offset:end],
		TotalSize: total,
		HasMore:   end < len(s.data),
	}
	s.offset = end
	return seg, nil
}
