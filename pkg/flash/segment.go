package flash

// Segment is one piece of the image to program. The orchestrator only
// reads Data for the duration of one write; ownership of the buffer stays
// with the source.
type Segment struct {
	// Addr is the target address the segment is written to.
	Addr uint32

	// Data is the segment payload. A zero-length Data signals end of data.
	Data []byte

	// TotalSize is the declared size of the whole download. The erase
	// range and progress percentages are computed from it.
	TotalSize uint32

	// HasMore indicates the source expects to yield further segments.
	HasMore bool
}

// SegmentSource yields successive segments of the image, terminated by a
// segment with zero-length Data.
type SegmentSource interface {
	Next() (Segment, error)
}
