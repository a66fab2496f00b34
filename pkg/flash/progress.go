package flash

// ProgressJob identifies the kind of progress notification.
// The numeric values match the progress job codes of the Keil AGDI
// host interface this library was built to serve.
type ProgressJob int

const (
	// ProgressInit opens a progress display with a label.
	ProgressInit ProgressJob = 1

	// ProgressKill closes the progress display. Emitted only when the
	// whole download succeeded.
	ProgressKill ProgressJob = 2

	// ProgressSetPos moves the progress position within [Low, High].
	ProgressSetPos ProgressJob = 3
)

// String returns a human-readable representation of the job.
func (j ProgressJob) String() string {
	switch j {
	case ProgressInit:
		return "Init"
	case ProgressKill:
		return "Kill"
	case ProgressSetPos:
		return "SetPos"
	default:
		return "Unknown"
	}
}

// ProgressReport is a purely outbound notification; it carries no internal
// state of the download.
type ProgressReport struct {
	Job  ProgressJob
	Pos  int
	Low  int
	High int

	// Label is the text shown before the progress display (Init only).
	Label string

	// Text replaces the percentage display when non-empty.
	Text string
}

// ProgressSink receives progress notifications during a download.
// Implementations should return quickly; they are called synchronously
// from the download sequence.
type ProgressSink interface {
	Report(ProgressReport)
}

// NoopProgress discards all progress reports. Used when no sink is
// installed so that progress calls are well-defined no-ops.
type NoopProgress struct{}

// Report discards the report.
func (NoopProgress) Report(ProgressReport) {}
