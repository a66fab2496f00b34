// Package flash orchestrates a complete flash download over an rsp.Client:
// discover the target's flash regions, erase, stream caller-supplied data
// segments, report progress, and finalize.
//
// The orchestrator is deliberately dumb about where data comes from and
// where progress goes: segments arrive through a SegmentSource and progress
// leaves through a ProgressSink, both injected at construction time. The
// connection is never released by the orchestrator itself; the caller owns
// the disconnect on every exit path, success or failure.
package flash
