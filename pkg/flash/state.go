package flash

import (
	"errors"

	"github.com/hempflower/openocd-agdi/pkg/log"
)

// ErrNoFlashRegion is returned when the target's memory map contains no
// flash region to program.
var ErrNoFlashRegion = errors.New("flash: target reports no flash region")

// State represents the position of a download in its sequence.
type State int

const (
	StateInit State = iota
	StateRegionsDiscovered
	StateErased
	StateWriting
	StateDone
	StateSucceeded
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateRegionsDiscovered:
		return "RegionsDiscovered"
	case StateErased:
		return "Erased"
	case StateWriting:
		return "Writing"
	case StateDone:
		return "Done"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// validNext lists the forward transitions of the download sequence.
// StateFailed is reachable from everywhere and is handled separately;
// the two terminal states have no successors.
var validNext = map[State]State{
	StateInit:              StateRegionsDiscovered,
	StateRegionsDiscovered: StateErased,
	StateErased:            StateWriting,
	StateWriting:           StateDone,
	StateDone:              StateSucceeded,
}

// advance moves the download to the next state, logging the transition.
// A skip in the sequence indicates a bug in the orchestrator, not a
// target failure, and is logged as such.
func (d *Downloader) advance(to State) {
	from := d.state
	if validNext[from] != to && !(from == StateWriting && to == StateWriting) {
		d.logger.Error("invalid state transition",
			log.String("from", from.String()),
			log.String("to", to.String()),
		)
	}
	d.state = to
	d.logger.Debug("state transition",
		log.String("from", from.String()),
		log.String("to", to.String()),
	)
}
