package protocol

import "errors"

// Depth limits for recursive structures.
const (
	// MaxVNodeDepth limits the nesting depth of encoded node trees.
	MaxVNodeDepth = 256

	// MaxPatchDepth limits the nesting depth of patch trees.
	MaxPatchDepth = 256

	// MaxValueDepth limits the nesting of lists and maps in values.
	MaxValueDepth = 64
)

// ErrMaxDepthExceeded is returned when decoding nests past a limit.
var ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")

// depthContext tracks the decoding depth of one recursive structure.
type depthContext struct {
	current int
	max     int
}

func newDepthContext(max int) *depthContext {
	return &depthContext{max: max}
}

// enter increments the depth, failing once the limit is reached.
func (dc *depthContext) enter() error {
	if dc.current >= dc.max {
		return ErrMaxDepthExceeded
	}
	dc.current++
	return nil
}

func (dc *depthContext) leave() {
	dc.current--
}
