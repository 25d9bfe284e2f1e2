package crispy

import (
	"errors"

	"github.com/saad-KH/CrispyPhysics-sub000/actor"
)

var (
	// ErrInvalidConfig reports a configuration the world cannot run with.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrOutOfRange reports a tick outside the retained timeline.
	ErrOutOfRange = actor.ErrOutOfRange

	// ErrTickOverflow reports a step past the representable ticks. The
	// world is left untouched and must be rebuilt to go further.
	ErrTickOverflow = errors.New("tick overflow")

	// ErrBodyIDExhausted reports that no body id is left.
	ErrBodyIDExhausted = errors.New("body ids exhausted")

	// ErrZeroCapacity reports an island created without room for a body.
	ErrZeroCapacity = errors.New("zero capacity")

	// ErrLocked reports a structural change requested while the world is
	// stepping or rolling back, typically from an event listener.
	ErrLocked = errors.New("world is locked")
)

// assert panics when an engine invariant does not hold.
func assert(condition bool, message string) {
	if !condition {
		panic("crispy: " + message)
	}
}
