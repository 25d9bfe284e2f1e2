package crispy

import (
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
)

type pendingEvent struct {
	contact *actor.Contact
	event   actor.Event
}

// triggers buffers the committed contact transitions of a step or a
// rollback, to send them once every timeline has moved.
type triggers struct {
	buffer []pendingEvent
}

// record compares the touching state of c before and after its current
// cursor moved.
func (t *triggers) record(c *actor.Contact, before actor.ContactMomentum) {
	after := c.Current()
	switch {
	case after.IsTouching && !before.IsTouching:
		t.buffer = append(t.buffer, pendingEvent{
			contact: c,
			event:   actor.ContactStartedEvent{Contact: c, Momentum: after.Snapshot()},
		})
	case !after.IsTouching && before.IsTouching:
		t.buffer = append(t.buffer, pendingEvent{
			contact: c,
			event:   actor.ContactEndedEvent{Contact: c, Momentum: after.Snapshot()},
		})
	}
}

// flush sends every buffered event to the first body, the second body,
// then the world listeners, and clears the buffer.
func (t *triggers) flush(world *actor.Events) {
	buffer := t.buffer
	t.buffer = nil

	for _, p := range buffer {
		p.contact.First().Events().Emit(p.event)
		p.contact.Second().Events().Emit(p.event)
		world.Emit(p.event)
	}
}
