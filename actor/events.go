package actor

const (
	FUTUR_CLEARED EventType = iota
	CONTACT_START_FORESEEN
	CONTACT_END_FORESEEN
	CONTACT_STARTED
	CONTACT_ENDED
	EXTERNAL_CHANGE
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case FUTUR_CLEARED:
		return "futur_cleared"
	case CONTACT_START_FORESEEN:
		return "contact_start_foreseen"
	case CONTACT_END_FORESEEN:
		return "contact_end_foreseen"
	case CONTACT_STARTED:
		return "contact_started"
	case CONTACT_ENDED:
		return "contact_ended"
	case EXTERNAL_CHANGE:
		return "external_change"
	default:
		return "unknown"
	}
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// FuturClearedEvent is sent when foreseen state was discarded after an
// external change. Tick is the last tick kept.
type FuturClearedEvent struct {
	Tick uint32
}

func (e FuturClearedEvent) Type() EventType { return FUTUR_CLEARED }

// Contact events carry the contact and a detached copy of its momentum at
// the tick of the transition.
type ContactStartForeseenEvent struct {
	Contact  *Contact
	Momentum ContactMomentum
}

func (e ContactStartForeseenEvent) Type() EventType { return CONTACT_START_FORESEEN }

type ContactEndForeseenEvent struct {
	Contact  *Contact
	Momentum ContactMomentum
}

func (e ContactEndForeseenEvent) Type() EventType { return CONTACT_END_FORESEEN }

type ContactStartedEvent struct {
	Contact  *Contact
	Momentum ContactMomentum
}

func (e ContactStartedEvent) Type() EventType { return CONTACT_STARTED }

type ContactEndedEvent struct {
	Contact  *Contact
	Momentum ContactMomentum
}

func (e ContactEndedEvent) Type() EventType { return CONTACT_ENDED }

// ExternalChangeEvent is sent when a body's current momentum is changed
// from outside the simulation.
type ExternalChangeEvent struct {
	Body     *Body
	Momentum Momentum
}

func (e ExternalChangeEvent) Type() EventType { return EXTERNAL_CHANGE }

// EventListener - callback for events
type EventListener func(event Event)

// Events dispatches events to listeners, inline and in subscription order.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// Emit sends event to every listener of its type.
func (e *Events) Emit(event Event) {
	for _, listener := range e.listeners[event.Type()] {
		listener(event)
	}
}
