// Package crispy is a 2D rigid body simulation keeping a timeline of
// states per body and per contact. The world can be stepped, foresee its
// future ahead of time, roll back and replay, while bodies can reconcile
// their predicted trajectory with an authoritative one.
package crispy

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/saad-KH/CrispyPhysics-sub000/actor"
)

type World struct {
	config Config
	logger *slog.Logger

	// pastTick <= tick <= futurTick
	tick      uint32
	pastTick  uint32
	futurTick uint32

	// Bodies in creation order; a body's id is its index.
	bodies   []*actor.Body
	contacts *ContactManager
	nextID   uint32

	// changed is set by any external change since the last step.
	changed bool
	// locked is set while stepping or rolling back. Body changes are held
	// meanwhile.
	locked bool

	events   actor.Events
	triggers triggers
}

// Option configures a World.
type Option func(w *World)

// WithLogger sets the logger of the world. Records are emitted at debug
// level.
func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorld creates an empty world at tick 0.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		config: cfg,
		logger: slog.New(slog.DiscardHandler),
		events: actor.NewEvents(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.contacts = NewContactManager(&w.events, w.logger)

	return w, nil
}

func (w *World) Config() Config {
	return w.config
}

// Tick returns the current, committed tick.
func (w *World) Tick() uint32 {
	return w.tick
}

// PastTick returns the oldest tick still retained.
func (w *World) PastTick() uint32 {
	return w.pastTick
}

// FuturTick returns the last foreseen tick.
func (w *World) FuturTick() uint32 {
	return w.futurTick
}

// Events gives access to the world listeners: futur cleared and the four
// contact transitions.
func (w *World) Events() *actor.Events {
	return &w.events
}

// Bodies returns the bodies in creation order.
func (w *World) Bodies() []*actor.Body {
	return slices.Clone(w.bodies)
}

// Body returns the body with the given id.
func (w *World) Body(id uint32) (*actor.Body, bool) {
	if int64(id) >= int64(len(w.bodies)) {
		return nil, false
	}
	return w.bodies[id], true
}

// Contacts returns the live contacts, sorted by body ids.
func (w *World) Contacts() []*actor.Contact {
	return slices.Clone(w.contacts.Contacts())
}

// Contact returns the live contact between a and b, if any.
func (w *World) Contact(a, b *actor.Body) (*actor.Contact, bool) {
	return w.contacts.Contact(a, b)
}

// CreateBody adds a body at the current tick. The foreseen future is
// invalidated and recomputed at the next step.
func (w *World) CreateBody(def actor.BodyDef) (*actor.Body, error) {
	if w.locked {
		return nil, fmt.Errorf("create body: %w", ErrLocked)
	}
	if w.nextID == math.MaxUint32 {
		return nil, ErrBodyIDExhausted
	}

	b, err := actor.NewBody(w.nextID, w.tick, w.config.FixedStep, def)
	if err != nil {
		return nil, err
	}
	w.nextID++

	b.Events().Subscribe(actor.EXTERNAL_CHANGE, func(actor.Event) {
		w.changed = true
	})
	w.bodies = append(w.bodies, b)
	w.changed = true

	return b, nil
}

// Step advances the current tick by steps. Beforehand, the future is
// foreseen so that it reaches the new tick and extends foreseeTicks past
// it, by at most bufferingTicks more than the new tick per call. History
// older than keepTicks before the new tick is forgotten.
func (w *World) Step(steps, foreseeTicks, bufferingTicks, keepTicks uint32) error {
	assert(!w.locked, "step while locked")

	target := uint64(w.tick) + uint64(steps)
	if target > math.MaxUint32 {
		return fmt.Errorf("step %d from tick %d: %w", steps, w.tick, ErrTickOverflow)
	}
	tick := uint32(target)

	futurTick := w.futurTick
	if w.changed {
		futurTick = w.tick
	}
	foresee := foreseeCount(tick, futurTick, foreseeTicks, bufferingTicks)
	if uint64(futurTick)+foresee > math.MaxUint32 {
		return fmt.Errorf("foresee %d ticks from tick %d: %w", foresee, futurTick, ErrTickOverflow)
	}

	w.lock()
	defer w.unlock()

	if w.changed {
		w.clearFutur()
	}

	if tick > keepTicks {
		w.pastTick = max(w.pastTick, tick-keepTicks)
	}

	for range foresee {
		w.foresee()
	}

	w.commit(tick)

	w.logger.Debug("step", "tick", w.tick, "past", w.pastTick, "futur", w.futurTick, "foreseen", foresee)
	return nil
}

// lock holds the external changes of every body until unlock, which
// applies them on the committed tick. They mark the world changed, so the
// next step foresees again from them.
func (w *World) lock() {
	w.locked = true
	for _, b := range w.bodies {
		b.HoldChanges()
	}
}

func (w *World) unlock() {
	w.locked = false
	for _, b := range w.bodies {
		b.ReleaseChanges()
	}
}

// foreseeCount returns the number of ticks to simulate so that the
// foreseen future covers tick and moves toward tick+foreseeTicks by at
// most bufferingTicks.
func foreseeCount(tick, futurTick, foreseeTicks, bufferingTicks uint32) uint64 {
	horizon := uint64(tick) + uint64(foreseeTicks)
	if futurTick > tick {
		if horizon <= uint64(futurTick) {
			return 0
		}
		return min(horizon-uint64(futurTick), uint64(bufferingTicks))
	}
	return uint64(tick-futurTick) + min(uint64(foreseeTicks), uint64(bufferingTicks))
}

// clearFutur drops every foreseen state after the current tick.
func (w *World) clearFutur() {
	w.changed = false
	if w.futurTick == w.tick {
		return
	}

	for _, b := range w.bodies {
		err := b.ClearFutur(w.tick + 1)
		assert(err == nil, fmt.Sprintf("clear futur of body %d: %v", b.ID(), err))
	}
	for _, c := range w.contacts.Contacts() {
		err := c.ClearFutur(w.tick + 1)
		assert(err == nil, fmt.Sprintf("clear futur of contact: %v", err))
	}
	w.futurTick = w.tick

	w.logger.Debug("futur cleared", "tick", w.tick)
	w.events.Emit(actor.FuturClearedEvent{Tick: w.tick})
}

// foresee simulates the tick after the foreseen future.
func (w *World) foresee() {
	w.futurTick++

	for _, b := range w.bodies {
		b.Foresee(1)
		assert(b.Futur().Tick() == w.futurTick, "body timeline out of step with the world")
		b.FuturMomentum().EnduringContact = false
	}
	for _, c := range w.contacts.Contacts() {
		c.Foresee(1)
	}

	w.contacts.FindNewContacts(w.bodies, w.tick, w.futurTick)
	w.contacts.Collide()
	w.solve()
}

// solve partitions the bodies into islands and solves each of them.
func (w *World) solve() {
	if len(w.bodies) == 0 {
		return
	}

	for _, b := range w.bodies {
		b.ReleaseIsland()
	}
	for _, c := range w.contacts.Contacts() {
		c.ReleaseIsland()
	}

	island, err := NewIsland(len(w.bodies), w.contacts.Len())
	assert(err == nil, fmt.Sprintf("island: %v", err))

	step := w.config.TimeStep()
	stack := make([]*actor.Body, 0, len(w.bodies))

	for _, seed := range w.bodies {
		if seed.InIsland() || seed.Type() != actor.BodyTypeDynamic {
			continue
		}

		island.Clear()
		island.AddBody(seed)
		stack = append(stack[:0], seed)

		// Depth first search on the contact graph
		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			// only dynamic bodies propagate
			if b.Type() != actor.BodyTypeDynamic {
				continue
			}

			for _, c := range w.contacts.ContactsOf(b) {
				if c.InIsland() || c.IsSensor() || !c.Futur().IsTouching {
					continue
				}
				island.AddContact(c)

				other := c.Other(b)
				if other.InIsland() {
					continue
				}
				island.AddBody(other)
				stack = append(stack, other)
			}
		}

		island.Solve(step, w.config.Gravity)
		island.Release()
	}

	// Kinematic bodies move last: every island reads them at the start of
	// the tick.
	for _, b := range w.bodies {
		if b.Type() == actor.BodyTypeKinematic {
			advanceKinematic(b, step)
		}
	}
}

// commit moves every timeline to tick, forgets the history before the
// past tick and drops the contacts left without touching state.
func (w *World) commit(tick uint32) {
	steps := tick - w.tick

	for _, b := range w.bodies {
		b.Step(steps)
		b.ForgetPast(w.pastTick)
	}
	for _, c := range w.contacts.Contacts() {
		before := c.Current()
		c.Step(steps)
		w.triggers.record(c, before)
		c.ForgetPast(w.pastTick)
	}
	w.tick = tick

	w.contacts.Prune()
	w.triggers.flush(&w.events)
}

// RollBack moves the current tick back to tick, which must still be
// retained. The foreseen future is kept: stepping again without external
// change replays it.
func (w *World) RollBack(tick, keepTicks uint32) error {
	assert(!w.locked, "roll back while locked")

	if tick > w.tick || tick < w.pastTick {
		return fmt.Errorf("roll back to %d outside [%d, %d]: %w", tick, w.pastTick, w.tick, ErrOutOfRange)
	}

	w.lock()
	defer w.unlock()

	w.tick = tick
	if tick > keepTicks {
		w.pastTick = max(w.pastTick, tick-keepTicks)
	}

	for _, b := range w.bodies {
		err := b.RollBack(tick)
		assert(err == nil, fmt.Sprintf("roll back body %d: %v", b.ID(), err))
		b.ForgetPast(w.pastTick)
	}
	for _, c := range w.contacts.Contacts() {
		before := c.Current()
		err := c.RollBack(tick)
		assert(err == nil, fmt.Sprintf("roll back contact: %v", err))
		w.triggers.record(c, before)
		c.ForgetPast(w.pastTick)
	}

	w.contacts.Prune()
	w.triggers.flush(&w.events)

	w.logger.Debug("roll back", "tick", w.tick, "past", w.pastTick, "futur", w.futurTick)
	return nil
}
