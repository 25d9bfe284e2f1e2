package crispy

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/collision"
)

// pairKey identifies a pair of bodies regardless of their order.
type pairKey struct {
	low, high uint32
}

func makePairKey(a, b *actor.Body) pairKey {
	if b.ID() < a.ID() {
		a, b = b, a
	}
	return pairKey{low: a.ID(), high: b.ID()}
}

func (k pairKey) compare(other pairKey) int {
	if c := cmp.Compare(k.low, other.low); c != 0 {
		return c
	}
	return cmp.Compare(k.high, other.high)
}

func contactKey(c *actor.Contact) pairKey {
	return makePairKey(c.First(), c.Second())
}

func compareContacts(a, b *actor.Contact) int {
	return contactKey(a).compare(contactKey(b))
}

// ContactManager owns the live contacts. Contacts and the per body
// adjacency lists are kept sorted by body ids, so every traversal runs in
// the same order on every replay.
type ContactManager struct {
	contacts  []*actor.Contact
	pairs     map[pairKey]*actor.Contact
	adjacency map[uint32][]*actor.Contact

	events *actor.Events
	logger *slog.Logger
}

// NewContactManager creates a manager sending foreseen contact events to
// events.
func NewContactManager(events *actor.Events, logger *slog.Logger) *ContactManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContactManager{
		pairs:     make(map[pairKey]*actor.Contact),
		adjacency: make(map[uint32][]*actor.Contact),
		events:    events,
		logger:    logger,
	}
}

// Contacts returns the live contacts, sorted by body ids.
func (cm *ContactManager) Contacts() []*actor.Contact {
	return cm.contacts
}

func (cm *ContactManager) Len() int {
	return len(cm.contacts)
}

// Contact returns the contact between a and b, if any.
func (cm *ContactManager) Contact(a, b *actor.Body) (*actor.Contact, bool) {
	c, ok := cm.pairs[makePairKey(a, b)]
	return c, ok
}

// ContactsOf returns the contacts b takes part in, sorted by body ids.
func (cm *ContactManager) ContactsOf(b *actor.Body) []*actor.Contact {
	return cm.adjacency[b.ID()]
}

// shouldCollide filters pairs that can never produce a response.
func shouldCollide(a, b *actor.Body) bool {
	if a.Shape() == nil || b.Shape() == nil {
		return false
	}
	if a.Type() != actor.BodyTypeDynamic && b.Type() != actor.BodyTypeDynamic {
		return false
	}
	return actor.Supported(a.Shape().Kind(), b.Shape().Kind())
}

// FindNewContacts creates a contact for every pair of bodies whose
// bounding boxes overlap at the foreseen tick. New contacts start apart at
// tick and are foreseen up to futurTick. Existing pairs are left as they
// are.
func (cm *ContactManager) FindNewContacts(bodies []*actor.Body, tick, futurTick uint32) {
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			if !shouldCollide(a, b) {
				continue
			}
			if _, exists := cm.pairs[makePairKey(a, b)]; exists {
				continue
			}

			aabbA, _ := a.AABB(a.Futur())
			aabbB, _ := b.AABB(b.Futur())
			if !collision.TestOverlap(aabbA, aabbB) {
				continue
			}

			cm.addPair(a, b, tick, futurTick)
		}
	}
}

func (cm *ContactManager) addPair(a, b *actor.Body, tick, futurTick uint32) {
	key := makePairKey(a, b)
	if _, exists := cm.pairs[key]; exists {
		return
	}

	c, err := actor.NewContact(a, b, tick)
	assert(err == nil, fmt.Sprintf("contact of filtered pair %v: %v", key, err))
	if futurTick > tick {
		c.Foresee(futurTick - tick)
	}

	cm.pairs[key] = c
	cm.contacts = insertSorted(cm.contacts, c)
	cm.adjacency[key.low] = insertSorted(cm.adjacency[key.low], c)
	cm.adjacency[key.high] = insertSorted(cm.adjacency[key.high], c)

	cm.logger.Debug("contact created", "first", c.First().ID(), "second", c.Second().ID(), "tick", futurTick)
}

func insertSorted(contacts []*actor.Contact, c *actor.Contact) []*actor.Contact {
	i, _ := slices.BinarySearchFunc(contacts, c, compareContacts)
	return slices.Insert(contacts, i, c)
}

func removeSorted(contacts []*actor.Contact, c *actor.Contact) []*actor.Contact {
	i, found := slices.BinarySearchFunc(contacts, c, compareContacts)
	assert(found && contacts[i] == c, "contact missing from its list")
	return slices.Delete(contacts, i, i+1)
}

// Collide evaluates every contact at the foreseen tick. Sensors only
// check their bounding boxes; other pairs get a manifold warm started
// from the previous tick, and mark both bodies in enduring contact while
// touching. Touching transitions raise the foreseen contact events.
func (cm *ContactManager) Collide() {
	for _, c := range cm.contacts {
		first, second := c.First(), c.Second()
		momentumA, momentumB := first.FuturMomentum(), second.FuturMomentum()

		m := c.FuturMomentum()
		wasTouching := m.IsTouching
		previous := m.Manifold

		var touching bool
		if c.IsSensor() {
			aabbA, _ := first.AABB(*momentumA)
			aabbB, _ := second.AABB(*momentumB)
			touching = collision.TestOverlap(aabbA, aabbB)
			m.Manifold = nil
		} else {
			manifold := c.Evaluate(momentumA.Transform(), momentumB.Transform())
			touching = manifold.Touching()
			if touching {
				manifold.WarmStartFrom(previous)
				m.Manifold = &manifold
			} else {
				m.Manifold = nil
			}
		}

		m.IsTouching = touching
		m.FirstBodyPosition = momentumA.Position
		m.SecondBodyPosition = momentumB.Position

		if touching && !c.IsSensor() {
			momentumA.EnduringContact = true
			momentumB.EnduringContact = true
		}

		switch {
		case touching && !wasTouching:
			cm.events.Emit(actor.ContactStartForeseenEvent{Contact: c, Momentum: m.Snapshot()})
		case !touching && wasTouching:
			cm.events.Emit(actor.ContactEndForeseenEvent{Contact: c, Momentum: m.Snapshot()})
		}
	}
}

// Prune removes the contacts with no touching state left in their
// timeline and returns them.
func (cm *ContactManager) Prune() []*actor.Contact {
	var dropped []*actor.Contact
	for _, c := range cm.contacts {
		if c.Droppable() {
			dropped = append(dropped, c)
		}
	}

	for _, c := range dropped {
		key := contactKey(c)
		assert(cm.pairs[key] == c, "dropped contact not registered")

		delete(cm.pairs, key)
		cm.contacts = removeSorted(cm.contacts, c)
		cm.adjacency[key.low] = removeSorted(cm.adjacency[key.low], c)
		cm.adjacency[key.high] = removeSorted(cm.adjacency[key.high], c)
		if len(cm.adjacency[key.low]) == 0 {
			delete(cm.adjacency, key.low)
		}
		if len(cm.adjacency[key.high]) == 0 {
			delete(cm.adjacency, key.high)
		}

		cm.logger.Debug("contact dropped", "first", c.First().ID(), "second", c.Second().ID())
	}
	return dropped
}
