package record

import (
	"context"
	"fmt"

	crispy "github.com/saad-KH/CrispyPhysics-sub000"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
)

// Recorder writes a world's committed states into a store. Contact
// transitions are written as the world sends them; momentums are written
// on Commit.
type Recorder struct {
	store *Store
	world *crispy.World
	runID string
	names []string
	known int

	// ctx is used by the contact listeners, which cannot take one.
	ctx context.Context
	err error
}

// NewRecorder begins a run for world. names[i] names the body of id i;
// missing names default to "body<id>".
func NewRecorder(ctx context.Context, store *Store, scenario string, world *crispy.World, names []string) (*Recorder, error) {
	runID, err := store.BeginRun(ctx, scenario, world.Config().FixedStep)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		store: store,
		world: world,
		runID: runID,
		names: names,
		ctx:   ctx,
	}
	if err := r.registerBodies(ctx); err != nil {
		return nil, err
	}

	events := world.Events()
	events.Subscribe(actor.CONTACT_STARTED, r.contact)
	events.Subscribe(actor.CONTACT_ENDED, r.contact)

	return r, nil
}

func (r *Recorder) RunID() string {
	return r.runID
}

// Err returns the first error raised while recording contact events.
func (r *Recorder) Err() error {
	return r.err
}

// Commit writes the current momentum of every body.
func (r *Recorder) Commit(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	if err := r.registerBodies(ctx); err != nil {
		return err
	}
	return r.store.WriteMomentums(ctx, r.runID, r.world.Bodies())
}

func (r *Recorder) registerBodies(ctx context.Context) error {
	bodies := r.world.Bodies()
	for _, b := range bodies[r.known:] {
		name := fmt.Sprintf("body%d", b.ID())
		if int(b.ID()) < len(r.names) {
			name = r.names[b.ID()]
		}
		if err := r.store.WriteBody(ctx, r.runID, b.ID(), name, b.Type()); err != nil {
			return err
		}
	}
	r.known = len(bodies)
	return nil
}

func (r *Recorder) contact(event actor.Event) {
	if r.err != nil {
		return
	}

	var (
		c    *actor.Contact
		m    actor.ContactMomentum
		kind string
	)
	switch e := event.(type) {
	case actor.ContactStartedEvent:
		c, m, kind = e.Contact, e.Momentum, "started"
	case actor.ContactEndedEvent:
		c, m, kind = e.Contact, e.Momentum, "ended"
	default:
		return
	}

	record := ContactEventRecord{
		Tick:         m.Tick(),
		Kind:         kind,
		FirstBodyID:  c.First().ID(),
		SecondBodyID: c.Second().ID(),
	}
	if m.Manifold != nil {
		record.PointCount = m.Manifold.PointCount
	}
	r.err = r.store.WriteContactEvent(r.ctx, r.runID, record)
}
