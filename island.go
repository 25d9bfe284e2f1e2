package crispy

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/constraint"
)

// Island is a set of bodies connected by touching contacts, solved
// together at the foreseen tick. The first body added is the seed.
type Island struct {
	bodies   []*actor.Body
	contacts []*actor.Contact

	positions  []constraint.Position
	velocities []constraint.Velocity
}

// NewIsland creates an island with room for the given number of bodies
// and contacts.
func NewIsland(bodyCapacity, contactCapacity int) (*Island, error) {
	if bodyCapacity <= 0 {
		return nil, fmt.Errorf("island of %d bodies: %w", bodyCapacity, ErrZeroCapacity)
	}
	return &Island{
		bodies:     make([]*actor.Body, 0, bodyCapacity),
		contacts:   make([]*actor.Contact, 0, max(contactCapacity, 0)),
		positions:  make([]constraint.Position, 0, bodyCapacity),
		velocities: make([]constraint.Velocity, 0, bodyCapacity),
	}, nil
}

// Clear empties the island, keeping its storage.
func (island *Island) Clear() {
	island.bodies = island.bodies[:0]
	island.contacts = island.contacts[:0]
	island.positions = island.positions[:0]
	island.velocities = island.velocities[:0]
}

// AddBody binds b to the island at the next index.
func (island *Island) AddBody(b *actor.Body) {
	b.BindIsland(len(island.bodies))
	island.bodies = append(island.bodies, b)
	island.positions = append(island.positions, constraint.Position{})
	island.velocities = append(island.velocities, constraint.Velocity{})
}

// AddContact binds c to the island.
func (island *Island) AddContact(c *actor.Contact) {
	c.BindIsland()
	island.contacts = append(island.contacts, c)
}

func (island *Island) Bodies() []*actor.Body {
	return island.bodies
}

func (island *Island) Contacts() []*actor.Contact {
	return island.contacts
}

// Solve integrates the island over one step and resolves its contacts,
// writing the result into the foreseen momentum of its dynamic bodies.
// Static and kinematic bodies are read only.
func (island *Island) Solve(step constraint.TimeStep, gravity mgl64.Vec2) {
	h := step.Dt

	// Integrate velocities and apply damping
	for i, b := range island.bodies {
		m := b.FuturMomentum()
		v := m.LinearVelocity
		w := m.AngularVelocity

		if b.Type() == actor.BodyTypeDynamic {
			v = v.Add(gravity.Mul(b.GravityScale()).Add(m.Force.Mul(b.InvMass())).Mul(h))
			w += h * b.InvMass() * m.Torque

			// Pade approximation of v * exp(-c * h)
			v = v.Mul(1.0 / (1.0 + h*b.LinearDamping()))
			w *= 1.0 / (1.0 + h*b.AngularDamping())
		}

		island.positions[i] = constraint.Position{C: m.Position, A: m.Angle}
		island.velocities[i] = constraint.Velocity{V: v, W: w}
	}

	var solver *constraint.ContactSolver
	if len(island.contacts) > 0 {
		solver = constraint.NewContactSolver(step, island.contacts, island.positions, island.velocities)
		solver.InitializeVelocityConstraints()
		if step.WarmStarting {
			solver.WarmStart()
		}
		for range step.VelocityIterations {
			solver.SolveVelocityConstraints()
		}
		solver.StoreImpulses()
	}

	// Integrate positions
	for i := range island.bodies {
		v := constraint.ClampVelocity(island.velocities[i], step)
		island.positions[i].C = island.positions[i].C.Add(v.V.Mul(h))
		island.positions[i].A += h * v.W
		island.velocities[i] = v
	}

	if solver != nil {
		for range step.PositionIterations {
			if solver.SolvePositionConstraints() {
				break
			}
		}
	}

	for i, b := range island.bodies {
		if b.Type() != actor.BodyTypeDynamic {
			continue
		}
		m := b.FuturMomentum()
		m.Position = island.positions[i].C
		m.Angle = island.positions[i].A
		m.LinearVelocity = island.velocities[i].V
		m.AngularVelocity = island.velocities[i].W
	}
}

// advanceKinematic moves a kinematic body by its velocity over one step.
func advanceKinematic(b *actor.Body, step constraint.TimeStep) {
	m := b.FuturMomentum()
	v := constraint.ClampVelocity(constraint.Velocity{V: m.LinearVelocity, W: m.AngularVelocity}, step)

	m.Position = m.Position.Add(v.V.Mul(step.Dt))
	m.Angle += step.Dt * v.W
	m.LinearVelocity = v.V
	m.AngularVelocity = v.W
}

// Release unbinds everything but the dynamic bodies, which stay bound
// until the next tick.
func (island *Island) Release() {
	for _, b := range island.bodies {
		if b.Type() != actor.BodyTypeDynamic {
			b.ReleaseIsland()
		}
	}
}
