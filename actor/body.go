// Package actor holds the simulated objects: bodies and contacts, each
// owning a timeline of per-tick momentums.
package actor

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
	"github.com/saad-KH/CrispyPhysics-sub000/timeline"
)

var (
	// ErrInvalidArgument reports a constructor contract violation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedPair reports two shape kinds without a manifold
	// generator.
	ErrUnsupportedPair = errors.New("unsupported shape pair")
	// ErrOutOfRange reports a tick the timeline cannot serve.
	ErrOutOfRange = timeline.ErrOutOfRange
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeStatic bodies never move and have infinite mass
	BodyTypeStatic BodyType = iota

	// BodyTypeKinematic bodies move by their velocity only; they ignore
	// forces and contacts
	BodyTypeKinematic

	// BodyTypeDynamic bodies are affected by forces, gravity, and contacts
	BodyTypeDynamic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeStatic:
		return "static"
	case BodyTypeKinematic:
		return "kinematic"
	case BodyTypeDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// BodyDef describes a body to create.
type BodyDef struct {
	Position mgl64.Vec2
	Angle    float64
	Type     BodyType
	// Shape is optional; a body without shape never collides.
	Shape          shape.Shape
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	GravityScale   float64
	Friction       float64
	Restitution    float64
	Sensor         bool
}

// Body is a rigid body and the timeline of its momentums.
type Body struct {
	id       uint32
	bodyType BodyType
	shape    shape.Shape

	mass, invMass float64
	inertia, invI float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64
	friction       float64
	restitution    float64
	sensor         bool

	timeline *timeline.Timeline[Momentum]

	island      bool
	islandIndex int

	// Changes requested while holding are applied on ReleaseChanges.
	holding bool
	held    []func(m *Momentum)

	events Events
}

// NewBody creates a body whose timeline starts at tick with a momentum at
// rest, each tick lasting tickDt.
func NewBody(id uint32, tick uint32, tickDt float64, def BodyDef) (*Body, error) {
	switch {
	case tickDt <= 0:
		return nil, fmt.Errorf("tick duration %v: %w", tickDt, ErrInvalidArgument)
	case def.Mass < 0:
		return nil, fmt.Errorf("mass %v: %w", def.Mass, ErrInvalidArgument)
	case def.LinearDamping < 0 || def.AngularDamping < 0:
		return nil, fmt.Errorf("damping %v/%v: %w", def.LinearDamping, def.AngularDamping, ErrInvalidArgument)
	case def.Friction < 0 || def.Restitution < 0:
		return nil, fmt.Errorf("friction %v, restitution %v: %w", def.Friction, def.Restitution, ErrInvalidArgument)
	case def.Type < BodyTypeStatic || def.Type > BodyTypeDynamic:
		return nil, fmt.Errorf("body type %d: %w", def.Type, ErrInvalidArgument)
	}

	b := &Body{
		id:             id,
		bodyType:       def.Type,
		shape:          def.Shape,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		gravityScale:   def.GravityScale,
		friction:       def.Friction,
		restitution:    def.Restitution,
		sensor:         def.Sensor,
		timeline:       timeline.New(NewMomentum(tick, tickDt, def.Position, def.Angle)),
		islandIndex:    -1,
		events:         NewEvents(),
	}
	b.setMass(def.Mass)

	return b, nil
}

func (b *Body) ID() uint32 {
	return b.id
}

func (b *Body) Type() BodyType {
	return b.bodyType
}

func (b *Body) Shape() shape.Shape {
	return b.shape
}

func (b *Body) Mass() float64 {
	return b.mass
}

func (b *Body) InvMass() float64 {
	return b.invMass
}

func (b *Body) Inertia() float64 {
	return b.inertia
}

func (b *Body) InvInertia() float64 {
	return b.invI
}

func (b *Body) LinearDamping() float64 {
	return b.linearDamping
}

func (b *Body) AngularDamping() float64 {
	return b.angularDamping
}

func (b *Body) GravityScale() float64 {
	return b.gravityScale
}

func (b *Body) Friction() float64 {
	return b.friction
}

func (b *Body) Restitution() float64 {
	return b.restitution
}

func (b *Body) IsSensor() bool {
	return b.sensor
}

// Events gives access to the body's own listeners.
func (b *Body) Events() *Events {
	return &b.events
}

// SetMass changes the mass and refreshes the rotational inertia. Only
// dynamic bodies keep a mass.
func (b *Body) SetMass(mass float64) error {
	if mass < 0 {
		return fmt.Errorf("mass %v: %w", mass, ErrInvalidArgument)
	}
	b.setMass(mass)
	return nil
}

// SetShape replaces the shape and refreshes the rotational inertia.
func (b *Body) SetShape(s shape.Shape) {
	b.shape = s
	b.CalculateInertia()
}

func (b *Body) setMass(mass float64) {
	b.mass, b.invMass = 0, 0
	if b.bodyType == BodyTypeDynamic && mass > 0 {
		b.mass = mass
		b.invMass = 1.0 / mass
	}
	b.CalculateInertia()
}

// CalculateInertia derives the rotational inertia about the body origin
// from the shape's mass data. Static and kinematic bodies, and bodies
// without shape, get none.
func (b *Body) CalculateInertia() {
	b.inertia, b.invI = 0, 0
	if b.bodyType != BodyTypeDynamic || b.shape == nil || b.mass == 0 {
		return
	}

	md := b.shape.ComputeMass(b.mass)
	if md.I > 0 {
		b.inertia = md.I
		b.invI = 1.0 / md.I
	}
}

// ========== TIMELINE ==========

func (b *Body) Past() Momentum {
	return b.timeline.Past()
}

func (b *Body) Current() Momentum {
	return b.timeline.Current()
}

func (b *Body) Futur() Momentum {
	return b.timeline.Futur()
}

// FuturMomentum gives the simulation write access to the foreseen state.
func (b *Body) FuturMomentum() *Momentum {
	return b.timeline.FuturRef()
}

// MomentumAt returns the momentum at tick, between past and futur.
func (b *Body) MomentumAt(tick uint32) (Momentum, bool) {
	return b.timeline.At(tick)
}

// Momentums yields one momentum per tick from start to end, backward when
// start is after end.
func (b *Body) Momentums(start, end uint32) iter.Seq[Momentum] {
	return b.timeline.Between(start, end)
}

func (b *Body) Step(n uint32) {
	b.timeline.Step(n)
}

func (b *Body) RollBack(tick uint32) error {
	return b.timeline.RollBack(tick)
}

func (b *Body) Foresee(n uint32) {
	b.timeline.Foresee(n)
}

func (b *Body) ForgetPast(tick uint32) {
	b.timeline.ForgetPast(tick)
}

func (b *Body) ClearFutur(tick uint32) error {
	return b.timeline.ClearFutur(tick)
}

// TimelineLen returns the number of stored momentums.
func (b *Body) TimelineLen() int {
	return b.timeline.Len()
}

// ========== ISLAND ==========

func (b *Body) InIsland() bool {
	return b.island
}

func (b *Body) IslandIndex() int {
	return b.islandIndex
}

func (b *Body) BindIsland(index int) {
	b.island = true
	b.islandIndex = index
}

func (b *Body) ReleaseIsland() {
	b.island = false
	b.islandIndex = -1
}

// ========== QUERIES ==========

// AABB returns the bounding box of the shape at the given momentum.
func (b *Body) AABB(m Momentum) (shape.AABB, bool) {
	if b.shape == nil {
		return shape.AABB{}, false
	}
	return b.shape.ComputeAABB(m.Transform()), true
}

// TestPoint checks whether p lies in the shape at the current tick.
func (b *Body) TestPoint(p mgl64.Vec2) bool {
	if b.shape == nil {
		return false
	}
	return b.shape.TestPoint(b.Current().Transform(), p)
}

// RayCast casts a ray against the shape at the current tick.
func (b *Body) RayCast(input shape.RayCastInput) (shape.RayCastOutput, bool) {
	if b.shape == nil {
		return shape.RayCastOutput{}, false
	}
	return b.shape.RayCast(b.Current().Transform(), input)
}

// ========== EXTERNAL CHANGES ==========

// ChangeImpulse replaces the force and torque of the current momentum.
func (b *Body) ChangeImpulse(force mgl64.Vec2, torque float64) {
	b.change(func(m *Momentum) {
		m.Force = force
		m.Torque = torque
	})
}

// ChangeVelocity replaces the velocities of the current momentum.
func (b *Body) ChangeVelocity(linear mgl64.Vec2, angular float64) {
	b.change(func(m *Momentum) {
		m.LinearVelocity = linear
		m.AngularVelocity = angular
	})
}

// ChangeSituation replaces the position and angle of the current momentum.
func (b *Body) ChangeSituation(position mgl64.Vec2, angle float64) {
	b.change(func(m *Momentum) {
		m.Position = position
		m.Angle = angle
	})
}

// ApplyForce adds a force at a world point to the current momentum. Off
// center, the force also yields a torque. Only dynamic bodies respond.
func (b *Body) ApplyForce(force, point mgl64.Vec2) {
	if b.bodyType != BodyTypeDynamic {
		return
	}
	b.change(func(m *Momentum) {
		m.Force = m.Force.Add(force)
		m.Torque += geom.Cross(point.Sub(m.Position), force)
	})
}

func (b *Body) ApplyForceToCenter(force mgl64.Vec2) {
	if b.bodyType != BodyTypeDynamic {
		return
	}
	b.change(func(m *Momentum) {
		m.Force = m.Force.Add(force)
	})
}

func (b *Body) ApplyTorque(torque float64) {
	if b.bodyType != BodyTypeDynamic {
		return
	}
	b.change(func(m *Momentum) {
		m.Torque += torque
	})
}

// ApplyLinearImpulse changes the current velocity by an impulse at a world
// point. Static bodies ignore it.
func (b *Body) ApplyLinearImpulse(impulse, point mgl64.Vec2) {
	if b.bodyType == BodyTypeStatic {
		return
	}
	b.change(func(m *Momentum) {
		m.LinearVelocity = m.LinearVelocity.Add(impulse.Mul(b.invMass))
		m.AngularVelocity += b.invI * geom.Cross(point.Sub(m.Position), impulse)
	})
}

func (b *Body) ApplyLinearImpulseToCenter(impulse mgl64.Vec2) {
	if b.bodyType == BodyTypeStatic {
		return
	}
	b.change(func(m *Momentum) {
		m.LinearVelocity = m.LinearVelocity.Add(impulse.Mul(b.invMass))
	})
}

func (b *Body) ApplyAngularImpulse(impulse float64) {
	if b.bodyType == BodyTypeStatic {
		return
	}
	b.change(func(m *Momentum) {
		m.AngularVelocity += b.invI * impulse
	})
}

func (b *Body) change(mutate func(m *Momentum)) {
	if b.holding {
		b.held = append(b.held, mutate)
		return
	}
	b.apply(mutate)
}

func (b *Body) apply(mutate func(m *Momentum)) {
	current := b.timeline.CurrentRef()
	mutate(current)
	b.events.Emit(ExternalChangeEvent{Body: b, Momentum: *current})
}

// HoldChanges defers every external change until ReleaseChanges. The
// world holds its bodies while stepping or rolling back, so that a change
// made from a listener lands on the momentum that is current once the
// call returns.
func (b *Body) HoldChanges() {
	b.holding = true
}

// ReleaseChanges applies the held changes to the current momentum, in the
// order they were requested, each raising its external change event.
func (b *Body) ReleaseChanges() {
	b.holding = false
	held := b.held
	b.held = nil
	for _, mutate := range held {
		b.apply(mutate)
	}
}

// ========== CRISPING ==========

// CrispAtTick pulls the foreseen trajectory toward an authoritative
// position and angle at tick. The divergence is spread linearly over the
// ticks since the last locked state: the current tick or a tick in
// enduring contact. It fails when tick is not foreseen, and refuses
// without change when the state at tick is in enduring contact or when
// the divergence per tick exceeds maxDivergence.
func (b *Body) CrispAtTick(tick uint32, position mgl64.Vec2, angle float64, maxDivergence float64) (bool, error) {
	currentTick := b.Current().Tick()
	if tick <= currentTick || tick > b.Futur().Tick() {
		return false, fmt.Errorf("crisp at %d outside (%d, %d]: %w", tick, currentTick, b.Futur().Tick(), ErrOutOfRange)
	}

	target, _ := b.timeline.At(tick)
	if target.EnduringContact {
		return false, nil
	}

	anchor := tick - 1
	for anchor > currentTick {
		if m, _ := b.timeline.At(anchor); m.EnduringContact {
			break
		}
		anchor--
	}

	window := float64(tick - anchor)
	divergence := position.Sub(target.Position).Mul(1.0 / window)
	angularDivergence := (angle - target.Angle) / window

	if divergence.Len() > maxDivergence || math.Abs(angularDivergence) > maxDivergence {
		return false, nil
	}

	for t := anchor + 1; t <= tick; t++ {
		if _, err := b.timeline.Materialize(t); err != nil {
			return false, err
		}
	}

	for t := anchor + 1; t <= tick; t++ {
		m := b.timeline.Ref(b.timeline.Index(t))
		k := float64(t - anchor)

		m.Position = m.Position.Add(divergence.Mul(k))
		m.Angle += angularDivergence * k
		m.LinearVelocity = m.LinearVelocity.Add(divergence.Mul(1.0 / m.TickDt))
		m.AngularVelocity += angularDivergence / m.TickDt

		if t == tick {
			m.Position = position
			m.Angle = angle
		}
	}

	return true, nil
}
