package actor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// Momentum is the dynamic state of a body at one tick.
type Momentum struct {
	tick uint32

	// TickDt is the duration the tick represents, in seconds.
	TickDt float64

	Force  mgl64.Vec2
	Torque float64

	LinearVelocity  mgl64.Vec2
	AngularVelocity float64

	Position mgl64.Vec2
	Angle    float64

	// EnduringContact is set while the body rests in a touching contact.
	EnduringContact bool
}

// NewMomentum creates a momentum at rest.
func NewMomentum(tick uint32, tickDt float64, position mgl64.Vec2, angle float64) Momentum {
	return Momentum{
		tick:     tick,
		TickDt:   tickDt,
		Position: position,
		Angle:    angle,
	}
}

func (m Momentum) Tick() uint32 {
	return m.tick
}

func (m Momentum) WithTick(tick uint32) Momentum {
	m.tick = tick
	return m
}

// Same compares every field but the tick within geom.Epsilon.
func (m Momentum) Same(other Momentum) bool {
	return m.EnduringContact == other.EnduringContact &&
		geom.ApproxEqual(m.TickDt, other.TickDt, geom.Epsilon) &&
		geom.ApproxEqualVec(m.Force, other.Force, geom.Epsilon) &&
		geom.ApproxEqual(m.Torque, other.Torque, geom.Epsilon) &&
		geom.ApproxEqualVec(m.LinearVelocity, other.LinearVelocity, geom.Epsilon) &&
		geom.ApproxEqual(m.AngularVelocity, other.AngularVelocity, geom.Epsilon) &&
		geom.ApproxEqualVec(m.Position, other.Position, geom.Epsilon) &&
		geom.ApproxEqual(m.Angle, other.Angle, geom.Epsilon)
}

// Transform returns the rigid transform of the body at this tick.
func (m Momentum) Transform() geom.Transform {
	return geom.NewTransform(m.Position, m.Angle)
}
