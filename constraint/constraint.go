// Package constraint resolves contacts with sequential impulses: velocity
// constraints for non-penetration and friction, then position constraints
// to remove the remaining overlap.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
)

const (
	// VelocityThreshold is the approach speed under which collisions are
	// treated as inelastic.
	VelocityThreshold = 1.0

	// Baumgarte is the fraction of the overlap resolved per position
	// iteration.
	Baumgarte = 0.2

	// MaxLinearCorrection caps a single position correction, avoiding
	// overshoot.
	MaxLinearCorrection = 0.2

	// LinearSlop is the overlap tolerated between shapes.
	LinearSlop = shape.LinearSlop

	// a 2-point manifold whose block matrix is worse conditioned than this
	// is solved with its first point only
	maxConditionNumber = 1000.0
)

// TimeStep holds the parameters of one solver step.
type TimeStep struct {
	Dt                 float64
	VelocityIterations int
	PositionIterations int

	// Speed caps, per second.
	MaxTranslationSpeed float64
	MaxRotationSpeed    float64

	WarmStarting bool
}

// Position is the solver state of a body position.
type Position struct {
	C mgl64.Vec2
	A float64
}

// Velocity is the solver state of a body velocity.
type Velocity struct {
	V mgl64.Vec2
	W float64
}

// Transform returns the rigid transform at p.
func (p Position) Transform() geom.Transform {
	return geom.NewTransform(p.C, p.A)
}

// ClampVelocity rescales v so that integrating it over dt moves the body
// by at most the speed caps of step.
func ClampVelocity(v Velocity, step TimeStep) Velocity {
	maxTranslation := step.MaxTranslationSpeed * step.Dt
	translation := v.V.Mul(step.Dt)
	if translation.LenSqr() > maxTranslation*maxTranslation {
		v.V = v.V.Mul(maxTranslation / translation.Len())
	}

	maxRotation := step.MaxRotationSpeed * step.Dt
	rotation := step.Dt * v.W
	if rotation*rotation > maxRotation*maxRotation {
		v.W *= maxRotation / math.Abs(rotation)
	}
	return v
}

// relativeVelocity returns the velocity of the contact point on B
// relative to the one on A.
func relativeVelocity(vA mgl64.Vec2, wA float64, rA mgl64.Vec2, vB mgl64.Vec2, wB float64, rB mgl64.Vec2) mgl64.Vec2 {
	return vB.Add(geom.CrossSV(wB, rB)).Sub(vA).Sub(geom.CrossSV(wA, rA))
}

// effectiveMass returns the inverse of the mass seen along direction at
// the contact point, 0 when neither body responds.
func effectiveMass(mA, iA float64, rA mgl64.Vec2, mB, iB float64, rB mgl64.Vec2, direction mgl64.Vec2) float64 {
	rnA := geom.Cross(rA, direction)
	rnB := geom.Cross(rB, direction)
	k := mA + mB + iA*rnA*rnA + iB*rnB*rnB
	if k > 0 {
		return 1.0 / k
	}
	return 0
}
