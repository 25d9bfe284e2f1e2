package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/actor"
	"github.com/saad-KH/CrispyPhysics-sub000/collision"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

type velocityConstraintPoint struct {
	rA, rB         mgl64.Vec2
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

type velocityConstraint struct {
	points       [collision.MaxManifoldPoints]velocityConstraintPoint
	normal       mgl64.Vec2
	normalMass   mgl64.Mat2
	k            mgl64.Mat2
	indexA       int
	indexB       int
	invMassA     float64
	invMassB     float64
	invIA        float64
	invIB        float64
	friction     float64
	restitution  float64
	tangentSpeed float64
	pointCount   int
}

type positionConstraint struct {
	localPoints [collision.MaxManifoldPoints]mgl64.Vec2
	localNormal mgl64.Vec2
	localPoint  mgl64.Vec2
	indexA      int
	indexB      int
	invMassA    float64
	invMassB    float64
	invIA       float64
	invIB       float64
	manifold    collision.ManifoldType
	radiusA     float64
	radiusB     float64
	pointCount  int
}

// ContactSolver solves the touching contacts of one island. Bodies are
// addressed by their island index into the shared positions and
// velocities.
type ContactSolver struct {
	step       TimeStep
	positions  []Position
	velocities []Velocity

	contacts  []*actor.Contact
	manifolds []*collision.Manifold

	velocityConstraints []velocityConstraint
	positionConstraints []positionConstraint
}

// NewContactSolver prepares the position independent part of the
// constraints. Each contact must be touching at its foreseen tick and
// both its bodies bound to the island.
func NewContactSolver(step TimeStep, contacts []*actor.Contact, positions []Position, velocities []Velocity) *ContactSolver {
	s := &ContactSolver{
		step:                step,
		positions:           positions,
		velocities:          velocities,
		contacts:            contacts,
		manifolds:           make([]*collision.Manifold, len(contacts)),
		velocityConstraints: make([]velocityConstraint, len(contacts)),
		positionConstraints: make([]positionConstraint, len(contacts)),
	}

	for i, contact := range contacts {
		bodyA, bodyB := contact.First(), contact.Second()
		momentum := contact.FuturMomentum()
		manifold := momentum.Manifold
		assert(manifold.Touching(), "contact solved without manifold points")
		s.manifolds[i] = manifold

		vc := &s.velocityConstraints[i]
		vc.friction = contact.Friction()
		vc.restitution = contact.Restitution()
		vc.tangentSpeed = momentum.TangentSpeed
		vc.indexA = bodyA.IslandIndex()
		vc.indexB = bodyB.IslandIndex()
		vc.invMassA = bodyA.InvMass()
		vc.invMassB = bodyB.InvMass()
		vc.invIA = bodyA.InvInertia()
		vc.invIB = bodyB.InvInertia()
		vc.pointCount = manifold.PointCount

		pc := &s.positionConstraints[i]
		pc.indexA = vc.indexA
		pc.indexB = vc.indexB
		pc.invMassA = vc.invMassA
		pc.invMassB = vc.invMassB
		pc.invIA = vc.invIA
		pc.invIB = vc.invIB
		pc.localNormal = manifold.LocalNormal
		pc.localPoint = manifold.LocalPoint
		pc.pointCount = manifold.PointCount
		pc.radiusA = bodyA.Shape().Radius()
		pc.radiusB = bodyB.Shape().Radius()
		pc.manifold = manifold.Type

		for j := 0; j < manifold.PointCount; j++ {
			mp := manifold.Points[j]
			if step.WarmStarting {
				vc.points[j].normalImpulse = mp.NormalImpulse
				vc.points[j].tangentImpulse = mp.TangentImpulse
			}
			pc.localPoints[j] = mp.LocalPoint
		}
	}

	return s
}

// InitializeVelocityConstraints computes the position dependent part of
// the velocity constraints: anchors, effective masses and restitution
// bias.
func (s *ContactSolver) InitializeVelocityConstraints() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		pc := &s.positionConstraints[i]

		mA, mB := vc.invMassA, vc.invMassB
		iA, iB := vc.invIA, vc.invIB

		pA, pB := s.positions[vc.indexA], s.positions[vc.indexB]
		vA, wA := s.velocities[vc.indexA].V, s.velocities[vc.indexA].W
		vB, wB := s.velocities[vc.indexB].V, s.velocities[vc.indexB].W

		wm := collision.NewWorldManifold(s.manifolds[i], pA.Transform(), pc.radiusA, pB.Transform(), pc.radiusB)
		vc.normal = wm.Normal
		tangent := geom.CrossVS(vc.normal, 1.0)

		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]
			vcp.rA = wm.Points[j].Sub(pA.C)
			vcp.rB = wm.Points[j].Sub(pB.C)

			vcp.normalMass = effectiveMass(mA, iA, vcp.rA, mB, iB, vcp.rB, vc.normal)
			vcp.tangentMass = effectiveMass(mA, iA, vcp.rA, mB, iB, vcp.rB, tangent)

			vcp.velocityBias = 0
			vRel := vc.normal.Dot(relativeVelocity(vA, wA, vcp.rA, vB, wB, vcp.rB))
			if vRel < -VelocityThreshold {
				vcp.velocityBias = -vc.restitution * vRel
			}
		}

		if vc.pointCount == 2 {
			vcp1, vcp2 := &vc.points[0], &vc.points[1]

			rn1A := geom.Cross(vcp1.rA, vc.normal)
			rn1B := geom.Cross(vcp1.rB, vc.normal)
			rn2A := geom.Cross(vcp2.rA, vc.normal)
			rn2B := geom.Cross(vcp2.rB, vc.normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.k = mgl64.Mat2{k11, k12, k12, k22}
				vc.normalMass = vc.k.Inv()
			} else {
				// redundant points, keep the first
				vc.pointCount = 1
			}
		}
	}
}

// WarmStart applies the impulses carried over from the previous tick.
func (s *ContactSolver) WarmStart() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		tangent := geom.CrossVS(vc.normal, 1.0)

		a, b := &s.velocities[vc.indexA], &s.velocities[vc.indexB]
		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]
			p := vc.normal.Mul(vcp.normalImpulse).Add(tangent.Mul(vcp.tangentImpulse))
			a.W -= vc.invIA * geom.Cross(vcp.rA, p)
			a.V = a.V.Sub(p.Mul(vc.invMassA))
			b.W += vc.invIB * geom.Cross(vcp.rB, p)
			b.V = b.V.Add(p.Mul(vc.invMassB))
		}
	}
}

// SolveVelocityConstraints runs one iteration over every contact: friction
// first, then non-penetration.
func (s *ContactSolver) SolveVelocityConstraints() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]

		mA, mB := vc.invMassA, vc.invMassB
		iA, iB := vc.invIA, vc.invIB

		vA, wA := s.velocities[vc.indexA].V, s.velocities[vc.indexA].W
		vB, wB := s.velocities[vc.indexB].V, s.velocities[vc.indexB].W

		normal := vc.normal
		tangent := geom.CrossVS(normal, 1.0)

		apply := func(p mgl64.Vec2, rA, rB mgl64.Vec2) {
			vA = vA.Sub(p.Mul(mA))
			wA -= iA * geom.Cross(rA, p)
			vB = vB.Add(p.Mul(mB))
			wB += iB * geom.Cross(rB, p)
		}

		// Tangent constraints first, normal constraints last.
		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]

			dv := relativeVelocity(vA, wA, vcp.rA, vB, wB, vcp.rB)
			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vcp.tangentMass * (-vt)

			maxFriction := vc.friction * vcp.normalImpulse
			newImpulse := geom.Clamp(vcp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.tangentImpulse
			vcp.tangentImpulse = newImpulse

			apply(tangent.Mul(lambda), vcp.rA, vcp.rB)
		}

		if vc.pointCount == 1 {
			vcp := &vc.points[0]

			dv := relativeVelocity(vA, wA, vcp.rA, vB, wB, vcp.rB)
			vn := dv.Dot(normal)
			lambda := -vcp.normalMass * (vn - vcp.velocityBias)

			newImpulse := math.Max(vcp.normalImpulse+lambda, 0)
			lambda = newImpulse - vcp.normalImpulse
			vcp.normalImpulse = newImpulse

			apply(normal.Mul(lambda), vcp.rA, vcp.rB)
		} else {
			s.solveBlock(vc, &vA, &wA, &vB, &wB)
		}

		s.velocities[vc.indexA] = Velocity{V: vA, W: wA}
		s.velocities[vc.indexB] = Velocity{V: vB, W: wB}
	}
}

// solveBlock solves the normal impulses of a 2-point manifold together, as
// the linear complementarity problem
//
//	vn = A * x + b, vn >= 0, x >= 0, vn_i * x_i = 0
//
// by total enumeration of its four cases. x is the new total impulse; with
// a the accumulated one, b' = b - A * a.
func (s *ContactSolver) solveBlock(vc *velocityConstraint, vA *mgl64.Vec2, wA *float64, vB *mgl64.Vec2, wB *float64) {
	cp1, cp2 := &vc.points[0], &vc.points[1]
	normal := vc.normal

	a := mgl64.Vec2{cp1.normalImpulse, cp2.normalImpulse}
	assert(a[0] >= 0 && a[1] >= 0, "negative accumulated normal impulse")

	dv1 := relativeVelocity(*vA, *wA, cp1.rA, *vB, *wB, cp1.rB)
	dv2 := relativeVelocity(*vA, *wA, cp2.rA, *vB, *wB, cp2.rB)

	b := mgl64.Vec2{
		dv1.Dot(normal) - cp1.velocityBias,
		dv2.Dot(normal) - cp2.velocityBias,
	}
	b = b.Sub(vc.k.Mul2x1(a))

	accept := func(x mgl64.Vec2) {
		d := x.Sub(a)
		p1 := normal.Mul(d[0])
		p2 := normal.Mul(d[1])
		*vA = vA.Sub(p1.Add(p2).Mul(vc.invMassA))
		*wA -= vc.invIA * (geom.Cross(cp1.rA, p1) + geom.Cross(cp2.rA, p2))
		*vB = vB.Add(p1.Add(p2).Mul(vc.invMassB))
		*wB += vc.invIB * (geom.Cross(cp1.rB, p1) + geom.Cross(cp2.rB, p2))

		cp1.normalImpulse = x[0]
		cp2.normalImpulse = x[1]
	}

	// both points active: vn = 0
	x := vc.normalMass.Mul2x1(b).Mul(-1)
	if x[0] >= 0 && x[1] >= 0 {
		accept(x)
		return
	}

	// point 1 only: vn1 = 0, x2 = 0
	x = mgl64.Vec2{-cp1.normalMass * b[0], 0}
	vn2 := vc.k[1]*x[0] + b[1]
	if x[0] >= 0 && vn2 >= 0 {
		accept(x)
		return
	}

	// point 2 only: x1 = 0, vn2 = 0
	x = mgl64.Vec2{0, -cp2.normalMass * b[1]}
	vn1 := vc.k[2]*x[1] + b[0]
	if x[1] >= 0 && vn1 >= 0 {
		accept(x)
		return
	}

	// both inactive: x = 0
	if b[0] >= 0 && b[1] >= 0 {
		accept(mgl64.Vec2{})
	}
	// no solution, the impulses are left as they are
}

// StoreImpulses writes the accumulated impulses back into the foreseen
// manifolds, for warm starting the next tick.
func (s *ContactSolver) StoreImpulses() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		manifold := s.manifolds[i]
		for j := 0; j < vc.pointCount; j++ {
			manifold.Points[j].NormalImpulse = vc.points[j].normalImpulse
			manifold.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

type positionSolverManifold struct {
	normal     mgl64.Vec2
	point      mgl64.Vec2
	separation float64
}

func newPositionSolverManifold(pc *positionConstraint, xfA, xfB geom.Transform, index int) positionSolverManifold {
	var psm positionSolverManifold

	switch pc.manifold {
	case collision.ManifoldCircles:
		pointA := xfA.Apply(pc.localPoint)
		pointB := xfB.Apply(pc.localPoints[0])
		psm.normal, _ = geom.Normalize(pointB.Sub(pointA))
		psm.point = pointA.Add(pointB).Mul(0.5)
		psm.separation = pointB.Sub(pointA).Dot(psm.normal) - pc.radiusA - pc.radiusB

	case collision.ManifoldFaceA:
		psm.normal = xfA.Rotation.Apply(pc.localNormal)
		planePoint := xfA.Apply(pc.localPoint)
		clipPoint := xfB.Apply(pc.localPoints[index])
		psm.separation = clipPoint.Sub(planePoint).Dot(psm.normal) - pc.radiusA - pc.radiusB
		psm.point = clipPoint

	case collision.ManifoldFaceB:
		psm.normal = xfB.Rotation.Apply(pc.localNormal)
		planePoint := xfB.Apply(pc.localPoint)
		clipPoint := xfA.Apply(pc.localPoints[index])
		psm.separation = clipPoint.Sub(planePoint).Dot(psm.normal) - pc.radiusA - pc.radiusB
		psm.point = clipPoint
		// normal from A to B
		psm.normal = psm.normal.Mul(-1)
	}

	return psm
}

// SolvePositionConstraints runs one iteration pushing overlapping shapes
// apart. It reports whether the deepest overlap left is acceptable.
func (s *ContactSolver) SolvePositionConstraints() bool {
	minSeparation := 0.0

	for i := range s.positionConstraints {
		pc := &s.positionConstraints[i]

		mA, mB := pc.invMassA, pc.invMassB
		iA, iB := pc.invIA, pc.invIB

		a, b := s.positions[pc.indexA], s.positions[pc.indexB]

		for j := 0; j < pc.pointCount; j++ {
			psm := newPositionSolverManifold(pc, a.Transform(), b.Transform(), j)

			rA := psm.point.Sub(a.C)
			rB := psm.point.Sub(b.C)

			minSeparation = math.Min(minSeparation, psm.separation)

			// allow slop, prevent large corrections
			c := geom.Clamp(Baumgarte*(psm.separation+LinearSlop), -MaxLinearCorrection, 0)

			impulse := 0.0
			if k := effectiveMass(mA, iA, rA, mB, iB, rB, psm.normal); k > 0 {
				impulse = -c * k
			}

			p := psm.normal.Mul(impulse)
			a.C = a.C.Sub(p.Mul(mA))
			a.A -= iA * geom.Cross(rA, p)
			b.C = b.C.Add(p.Mul(mB))
			b.A += iB * geom.Cross(rB, p)
		}

		s.positions[pc.indexA] = a
		s.positions[pc.indexB] = b
	}

	// separation is never pushed above -LinearSlop
	return minSeparation >= -3.0*LinearSlop
}

func assert(condition bool, message string) {
	if !condition {
		panic("constraint: " + message)
	}
}
