// Package collision implements the narrow phase: contact manifolds for the
// supported shape pairs and their reconstruction in world space.
package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
)

// MaxManifoldPoints is the number of contact points between two convex
// shapes.
const MaxManifoldPoints = 2

// FeatureType tells whether a contact feature is a vertex or a face.
type FeatureType uint8

const (
	FeatureVertex FeatureType = iota
	FeatureFace
)

// ContactID identifies the pair of features that produced a contact
// point. It is stable while the local geometry is unchanged, which lets
// accumulated impulses be matched from one tick to the next.
type ContactID struct {
	IndexA uint8
	IndexB uint8
	TypeA  FeatureType
	TypeB  FeatureType
}

// Key packs the id into a single comparable value.
func (id ContactID) Key() uint32 {
	return uint32(id.IndexA) |
		uint32(id.IndexB)<<8 |
		uint32(id.TypeA)<<16 |
		uint32(id.TypeB)<<24
}

// ManifoldType selects how the local manifold data is interpreted.
type ManifoldType uint8

const (
	// ManifoldCircles: LocalPoint is the center of shape A, points hold
	// the center of shape B.
	ManifoldCircles ManifoldType = iota
	// ManifoldFaceA: LocalPoint and LocalNormal describe a face of A,
	// points hold the clip points on B.
	ManifoldFaceA
	// ManifoldFaceB is the mirror of ManifoldFaceA.
	ManifoldFaceB
)

// ManifoldPoint is a contact point in the local frame of the incident
// shape, with the impulses the solver accumulated on it.
type ManifoldPoint struct {
	LocalPoint     mgl64.Vec2
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactID
}

// Manifold holds the contact points of two touching shapes in local
// coordinates. A manifold with no point means the shapes are apart.
type Manifold struct {
	Points      [MaxManifoldPoints]ManifoldPoint
	PointCount  int
	LocalNormal mgl64.Vec2
	LocalPoint  mgl64.Vec2
	Type        ManifoldType
}

// Touching reports whether the manifold holds at least one point.
func (m *Manifold) Touching() bool {
	return m != nil && m.PointCount > 0
}

// Clone returns a detached copy, nil for nil.
func (m *Manifold) Clone() *Manifold {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// WarmStartFrom copies the accumulated impulses of every point of old
// whose feature id matches a point of m.
func (m *Manifold) WarmStartFrom(old *Manifold) {
	if !m.Touching() || !old.Touching() {
		return
	}

	for i := 0; i < m.PointCount; i++ {
		mp := &m.Points[i]
		mp.NormalImpulse = 0
		mp.TangentImpulse = 0

		key := mp.ID.Key()
		for j := 0; j < old.PointCount; j++ {
			if old.Points[j].ID.Key() == key {
				mp.NormalImpulse = old.Points[j].NormalImpulse
				mp.TangentImpulse = old.Points[j].TangentImpulse
				break
			}
		}
	}
}

// WorldManifold is a manifold expressed in world coordinates.
type WorldManifold struct {
	// Normal points from A to B.
	Normal mgl64.Vec2
	// Points are midway between the two surfaces.
	Points [MaxManifoldPoints]mgl64.Vec2
	// Separations are negative when the shapes overlap.
	Separations [MaxManifoldPoints]float64
}

// NewWorldManifold evaluates m with the given body transforms and shape
// skin radii.
func NewWorldManifold(m *Manifold, xfA geom.Transform, radiusA float64, xfB geom.Transform, radiusB float64) WorldManifold {
	var wm WorldManifold
	if !m.Touching() {
		return wm
	}

	switch m.Type {
	case ManifoldCircles:
		wm.Normal = mgl64.Vec2{1, 0}
		pointA := xfA.Apply(m.LocalPoint)
		pointB := xfB.Apply(m.Points[0].LocalPoint)
		if geom.DistanceSquared(pointA, pointB) > geom.Epsilon*geom.Epsilon {
			wm.Normal, _ = geom.Normalize(pointB.Sub(pointA))
		}

		cA := pointA.Add(wm.Normal.Mul(radiusA))
		cB := pointB.Sub(wm.Normal.Mul(radiusB))
		wm.Points[0] = cA.Add(cB).Mul(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = xfA.Rotation.Apply(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)

		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfB.Apply(m.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Mul(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Mul(radiusB))
			wm.Points[i] = cA.Add(cB).Mul(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		wm.Normal = xfB.Rotation.Apply(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)

		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfA.Apply(m.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Mul(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Mul(radiusA))
			wm.Points[i] = cA.Add(cB).Mul(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}

		// Ensure normal points from A to B.
		wm.Normal = wm.Normal.Mul(-1)
	}

	return wm
}

// TestOverlap checks whether two bounding boxes intersect.
func TestOverlap(a, b shape.AABB) bool {
	return a.Overlaps(b)
}
