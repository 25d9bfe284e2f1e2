package shape

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// Edge is a line segment with a polygon skin. Edges have no area, so they
// only make sense on static or kinematic bodies.
type Edge struct {
	Vertex1, Vertex2 mgl64.Vec2
}

// NewEdge creates the segment v1-v2.
func NewEdge(v1, v2 mgl64.Vec2) (*Edge, error) {
	if geom.DistanceSquared(v1, v2) < geom.Epsilon*geom.Epsilon {
		return nil, fmt.Errorf("edge of zero length: %w", ErrInvalidShape)
	}
	return &Edge{Vertex1: v1, Vertex2: v2}, nil
}

func (e *Edge) Kind() Kind {
	return KindEdge
}

func (e *Edge) Radius() float64 {
	return PolygonRadius
}

func (e *Edge) ComputeAABB(xf geom.Transform) AABB {
	v1 := xf.Apply(e.Vertex1)
	v2 := xf.Apply(e.Vertex2)
	r := mgl64.Vec2{PolygonRadius, PolygonRadius}

	return AABB{
		Lower: geom.Min(v1, v2).Sub(r),
		Upper: geom.Max(v1, v2).Add(r),
	}
}

func (e *Edge) ComputeMass(mass float64) MassData {
	return MassData{
		Mass:   0,
		Center: e.Vertex1.Add(e.Vertex2).Mul(0.5),
	}
}

// TestPoint always fails: a segment holds no area.
func (e *Edge) TestPoint(xf geom.Transform, p mgl64.Vec2) bool {
	return false
}

// RayCast intersects p = p1 + t*d with v = v1 + s*e.
func (e *Edge) RayCast(xf geom.Transform, input RayCastInput) (RayCastOutput, bool) {
	// Put the ray into the edge's frame of reference.
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := p2.Sub(p1)

	v1 := e.Vertex1
	v2 := e.Vertex2
	edge := v2.Sub(v1)
	normal, _ := geom.Normalize(mgl64.Vec2{edge[1], -edge[0]})

	// dot(normal, p1 - v1) + t * dot(normal, d) = 0
	numerator := normal.Dot(v1.Sub(p1))
	denominator := normal.Dot(d)
	if denominator == 0.0 {
		return RayCastOutput{}, false
	}

	t := numerator / denominator
	if t < 0.0 || input.MaxFraction < t {
		return RayCastOutput{}, false
	}

	q := p1.Add(d.Mul(t))

	// s = dot(q - v1, r) / dot(r, r)
	rr := edge.Dot(edge)
	if rr == 0.0 {
		return RayCastOutput{}, false
	}

	s := q.Sub(v1).Dot(edge) / rr
	if s < 0.0 || 1.0 < s {
		return RayCastOutput{}, false
	}

	out := RayCastOutput{Fraction: t, Normal: xf.Rotation.Apply(normal)}
	if numerator > 0.0 {
		out.Normal = out.Normal.Mul(-1)
	}
	return out, true
}
