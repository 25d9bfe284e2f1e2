package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// Polygon is a convex polygon with counter-clockwise vertices and a skin
// of PolygonRadius.
type Polygon struct {
	Vertices []mgl64.Vec2
	Normals  []mgl64.Vec2
	Centroid mgl64.Vec2
}

// NewBox creates an axis aligned box of half-extents hx, hy centered on
// the body origin.
func NewBox(hx, hy float64) (*Polygon, error) {
	return NewOrientedBox(hx, hy, mgl64.Vec2{}, 0)
}

// NewOrientedBox creates a box of half-extents hx, hy placed at center
// and rotated by angle in body space.
func NewOrientedBox(hx, hy float64, center mgl64.Vec2, angle float64) (*Polygon, error) {
	if hx <= 0 || hy <= 0 {
		return nil, fmt.Errorf("box half-extents %v, %v: %w", hx, hy, ErrInvalidShape)
	}

	xf := geom.NewTransform(center, angle)
	p := &Polygon{
		Vertices: []mgl64.Vec2{
			xf.Apply(mgl64.Vec2{-hx, -hy}),
			xf.Apply(mgl64.Vec2{hx, -hy}),
			xf.Apply(mgl64.Vec2{hx, hy}),
			xf.Apply(mgl64.Vec2{-hx, hy}),
		},
		Normals: []mgl64.Vec2{
			xf.Rotation.Apply(mgl64.Vec2{0, -1}),
			xf.Rotation.Apply(mgl64.Vec2{1, 0}),
			xf.Rotation.Apply(mgl64.Vec2{0, 1}),
			xf.Rotation.Apply(mgl64.Vec2{-1, 0}),
		},
		Centroid: center,
	}

	return p, nil
}

// NewPolygon creates a convex polygon from its vertices. Clockwise input
// is reversed; concave or degenerate input is rejected. Hull building is
// left to the caller.
func NewPolygon(vertices []mgl64.Vec2) (*Polygon, error) {
	count := len(vertices)
	if count < 3 || count > MaxPolygonVertices {
		return nil, fmt.Errorf("polygon with %d vertices: %w", count, ErrInvalidShape)
	}

	vs := make([]mgl64.Vec2, count)
	copy(vs, vertices)

	if signedArea(vs) < 0 {
		for i, j := 0, count-1; i < j; i, j = i+1, j-1 {
			vs[i], vs[j] = vs[j], vs[i]
		}
	}

	p := &Polygon{Vertices: vs, Normals: make([]mgl64.Vec2, count)}
	for i := range vs {
		edge := vs[(i+1)%count].Sub(vs[i])
		if edge.LenSqr() < geom.Epsilon*geom.Epsilon {
			return nil, fmt.Errorf("polygon edge %d has zero length: %w", i, ErrInvalidShape)
		}
		p.Normals[i], _ = geom.Normalize(geom.CrossVS(edge, 1.0))
	}

	if !p.Validate() {
		return nil, fmt.Errorf("polygon is not convex: %w", ErrInvalidShape)
	}

	p.Centroid = computeCentroid(vs)
	return p, nil
}

func signedArea(vs []mgl64.Vec2) float64 {
	area := 0.0
	for i := range vs {
		area += geom.Cross(vs[i], vs[(i+1)%len(vs)])
	}
	return 0.5 * area
}

func computeCentroid(vs []mgl64.Vec2) mgl64.Vec2 {
	var c mgl64.Vec2
	area := 0.0

	// reference point inside the polygon
	var s mgl64.Vec2
	for _, v := range vs {
		s = s.Add(v)
	}
	s = s.Mul(1.0 / float64(len(vs)))

	const inv3 = 1.0 / 3.0
	for i := range vs {
		e1 := vs[i].Sub(s)
		e2 := vs[(i+1)%len(vs)].Sub(s)
		triangleArea := 0.5 * geom.Cross(e1, e2)
		area += triangleArea
		c = c.Add(e1.Add(e2).Mul(triangleArea * inv3))
	}

	return c.Mul(1.0 / area).Add(s)
}

// Validate checks that every vertex lies on the inner side of every edge.
func (p *Polygon) Validate() bool {
	count := len(p.Vertices)
	for i := 0; i < count; i++ {
		i2 := (i + 1) % count
		v := p.Vertices[i]
		e := p.Vertices[i2].Sub(v)

		for j := 0; j < count; j++ {
			if j == i || j == i2 {
				continue
			}
			if geom.Cross(e, p.Vertices[j].Sub(v)) < 0.0 {
				return false
			}
		}
	}
	return true
}

func (p *Polygon) Kind() Kind {
	return KindPolygon
}

func (p *Polygon) Radius() float64 {
	return PolygonRadius
}

func (p *Polygon) ComputeAABB(xf geom.Transform) AABB {
	lower := xf.Apply(p.Vertices[0])
	upper := lower

	for _, v := range p.Vertices[1:] {
		w := xf.Apply(v)
		lower = geom.Min(lower, w)
		upper = geom.Max(upper, w)
	}

	r := mgl64.Vec2{PolygonRadius, PolygonRadius}
	return AABB{Lower: lower.Sub(r), Upper: upper.Add(r)}
}

// ComputeMass integrates the polygon triangle by triangle around a
// reference point inside it. Density is mass spread evenly over the area.
func (p *Polygon) ComputeMass(mass float64) MassData {
	count := len(p.Vertices)

	var s mgl64.Vec2
	for _, v := range p.Vertices {
		s = s.Add(v)
	}
	s = s.Mul(1.0 / float64(count))

	const inv3 = 1.0 / 3.0
	var center mgl64.Vec2
	area := 0.0
	inertia := 0.0

	for i := 0; i < count; i++ {
		e1 := p.Vertices[i].Sub(s)
		e2 := p.Vertices[(i+1)%count].Sub(s)

		d := geom.Cross(e1, e2)
		triangleArea := 0.5 * d
		area += triangleArea

		// Area weighted centroid
		center = center.Add(e1.Add(e2).Mul(triangleArea * inv3))

		intx2 := e1[0]*e1[0] + e2[0]*e1[0] + e2[0]*e2[0]
		inty2 := e1[1]*e1[1] + e2[1]*e1[1] + e2[1]*e2[1]
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}

	density := 0.0
	if area > geom.Epsilon {
		density = mass / area
		center = center.Mul(1.0 / area)
	}

	data := MassData{Mass: mass, Center: center.Add(s)}

	// Inertia about the reference point, shifted to the body origin.
	data.I = density*inertia + mass*(data.Center.Dot(data.Center)-center.Dot(center))
	return data
}

func (p *Polygon) TestPoint(xf geom.Transform, point mgl64.Vec2) bool {
	local := xf.ApplyT(point)

	for i, n := range p.Normals {
		if n.Dot(local.Sub(p.Vertices[i])) > 0.0 {
			return false
		}
	}
	return true
}

func (p *Polygon) RayCast(xf geom.Transform, input RayCastInput) (RayCastOutput, bool) {
	// Put the ray into the polygon's frame of reference.
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := p2.Sub(p1)

	lower := 0.0
	upper := input.MaxFraction
	index := -1

	for i, n := range p.Normals {
		// dot(normal, p1 - v) + a * dot(normal, d) = 0
		numerator := n.Dot(p.Vertices[i].Sub(p1))
		denominator := n.Dot(d)

		if denominator == 0.0 {
			if numerator < 0.0 {
				return RayCastOutput{}, false
			}
		} else if denominator < 0.0 && numerator < lower*denominator {
			// The segment enters this half-space.
			lower = numerator / denominator
			index = i
		} else if denominator > 0.0 && numerator < upper*denominator {
			// The segment exits this half-space.
			upper = numerator / denominator
		}

		if upper < lower {
			return RayCastOutput{}, false
		}
	}

	if index < 0 {
		return RayCastOutput{}, false
	}

	return RayCastOutput{Fraction: lower, Normal: xf.Rotation.Apply(p.Normals[index])}, true
}

// Area returns the polygon area.
func (p *Polygon) Area() float64 {
	return math.Abs(signedArea(p.Vertices))
}
