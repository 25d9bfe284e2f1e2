package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// Circle represents a circular collision shape
type Circle struct {
	// Position of the center relative to the body origin.
	Position mgl64.Vec2
	radius   float64
}

// NewCircle creates a circle of the given radius centered on the body.
func NewCircle(radius float64) (*Circle, error) {
	return NewCircleAt(mgl64.Vec2{}, radius)
}

// NewCircleAt creates a circle whose center is offset from the body origin.
func NewCircleAt(position mgl64.Vec2, radius float64) (*Circle, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("circle radius %v: %w", radius, ErrInvalidShape)
	}
	return &Circle{Position: position, radius: radius}, nil
}

func (c *Circle) Kind() Kind {
	return KindCircle
}

func (c *Circle) Radius() float64 {
	return c.radius
}

// ComputeAABB calculates the axis-aligned bounding box for the circle
func (c *Circle) ComputeAABB(xf geom.Transform) AABB {
	p := xf.Apply(c.Position)
	r := mgl64.Vec2{c.radius, c.radius}

	return AABB{Lower: p.Sub(r), Upper: p.Add(r)}
}

// ComputeMass calculates mass data for the circle
func (c *Circle) ComputeMass(mass float64) MassData {
	return MassData{
		Mass:   mass,
		Center: c.Position,
		// inertia about the local origin
		I: mass * (0.5*c.radius*c.radius + c.Position.Dot(c.Position)),
	}
}

func (c *Circle) TestPoint(xf geom.Transform, p mgl64.Vec2) bool {
	center := xf.Apply(c.Position)
	d := p.Sub(center)
	return d.Dot(d) <= c.radius*c.radius
}

// RayCast solves |s + a*r| = radius for the smallest a on the segment,
// from Collision Detection in Interactive 3D Environments, section 3.1.2.
func (c *Circle) RayCast(xf geom.Transform, input RayCastInput) (RayCastOutput, bool) {
	position := xf.Apply(c.Position)
	s := input.P1.Sub(position)
	b := s.Dot(s) - c.radius*c.radius

	r := input.P2.Sub(input.P1)
	cr := s.Dot(r)
	rr := r.Dot(r)
	sigma := cr*cr - rr*b

	// Check for negative discriminant and short segment.
	if sigma < 0.0 || rr < geom.Epsilon {
		return RayCastOutput{}, false
	}

	a := -(cr + math.Sqrt(sigma))

	// Is the intersection point on the segment?
	if 0.0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		normal, _ := geom.Normalize(s.Add(r.Mul(a)))
		return RayCastOutput{Normal: normal, Fraction: a}, true
	}

	return RayCastOutput{}, false
}
