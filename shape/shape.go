// Package shape provides the collision geometry consumed by the kernel:
// circles, edges and convex polygons with their bounding boxes, mass data,
// point containment and ray casts.
package shape

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/geom"
)

// Kind represents the type of collision shape
type Kind int

const (
	KindCircle Kind = iota
	KindEdge
	KindPolygon

	// KindCount is the number of shape kinds, used to size dispatch tables.
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindEdge:
		return "edge"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// LinearSlop is a collision tolerance, numerically significant but
// visually insignificant.
const LinearSlop = 0.005

// PolygonRadius is the skin radius of polygons and edges.
const PolygonRadius = 2.0 * LinearSlop

// MaxPolygonVertices bounds the vertex count of a polygon.
const MaxPolygonVertices = 8

// ErrInvalidShape is returned by the factories for degenerate geometry.
var ErrInvalidShape = errors.New("invalid shape")

// MassData holds the mass properties computed for a shape.
type MassData struct {
	Mass float64
	// Center is the centroid relative to the shape origin.
	Center mgl64.Vec2
	// I is the rotational inertia about the shape origin.
	I float64
}

// RayCastInput describes the ray p1 -> p1 + MaxFraction*(p2-p1).
type RayCastInput struct {
	P1, P2      mgl64.Vec2
	MaxFraction float64
}

// RayCastOutput holds a hit at p1 + Fraction*(p2-p1).
type RayCastOutput struct {
	Normal   mgl64.Vec2
	Fraction float64
}

// Shape is the interface that all collision shapes must implement
type Shape interface {
	Kind() Kind
	// Radius returns the rounding skin of the shape.
	Radius() float64
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(xf geom.Transform) AABB
	// ComputeMass calculates mass data for the shape given its total mass
	ComputeMass(mass float64) MassData
	TestPoint(xf geom.Transform, p mgl64.Vec2) bool
	RayCast(xf geom.Transform, input RayCastInput) (RayCastOutput, bool)
}
